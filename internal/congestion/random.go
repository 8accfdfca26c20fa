package congestion

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/greenwave/greenwave/pkg/geo"
)

// RandomSource produces the bounded pseudo-random terms used by the predictor.
// Draw returns a value in [0, 1) for a given prediction input and tag, so that
// distinct terms (local variation, confidence) of the same prediction do not
// collapse to one value.
type RandomSource interface {
	Draw(t time.Time, p geo.Point, tag string) float64
}

// SeededRandom returns the default RandomSource: a stateless source seeded by
// the input coordinates and the hour bucket, making every prediction
// reproducible for identical inputs.
func SeededRandom() RandomSource { return seededSource{} }

type seededSource struct{}

func (seededSource) Draw(t time.Time, p geo.Point, tag string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(tag))

	// Quantize coordinates to ~100m so nearby requests vary smoothly.
	latBucket := int64(math.Round(p.Lat * 1000))
	lngBucket := int64(math.Round(p.Lng * 1000))
	hourBucket := t.Truncate(time.Hour).Unix()

	var buf [24]byte
	putInt64(buf[0:], latBucket)
	putInt64(buf[8:], lngBucket)
	putInt64(buf[16:], hourBucket)
	_, _ = h.Write(buf[:])

	return rand.New(rand.NewSource(int64(h.Sum64()))).Float64() //nolint:gosec // reproducibility, not security
}

func putInt64(b []byte, v int64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// FixedRandom returns a RandomSource that always draws v. Intended for tests.
func FixedRandom(v float64) RandomSource { return fixedSource(v) }

type fixedSource float64

func (f fixedSource) Draw(time.Time, geo.Point, string) float64 { return float64(f) }
