package intersection

import (
	"context"
	"sort"
	"sync"

	"github.com/greenwave/greenwave/internal/clearance"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu            sync.RWMutex
	intersections map[string]*Intersection
}

// NewInMemoryRepository creates a new in-memory intersection repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		intersections: make(map[string]*Intersection),
	}
}

// Get retrieves an intersection by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Intersection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	in, ok := r.intersections[id]
	if !ok {
		return nil, ErrIntersectionNotFound
	}

	return copyIntersection(in), nil
}

// List retrieves intersections with pagination, ordered by ID.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var intersections []*Intersection
	for _, in := range r.intersections {
		if in.ID > opts.Cursor {
			intersections = append(intersections, copyIntersection(in))
		}
	}
	sort.Slice(intersections, func(i, j int) bool {
		return intersections[i].ID < intersections[j].ID
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: intersections}
	if len(intersections) > limit {
		result.Items = intersections[:limit]
		result.NextCursor = intersections[limit-1].ID
	}

	return result, nil
}

// ListByCorridor retrieves a corridor's intersections in corridor order.
func (r *InMemoryRepository) ListByCorridor(_ context.Context, corridorID string) ([]*Intersection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var intersections []*Intersection
	for _, in := range r.intersections {
		if in.CorridorID != nil && *in.CorridorID == corridorID {
			intersections = append(intersections, copyIntersection(in))
		}
	}
	sort.Slice(intersections, func(i, j int) bool {
		return intersections[i].CorridorOrder < intersections[j].CorridorOrder
	})

	return intersections, nil
}

// ListMonitored retrieves all intersections flagged for congestion monitoring.
func (r *InMemoryRepository) ListMonitored(_ context.Context) ([]*Intersection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var intersections []*Intersection
	for _, in := range r.intersections {
		if in.Monitored {
			intersections = append(intersections, copyIntersection(in))
		}
	}
	sort.Slice(intersections, func(i, j int) bool {
		return intersections[i].ID < intersections[j].ID
	})

	return intersections, nil
}

// Create creates a new intersection.
func (r *InMemoryRepository) Create(_ context.Context, in *Intersection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.intersections[in.ID] = copyIntersection(in)
	return nil
}

// Update updates an existing intersection.
func (r *InMemoryRepository) Update(_ context.Context, in *Intersection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.intersections[in.ID]; !ok {
		return ErrIntersectionNotFound
	}

	r.intersections[in.ID] = copyIntersection(in)
	return nil
}

// UpdateLanes replaces an intersection's lane state.
func (r *InMemoryRepository) UpdateLanes(_ context.Context, id string, lanes []clearance.Lane) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.intersections[id]
	if !ok {
		return ErrIntersectionNotFound
	}

	in.Lanes = append([]clearance.Lane(nil), lanes...)
	return nil
}

// Delete deletes an intersection by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.intersections, id)
	return nil
}

// copyIntersection returns a deep copy so callers cannot mutate stored state.
func copyIntersection(in *Intersection) *Intersection {
	cpy := *in
	cpy.Lanes = append([]clearance.Lane(nil), in.Lanes...)
	if in.CorridorID != nil {
		corridorID := *in.CorridorID
		cpy.CorridorID = &corridorID
	}
	return &cpy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
