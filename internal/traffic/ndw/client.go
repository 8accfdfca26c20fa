// Package ndw provides a client for the NDW national road data portal.
package ndw

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/greenwave/greenwave/internal/provider/resilience"
	"github.com/greenwave/greenwave/internal/traffic"
	"github.com/greenwave/greenwave/pkg/geo"
)

const (
	// DefaultBaseURL is the base URL for the NDW open data API.
	DefaultBaseURL = "https://opendata.ndw.nu/api/v1"

	// ProviderName identifies this provider.
	ProviderName = "ndw"
)

// ClientConfig holds configuration for the NDW client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey is the NDW API key, sent as a bearer token when set.
	APIKey string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an NDW traffic flow API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// NewClient creates a new NDW client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		resilientClient := resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
		resilience.GlobalRegistry.Register(ProviderName, resilientClient)
		httpClient = resilientClient
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// API response types (from the NDW flow endpoint).

type flowResponse struct {
	Data []flowData `json:"data"`
}

type flowData struct {
	SegmentID  string  `json:"segment_id"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	SpeedKmh   float64 `json:"speed_kmh"`
	FlowVPH    int     `json:"flow_vph"`
	MeasuredAt string  `json:"measured_at"`
}

// NearestFlow returns the flow reading closest to the given point.
func (c *Client) NearestFlow(ctx context.Context, p geo.Point) (*traffic.FlowReading, error) {
	url := fmt.Sprintf("%s/flow/nearest?lat=%.6f&lng=%.6f", c.baseURL, p.Lat, p.Lng)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		resilience.GlobalRegistry.RecordFailure(ProviderName, err)
		return nil, fmt.Errorf("fetch flow: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, traffic.ErrNoReading
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d from flow endpoint", resp.StatusCode)
		resilience.GlobalRegistry.RecordFailure(ProviderName, err)
		return nil, err
	}
	resilience.GlobalRegistry.RecordSuccess(ProviderName)

	var result flowResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode flow response: %w", err)
	}

	if len(result.Data) == 0 {
		return nil, traffic.ErrNoReading
	}

	return toFlowReading(&result.Data[0]), nil
}

// toFlowReading converts API flow data to a domain FlowReading.
func toFlowReading(d *flowData) *traffic.FlowReading {
	measuredAt, _ := time.Parse(time.RFC3339, d.MeasuredAt)

	return &traffic.FlowReading{
		SegmentID:           d.SegmentID,
		Location:            geo.Point{Lat: d.Lat, Lng: d.Lng},
		SpeedKmh:            d.SpeedKmh,
		FlowVehiclesPerHour: d.FlowVPH,
		MeasuredAt:          measuredAt,
	}
}

// Ensure Client implements the traffic Provider interface.
var _ traffic.Provider = (*Client)(nil)
