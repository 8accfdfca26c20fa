package intersection

import (
	"context"

	"github.com/greenwave/greenwave/internal/clearance"
)

// ListOptions contains options for listing intersections.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing intersections.
type ListResult struct {
	Items      []*Intersection
	NextCursor string
}

// Repository defines the interface for intersection data persistence.
type Repository interface {
	// Get retrieves an intersection by ID.
	// Returns ErrIntersectionNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Intersection, error)

	// List retrieves intersections with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// ListByCorridor retrieves a corridor's intersections in corridor order.
	ListByCorridor(ctx context.Context, corridorID string) ([]*Intersection, error)

	// ListMonitored retrieves all intersections flagged for congestion
	// monitoring.
	ListMonitored(ctx context.Context) ([]*Intersection, error)

	// Create creates a new intersection.
	Create(ctx context.Context, in *Intersection) error

	// Update updates an existing intersection.
	Update(ctx context.Context, in *Intersection) error

	// UpdateLanes replaces an intersection's lane state.
	UpdateLanes(ctx context.Context, id string, lanes []clearance.Lane) error

	// Delete deletes an intersection by ID.
	Delete(ctx context.Context, id string) error
}
