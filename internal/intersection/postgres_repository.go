package intersection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenwave/greenwave/internal/clearance"
	"github.com/greenwave/greenwave/internal/congestion"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL intersection repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const intersectionColumns = `
	id, name, lat, lng, lanes, congestion_level,
	corridor_id, corridor_order, monitored,
	created_at, updated_at
`

// Get retrieves an intersection by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Intersection, error) {
	query := `
		SELECT` + intersectionColumns + `
		FROM intersections
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	in, err := scanIntersection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIntersectionNotFound
		}
		return nil, err
	}
	return in, nil
}

// List retrieves intersections with pagination.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT` + intersectionColumns + `
		FROM intersections
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, opts.Cursor, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	intersections, err := collectIntersections(rows)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: intersections}
	if len(intersections) > limit {
		result.Items = intersections[:limit]
		result.NextCursor = intersections[limit-1].ID
	}
	return result, nil
}

// ListByCorridor retrieves a corridor's intersections in corridor order.
func (r *PostgresRepository) ListByCorridor(ctx context.Context, corridorID string) ([]*Intersection, error) {
	query := `
		SELECT` + intersectionColumns + `
		FROM intersections
		WHERE corridor_id = $1
		ORDER BY corridor_order
	`

	rows, err := r.pool.Query(ctx, query, corridorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIntersections(rows)
}

// ListMonitored retrieves all intersections flagged for congestion monitoring.
func (r *PostgresRepository) ListMonitored(ctx context.Context) ([]*Intersection, error) {
	query := `
		SELECT` + intersectionColumns + `
		FROM intersections
		WHERE monitored = TRUE
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIntersections(rows)
}

// Create creates a new intersection.
func (r *PostgresRepository) Create(ctx context.Context, in *Intersection) error {
	lanes, err := json.Marshal(in.Lanes)
	if err != nil {
		return fmt.Errorf("marshal lanes: %w", err)
	}

	query := `
		INSERT INTO intersections (
			id, name, lat, lng, lanes, congestion_level,
			corridor_id, corridor_order, monitored,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.pool.Exec(ctx, query,
		in.ID,
		in.Name,
		in.Location.Lat,
		in.Location.Lng,
		lanes,
		string(in.CongestionLevel),
		in.CorridorID,
		in.CorridorOrder,
		in.Monitored,
		in.CreatedAt,
		in.UpdatedAt,
	)
	return err
}

// Update updates an existing intersection.
func (r *PostgresRepository) Update(ctx context.Context, in *Intersection) error {
	lanes, err := json.Marshal(in.Lanes)
	if err != nil {
		return fmt.Errorf("marshal lanes: %w", err)
	}

	query := `
		UPDATE intersections SET
			name = $2,
			lat = $3,
			lng = $4,
			lanes = $5,
			congestion_level = $6,
			corridor_id = $7,
			corridor_order = $8,
			monitored = $9,
			updated_at = $10
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		in.ID,
		in.Name,
		in.Location.Lat,
		in.Location.Lng,
		lanes,
		string(in.CongestionLevel),
		in.CorridorID,
		in.CorridorOrder,
		in.Monitored,
		in.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrIntersectionNotFound
	}

	return nil
}

// UpdateLanes replaces an intersection's lane state.
func (r *PostgresRepository) UpdateLanes(ctx context.Context, id string, lanes []clearance.Lane) error {
	encoded, err := json.Marshal(lanes)
	if err != nil {
		return fmt.Errorf("marshal lanes: %w", err)
	}

	query := `
		UPDATE intersections SET
			lanes = $2,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, encoded)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrIntersectionNotFound
	}

	return nil
}

// Delete deletes an intersection by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM intersections WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// scanIntersection scans a single row into an Intersection.
func scanIntersection(row pgx.Row) (*Intersection, error) {
	var (
		in    Intersection
		lanes []byte
		level string
	)

	err := row.Scan(
		&in.ID,
		&in.Name,
		&in.Location.Lat,
		&in.Location.Lng,
		&lanes,
		&level,
		&in.CorridorID,
		&in.CorridorOrder,
		&in.Monitored,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(lanes, &in.Lanes); err != nil {
		return nil, fmt.Errorf("unmarshal lanes: %w", err)
	}
	in.CongestionLevel = congestion.Level(level)

	return &in, nil
}

// collectIntersections drains a row set into intersections.
func collectIntersections(rows pgx.Rows) ([]*Intersection, error) {
	var intersections []*Intersection
	for rows.Next() {
		in, err := scanIntersection(rows)
		if err != nil {
			return nil, err
		}
		intersections = append(intersections, in)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return intersections, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
