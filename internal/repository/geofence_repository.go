package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jengzang/presence-backend-go/internal/database"
	"github.com/jengzang/presence-backend-go/internal/models"
)

const geofenceColumns = `id, name, shape, center_lat, center_lon, radius_m, vertices, active, created_at, updated_at`

// GeofenceRepository handles database operations for geofence regions
type GeofenceRepository struct {
	db database.DBTX
}

// NewGeofenceRepository creates a new geofence repository
func NewGeofenceRepository(db database.DBTX) *GeofenceRepository {
	return &GeofenceRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *GeofenceRepository) WithTx(tx *sql.Tx) *GeofenceRepository {
	return &GeofenceRepository{db: tx}
}

// Create inserts a region. The caller assigns ID and timestamps.
func (r *GeofenceRepository) Create(ctx context.Context, g *models.GeofenceRegion) error {
	vertices, err := json.Marshal(nonNilVertices(g.Vertices))
	if err != nil {
		return fmt.Errorf("failed to encode vertices: %w", err)
	}

	query := `INSERT INTO geofences (` + geofenceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		g.ID, g.Name, g.Shape,
		g.Center.Latitude, g.Center.Longitude, g.RadiusMeters,
		string(vertices), g.Active,
		g.CreatedAt.UnixMilli(), g.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create geofence: %w", err)
	}
	return nil
}

// GetByID retrieves a region, or nil when it does not exist
func (r *GeofenceRepository) GetByID(ctx context.Context, id string) (*models.GeofenceRegion, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+geofenceColumns+` FROM geofences WHERE id = ?`, id)

	g, err := scanGeofence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get geofence: %w", err)
	}
	return g, nil
}

// List returns regions ordered by creation time, optionally only active ones
func (r *GeofenceRepository) List(ctx context.Context, activeOnly bool) ([]models.GeofenceRegion, error) {
	query := `SELECT ` + geofenceColumns + ` FROM geofences`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query geofences: %w", err)
	}
	defer rows.Close()

	regions := []models.GeofenceRegion{}
	for rows.Next() {
		g, err := scanGeofence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan geofence: %w", err)
		}
		regions = append(regions, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate geofences: %w", err)
	}
	return regions, nil
}

// Update replaces a region's definition. Returns false when it does not exist.
func (r *GeofenceRepository) Update(ctx context.Context, g *models.GeofenceRegion) (bool, error) {
	vertices, err := json.Marshal(nonNilVertices(g.Vertices))
	if err != nil {
		return false, fmt.Errorf("failed to encode vertices: %w", err)
	}

	query := `
		UPDATE geofences
		SET name = ?, shape = ?, center_lat = ?, center_lon = ?, radius_m = ?,
			vertices = ?, active = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		g.Name, g.Shape, g.Center.Latitude, g.Center.Longitude, g.RadiusMeters,
		string(vertices), g.Active, g.UpdatedAt.UnixMilli(), g.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update geofence: %w", err)
	}
	return affected(result)
}

// Delete removes a region and its membership rows. Returns false when it does not exist.
func (r *GeofenceRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM geofences WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete geofence: %w", err)
	}
	return affected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeofence(row rowScanner) (*models.GeofenceRegion, error) {
	var g models.GeofenceRegion
	var vertices string
	var createdAt, updatedAt int64

	if err := row.Scan(
		&g.ID, &g.Name, &g.Shape,
		&g.Center.Latitude, &g.Center.Longitude, &g.RadiusMeters,
		&vertices, &g.Active, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(vertices), &g.Vertices); err != nil {
		return nil, fmt.Errorf("failed to decode vertices: %w", err)
	}
	if len(g.Vertices) == 0 {
		g.Vertices = nil
	}

	g.CreatedAt = time.UnixMilli(createdAt).UTC()
	g.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &g, nil
}

func nonNilVertices(v []models.Coordinate) []models.Coordinate {
	if v == nil {
		return []models.Coordinate{}
	}
	return v
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
