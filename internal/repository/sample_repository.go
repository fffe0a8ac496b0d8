package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/presence-backend-go/internal/database"
	"github.com/jengzang/presence-backend-go/internal/models"
)

// SampleRepository handles database operations for accepted location samples
type SampleRepository struct {
	db database.DBTX
}

// NewSampleRepository creates a new sample repository
func NewSampleRepository(db database.DBTX) *SampleRepository {
	return &SampleRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *SampleRepository) WithTx(tx *sql.Tx) *SampleRepository {
	return &SampleRepository{db: tx}
}

// Insert stores a sample and sets its ID
func (r *SampleRepository) Insert(ctx context.Context, s *models.StoredSample, now time.Time) error {
	query := `
		INSERT INTO location_samples (
			user_id, latitude, longitude, accuracy_m, captured_at,
			battery_level, speed_kmh, cell_token, confidence, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		s.UserID,
		s.Coordinate.Latitude,
		s.Coordinate.Longitude,
		s.AccuracyMeters,
		s.CapturedAt.UnixMilli(),
		s.BatteryLevel,
		s.SpeedKmh,
		s.CellToken,
		s.Confidence,
		now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert location sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	s.ID = id
	return nil
}

// Recent returns up to limit of the user's latest samples captured at or
// after since, oldest first
func (r *SampleRepository) Recent(ctx context.Context, userID string, since time.Time, limit int) ([]models.StoredSample, error) {
	query := `
		SELECT * FROM (
			SELECT id, user_id, latitude, longitude, accuracy_m, captured_at,
				battery_level, speed_kmh, cell_token, confidence
			FROM location_samples
			WHERE user_id = ? AND captured_at >= ?
			ORDER BY captured_at DESC, id DESC
			LIMIT ?
		) ORDER BY captured_at ASC, id ASC
	`

	return r.query(ctx, query, userID, since.UnixMilli(), limit)
}

// Range returns the user's samples with from <= captured_at <= to, oldest first
func (r *SampleRepository) Range(ctx context.Context, userID string, from, to time.Time) ([]models.StoredSample, error) {
	query := `
		SELECT id, user_id, latitude, longitude, accuracy_m, captured_at,
			battery_level, speed_kmh, cell_token, confidence
		FROM location_samples
		WHERE user_id = ? AND captured_at >= ? AND captured_at <= ?
		ORDER BY captured_at ASC, id ASC
	`

	return r.query(ctx, query, userID, from.UnixMilli(), to.UnixMilli())
}

// CountInCell counts a user's samples sharing an s2 cell token
func (r *SampleRepository) CountInCell(ctx context.Context, userID, cellToken string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM location_samples WHERE user_id = ? AND cell_token = ?",
		userID, cellToken,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count samples in cell: %w", err)
	}
	return count, nil
}

func (r *SampleRepository) query(ctx context.Context, query string, args ...any) ([]models.StoredSample, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query location samples: %w", err)
	}
	defer rows.Close()

	samples := []models.StoredSample{}
	for rows.Next() {
		var s models.StoredSample
		var capturedAt int64
		var battery sql.NullInt64
		var speed sql.NullFloat64

		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Coordinate.Latitude, &s.Coordinate.Longitude,
			&s.AccuracyMeters, &capturedAt, &battery, &speed, &s.CellToken, &s.Confidence,
		); err != nil {
			return nil, fmt.Errorf("failed to scan location sample: %w", err)
		}

		s.CapturedAt = time.UnixMilli(capturedAt).UTC()
		if battery.Valid {
			b := int(battery.Int64)
			s.BatteryLevel = &b
		}
		if speed.Valid {
			v := speed.Float64
			s.SpeedKmh = &v
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate location samples: %w", err)
	}
	return samples, nil
}
