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

// AttendanceRepository handles database operations for attendance records
type AttendanceRepository struct {
	db database.DBTX
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db database.DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *AttendanceRepository) WithTx(tx *sql.Tx) *AttendanceRepository {
	return &AttendanceRepository{db: tx}
}

// Get retrieves the user's record for date, or nil when none exists
func (r *AttendanceRepository) Get(ctx context.Context, userID, date string) (*models.AttendanceRecord, error) {
	query := `
		SELECT user_id, date, clock_in_at, clock_in_lat, clock_in_lon,
			clock_out_at, clock_out_lat, clock_out_lon, site_id,
			total_hours, status, anomalies
		FROM attendance_records
		WHERE user_id = ? AND date = ?
	`

	var rec models.AttendanceRecord
	var inAt, outAt sql.NullInt64
	var inLat, inLon, outLat, outLon sql.NullFloat64
	var siteID sql.NullString
	var anomalies string

	err := r.db.QueryRowContext(ctx, query, userID, date).Scan(
		&rec.UserID, &rec.Date, &inAt, &inLat, &inLon,
		&outAt, &outLat, &outLon, &siteID,
		&rec.TotalHours, &rec.Status, &anomalies,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	rec.ClockIn = clockEvent(inAt, inLat, inLon)
	rec.ClockOut = clockEvent(outAt, outLat, outLon)
	rec.SiteID = siteID.String

	if err := json.Unmarshal([]byte(anomalies), &rec.Anomalies); err != nil {
		return nil, fmt.Errorf("failed to decode anomalies: %w", err)
	}
	return &rec, nil
}

// Save upserts a record keyed by user and date
func (r *AttendanceRepository) Save(ctx context.Context, rec *models.AttendanceRecord, now time.Time) error {
	anomalies := rec.Anomalies
	if anomalies == nil {
		anomalies = models.AnomalySet{}
	}
	encoded, err := json.Marshal(anomalies)
	if err != nil {
		return fmt.Errorf("failed to encode anomalies: %w", err)
	}

	inAt, inLat, inLon := clockColumns(rec.ClockIn)
	outAt, outLat, outLon := clockColumns(rec.ClockOut)

	var siteID any
	if rec.SiteID != "" {
		siteID = rec.SiteID
	}

	query := `
		INSERT INTO attendance_records (
			user_id, date, clock_in_at, clock_in_lat, clock_in_lon,
			clock_out_at, clock_out_lat, clock_out_lon, site_id,
			total_hours, status, anomalies, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			clock_in_at = excluded.clock_in_at,
			clock_in_lat = excluded.clock_in_lat,
			clock_in_lon = excluded.clock_in_lon,
			clock_out_at = excluded.clock_out_at,
			clock_out_lat = excluded.clock_out_lat,
			clock_out_lon = excluded.clock_out_lon,
			site_id = excluded.site_id,
			total_hours = excluded.total_hours,
			status = excluded.status,
			anomalies = excluded.anomalies,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.UserID, rec.Date, inAt, inLat, inLon,
		outAt, outLat, outLon, siteID,
		rec.TotalHours, rec.Status, string(encoded), now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save attendance record: %w", err)
	}
	return nil
}

func clockColumns(e *models.ClockEvent) (at, lat, lon any) {
	if e == nil {
		return nil, nil, nil
	}
	return e.Time.UnixMilli(), e.Coordinate.Latitude, e.Coordinate.Longitude
}

func clockEvent(at sql.NullInt64, lat, lon sql.NullFloat64) *models.ClockEvent {
	if !at.Valid {
		return nil
	}
	return &models.ClockEvent{
		Time:       time.UnixMilli(at.Int64).UTC(),
		Coordinate: models.Coordinate{Latitude: lat.Float64, Longitude: lon.Float64},
	}
}
