package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/presence-backend-go/internal/database"
	"github.com/jengzang/presence-backend-go/internal/models"
)

// MembershipRepository persists per-user geofence membership and transition history
type MembershipRepository struct {
	db database.DBTX
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db database.DBTX) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *MembershipRepository) WithTx(tx *sql.Tx) *MembershipRepository {
	return &MembershipRepository{db: tx}
}

// Load returns the user's membership state keyed by region ID
func (r *MembershipRepository) Load(ctx context.Context, userID string) (map[string]models.MembershipState, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT region_id, inside, since FROM geofence_memberships WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	states := make(map[string]models.MembershipState)
	for rows.Next() {
		var regionID string
		var state models.MembershipState
		var since int64
		if err := rows.Scan(&regionID, &state.Inside, &since); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		state.Since = time.UnixMilli(since).UTC()
		states[regionID] = state
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return states, nil
}

// Save upserts the given states for the user
func (r *MembershipRepository) Save(ctx context.Context, userID string, states map[string]models.MembershipState) error {
	query := `
		INSERT INTO geofence_memberships (user_id, region_id, inside, since)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, region_id) DO UPDATE SET inside = excluded.inside, since = excluded.since
	`
	for regionID, state := range states {
		if _, err := r.db.ExecContext(ctx, query, userID, regionID, state.Inside, state.Since.UnixMilli()); err != nil {
			return fmt.Errorf("failed to save membership for region %s: %w", regionID, err)
		}
	}
	return nil
}

// RecordEvents appends transition events to the user's history
func (r *MembershipRepository) RecordEvents(ctx context.Context, userID string, events []models.TransitionEvent) error {
	query := `INSERT INTO geofence_events (user_id, region_id, kind, at) VALUES (?, ?, ?, ?)`
	for _, e := range events {
		if _, err := r.db.ExecContext(ctx, query, userID, e.RegionID, e.Kind, e.At.UnixMilli()); err != nil {
			return fmt.Errorf("failed to record geofence event: %w", err)
		}
	}
	return nil
}

// Events returns the user's transition events with from <= at <= to, oldest first
func (r *MembershipRepository) Events(ctx context.Context, userID string, from, to time.Time) ([]models.TransitionEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT region_id, kind, at FROM geofence_events
		WHERE user_id = ? AND at >= ? AND at <= ?
		ORDER BY at ASC, id ASC
	`, userID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query geofence events: %w", err)
	}
	defer rows.Close()

	events := []models.TransitionEvent{}
	for rows.Next() {
		var e models.TransitionEvent
		var at int64
		if err := rows.Scan(&e.RegionID, &e.Kind, &at); err != nil {
			return nil, fmt.Errorf("failed to scan geofence event: %w", err)
		}
		e.At = time.UnixMilli(at).UTC()
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate geofence events: %w", err)
	}
	return events, nil
}
