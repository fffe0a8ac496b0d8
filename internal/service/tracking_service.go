package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jengzang/presence-backend-go/internal/analysis/geofence"
	"github.com/jengzang/presence-backend-go/internal/analysis/location"
	"github.com/jengzang/presence-backend-go/internal/database"
	"github.com/jengzang/presence-backend-go/internal/logging"
	"github.com/jengzang/presence-backend-go/internal/metrics"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/repository"
	"github.com/jengzang/presence-backend-go/internal/spatial"
	"github.com/jengzang/presence-backend-go/internal/validation"
	"github.com/rs/zerolog"
)

// TrackingConfig holds the rules applied to incoming pings
type TrackingConfig struct {
	Rules         location.Rules
	Spoofing      location.SpoofingThresholds
	Confidence    location.ConfidenceParams
	HistorySize   int
	HistoryWindow time.Duration
	CellLevel     int
}

// PingResult is the outcome of a tracking ping
type PingResult struct {
	Verdict    models.ValidationVerdict  `json:"verdict"`
	Spoofing   location.SpoofingReport   `json:"spoofing"`
	Confidence location.ConfidenceResult `json:"confidence"`
	Stored     bool                      `json:"stored"`
	SampleID   int64                     `json:"sampleId,omitempty"`
	CellToken  string                    `json:"cellToken"`
	CellVisits int64                     `json:"cellVisits"` // stored samples in the same cell, this one included
	Events     []models.TransitionEvent  `json:"events"`
}

// TrackingService validates pings, stores accepted samples and tracks geofence membership
type TrackingService struct {
	db          *sql.DB
	samples     *repository.SampleRepository
	geofences   *repository.GeofenceRepository
	memberships *repository.MembershipRepository
	cfg         TrackingConfig
	now         func() time.Time
	log         zerolog.Logger
}

// NewTrackingService creates a new tracking service
func NewTrackingService(db *sql.DB, samples *repository.SampleRepository, geofences *repository.GeofenceRepository,
	memberships *repository.MembershipRepository, cfg TrackingConfig) *TrackingService {
	return &TrackingService{
		db:          db,
		samples:     samples,
		geofences:   geofences,
		memberships: memberships,
		cfg:         cfg,
		now:         time.Now,
		log:         logging.Component("tracking"),
	}
}

// Ping validates one sample against the user's recent history. Accepted,
// non-suspicious samples are stored and evaluated against active geofences in
// a single transaction.
func (s *TrackingService) Ping(ctx context.Context, userID string, req models.PingRequest) (*PingResult, error) {
	sample := req.LocationSample
	if err := validation.ValidateSample(sample); err != nil {
		return nil, err
	}

	now := s.now()

	var site *models.GeofenceRegion
	if req.SiteID != "" {
		region, err := s.geofences.GetByID(ctx, req.SiteID)
		if err != nil {
			return nil, fmt.Errorf("failed to load site: %w", err)
		}
		if region == nil {
			return nil, ErrRegionNotFound
		}
		site = region
	}

	stored, err := s.samples.Recent(ctx, userID, now.Add(-s.cfg.HistoryWindow), s.cfg.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	previous := samplesBefore(stored, sample.CapturedAt)

	target, rules := proximityTarget(sample, site, s.cfg.Rules)
	result := &PingResult{
		Verdict:    location.Validate(sample, target, rules, now),
		Spoofing:   location.DetectSpoofing(spoofingHistory(stored, sample), s.cfg.Spoofing),
		Confidence: location.ConfidenceScore(sample, previous, now, s.cfg.Confidence),
		CellToken:  spatial.CellToken(sample.Coordinate, s.cfg.CellLevel),
		Events:     []models.TransitionEvent{},
	}

	outcome := "accepted"
	switch {
	case result.Spoofing.Suspicious:
		outcome = "suspicious"
		result.Verdict.Accepted = false
		result.Verdict.Reasons = append(result.Verdict.Reasons, models.ReasonSuspectedSpoof)
	case !result.Verdict.Accepted:
		outcome = "rejected"
	}
	metrics.RecordValidation(outcome, string(result.Verdict.Tier), result.Confidence.Confidence, result.Spoofing.Score)

	if !result.Verdict.Accepted {
		s.log.Info().
			Str("user", userID).
			Str("outcome", outcome).
			Strs("reasons", result.Verdict.Reasons).
			Float64("spoof_score", result.Spoofing.Score).
			Msg("sample not stored")
		return result, nil
	}

	record := &models.StoredSample{
		UserID:         userID,
		CellToken:      result.CellToken,
		Confidence:     result.Confidence.Confidence,
		LocationSample: sample,
	}

	err = database.Transaction(ctx, s.db, func(tx *sql.Tx) error {
		samples := s.samples.WithTx(tx)
		if err := samples.Insert(ctx, record, now); err != nil {
			return err
		}
		visits, err := samples.CountInCell(ctx, userID, record.CellToken)
		if err != nil {
			return err
		}
		result.CellVisits = visits

		regions, err := s.geofences.WithTx(tx).List(ctx, true)
		if err != nil {
			return err
		}

		memberships := s.memberships.WithTx(tx)
		prior, err := memberships.Load(ctx, userID)
		if err != nil {
			return err
		}

		events, next := geofence.EvaluateTransitions(sample.Coordinate, sample.CapturedAt, regions, prior)
		if err := memberships.Save(ctx, userID, changedStates(prior, next)); err != nil {
			return err
		}
		if err := memberships.RecordEvents(ctx, userID, events); err != nil {
			return err
		}

		if events != nil {
			result.Events = events
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store sample: %w", err)
	}

	result.Stored = true
	result.SampleID = record.ID

	for _, e := range result.Events {
		metrics.RecordTransition(string(e.Kind))
		s.log.Info().Str("user", userID).Str("region", e.RegionID).Str("kind", string(e.Kind)).Msg("geofence transition")
	}

	return result, nil
}

// Events returns the user's geofence transitions in the queried range,
// defaulting to the last DefaultTrailWindow
func (s *TrackingService) Events(ctx context.Context, userID string, query models.EventQuery) ([]models.TransitionEvent, error) {
	to := s.now()
	if query.To > 0 {
		to = time.Unix(query.To, 0)
	}
	from := to.Add(-DefaultTrailWindow)
	if query.From > 0 {
		from = time.Unix(query.From, 0)
	}
	if from.After(to) {
		return nil, validation.NewError("from", "ltefield", "from must not be after to")
	}

	events, err := s.memberships.Events(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get geofence events: %w", err)
	}
	return events, nil
}

// samplesBefore returns the stored samples captured at or before t
func samplesBefore(stored []models.StoredSample, t time.Time) []models.LocationSample {
	out := make([]models.LocationSample, 0, len(stored))
	for _, s := range stored {
		if !s.CapturedAt.After(t) {
			out = append(out, s.LocationSample)
		}
	}
	return out
}

// spoofingHistory merges the new sample into the stored history by capture time
func spoofingHistory(stored []models.StoredSample, sample models.LocationSample) []location.HistoryPoint {
	samples := make([]models.LocationSample, 0, len(stored)+1)
	for _, s := range stored {
		samples = append(samples, s.LocationSample)
	}
	samples = append(samples, sample)

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].CapturedAt.Before(samples[j].CapturedAt)
	})
	return location.HistoryFromSamples(samples)
}

func changedStates(prior, next map[string]models.MembershipState) map[string]models.MembershipState {
	changed := make(map[string]models.MembershipState)
	for id, state := range next {
		if old, ok := prior[id]; !ok || old != state {
			changed[id] = state
		}
	}
	return changed
}
