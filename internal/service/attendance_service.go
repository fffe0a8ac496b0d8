package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/presence-backend-go/internal/analysis/attendance"
	"github.com/jengzang/presence-backend-go/internal/analysis/location"
	"github.com/jengzang/presence-backend-go/internal/database"
	"github.com/jengzang/presence-backend-go/internal/logging"
	"github.com/jengzang/presence-backend-go/internal/metrics"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/repository"
	"github.com/jengzang/presence-backend-go/internal/validation"
	"github.com/rs/zerolog"
)

// Clock event names used in logs and metrics
const (
	eventClockIn  = "clock_in"
	eventClockOut = "clock_out"
)

// AttendanceService records clock events and derives attendance status
type AttendanceService struct {
	db             *sql.DB
	attendanceRepo *repository.AttendanceRepository
	geofenceRepo   *repository.GeofenceRepository
	deriver        *attendance.Deriver
	rules          location.Rules
	now            func() time.Time
	log            zerolog.Logger
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(db *sql.DB, attendanceRepo *repository.AttendanceRepository, geofenceRepo *repository.GeofenceRepository,
	policy attendance.Policy, rules location.Rules) *AttendanceService {
	return &AttendanceService{
		db:             db,
		attendanceRepo: attendanceRepo,
		geofenceRepo:   geofenceRepo,
		deriver:        attendance.NewDeriver(policy),
		rules:          rules,
		now:            time.Now,
		log:            logging.Component("attendance"),
	}
}

// ClockIn records the user's clock-in for today
func (s *AttendanceService) ClockIn(ctx context.Context, userID string, req models.ClockRequest) (*models.AttendanceRecord, error) {
	return s.record(ctx, eventClockIn, userID, req)
}

// ClockOut records the user's clock-out for today
func (s *AttendanceService) ClockOut(ctx context.Context, userID string, req models.ClockRequest) (*models.AttendanceRecord, error) {
	return s.record(ctx, eventClockOut, userID, req)
}

func (s *AttendanceService) record(ctx context.Context, event, userID string, req models.ClockRequest) (*models.AttendanceRecord, error) {
	if err := validation.ValidateClockRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	site, err := s.site(ctx, req.SiteID)
	if err != nil {
		return nil, err
	}
	if req.SiteID != "" && site == nil {
		return nil, ErrRegionNotFound
	}

	sample := models.LocationSample{
		Coordinate:     req.Coordinate,
		AccuracyMeters: req.AccuracyMeters,
		CapturedAt:     now,
	}
	target, rules := proximityTarget(sample, site, s.rules)
	if verdict := location.Validate(sample, target, rules, now); !verdict.Accepted {
		metrics.RecordAttendance(event, "rejected", nil)
		return nil, &LocationRejectedError{Verdict: verdict}
	}

	clock := models.ClockEvent{Time: now, Coordinate: req.Coordinate}
	date := s.deriver.DateOf(now)

	var saved models.AttendanceRecord
	err = database.Transaction(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.attendanceRepo.WithTx(tx)
		prev, err := repo.Get(ctx, userID, date)
		if err != nil {
			return err
		}

		var next models.AttendanceRecord
		if event == eventClockIn {
			next, err = s.deriver.RecordClockIn(prev, userID, clock, site, now)
		} else {
			if site == nil && prev != nil && prev.SiteID != "" {
				if site, err = s.geofenceRepo.WithTx(tx).GetByID(ctx, prev.SiteID); err != nil {
					return err
				}
			}
			next, err = s.deriver.RecordClockOut(prev, clock, site, now)
		}
		if err != nil {
			return err
		}

		if site != nil {
			next.SiteID = site.ID
		}
		if err := repo.Save(ctx, &next, now); err != nil {
			return err
		}
		saved = next
		return nil
	})
	if err != nil {
		if attendance.IsConflict(err) {
			metrics.RecordAttendance(event, "conflict", nil)
			return nil, err
		}
		metrics.RecordAttendance(event, "error", nil)
		return nil, fmt.Errorf("failed to record %s: %w", event, err)
	}

	metrics.RecordAttendance(event, "recorded", anomalyNames(saved.Anomalies))
	s.log.Info().
		Str("user", userID).
		Str("event", event).
		Str("date", saved.Date).
		Str("status", string(saved.Status)).
		Strs("anomalies", anomalyNames(saved.Anomalies)).
		Msg("clock event recorded")

	return &saved, nil
}

// Get returns the user's derived record for date (YYYY-MM-DD, today when empty).
// A day without a record is reported as absent.
func (s *AttendanceService) Get(ctx context.Context, userID, date string) (*models.AttendanceRecord, error) {
	now := s.now()
	if date == "" {
		date = s.deriver.DateOf(now)
	} else if _, err := time.Parse(attendance.DateLayout, date); err != nil {
		return nil, validation.NewError("date", "datetime", "date must use the YYYY-MM-DD format")
	}

	rec, err := s.attendanceRepo.Get(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	if rec == nil {
		rec = &models.AttendanceRecord{UserID: userID, Date: date}
	}

	// A deleted site leaves its stored anomalies in place
	site, err := s.site(ctx, rec.SiteID)
	if err != nil {
		return nil, err
	}

	derived := s.deriver.Derive(*rec, site, now)
	return &derived, nil
}

func (s *AttendanceService) site(ctx context.Context, id string) (*models.GeofenceRegion, error) {
	if id == "" {
		return nil, nil
	}
	region, err := s.geofenceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load site: %w", err)
	}
	return region, nil
}

func anomalyNames(set models.AnomalySet) []string {
	names := make([]string, len(set))
	for i, a := range set {
		names[i] = string(a)
	}
	return names
}
