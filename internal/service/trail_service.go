package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jengzang/presence-backend-go/internal/analysis/trail"
	"github.com/jengzang/presence-backend-go/internal/metrics"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/repository"
	"github.com/jengzang/presence-backend-go/internal/validation"
)

// DefaultTrailWindow is the query range used when the caller gives no start
const DefaultTrailWindow = 24 * time.Hour

// TrailService reconstructs movement trails from stored samples
type TrailService struct {
	sampleRepo *repository.SampleRepository
	maxGap     time.Duration
	now        func() time.Time
}

// NewTrailService creates a new trail service
func NewTrailService(sampleRepo *repository.SampleRepository, maxGap time.Duration) *TrailService {
	return &TrailService{
		sampleRepo: sampleRepo,
		maxGap:     maxGap,
		now:        time.Now,
	}
}

// GetTrails builds the user's trails for the queried range
func (s *TrailService) GetTrails(ctx context.Context, userID string, query models.TrailQuery) ([]models.Trail, error) {
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
	if query.MaxGapMins < 0 {
		return nil, validation.NewError("maxGap", "min", "maxGap must be at least 0")
	}

	maxGap := s.maxGap
	if query.MaxGapMins > 0 {
		maxGap = time.Duration(query.MaxGapMins) * time.Minute
	}

	stored, err := s.sampleRepo.Range(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get samples: %w", err)
	}

	points := make([]models.LocationSample, len(stored))
	for i, p := range stored {
		points[i] = p.LocationSample
	}

	trails, err := trail.BuildTrails(points, maxGap)
	if err != nil {
		return nil, fmt.Errorf("failed to build trails: %w", err)
	}

	metrics.TrailsBuilt.Add(float64(len(trails)))
	return trails, nil
}
