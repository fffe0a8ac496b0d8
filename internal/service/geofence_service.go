package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jengzang/presence-backend-go/internal/logging"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/repository"
	"github.com/jengzang/presence-backend-go/internal/validation"
	"github.com/rs/zerolog"
)

// GeofenceService handles business logic for geofence regions
type GeofenceService struct {
	geofenceRepo *repository.GeofenceRepository
	now          func() time.Time
	log          zerolog.Logger
}

// NewGeofenceService creates a new geofence service
func NewGeofenceService(geofenceRepo *repository.GeofenceRepository) *GeofenceService {
	return &GeofenceService{
		geofenceRepo: geofenceRepo,
		now:          time.Now,
		log:          logging.Component("geofence"),
	}
}

// Create validates and stores a new region
func (s *GeofenceService) Create(ctx context.Context, req models.GeofenceRequest) (*models.GeofenceRegion, error) {
	now := s.now().UTC()
	region := models.GeofenceRegion{
		ID:        uuid.NewString(),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyRequest(&region, req)

	if err := validation.ValidateRegion(region); err != nil {
		return nil, err
	}

	if err := s.geofenceRepo.Create(ctx, &region); err != nil {
		return nil, fmt.Errorf("failed to create geofence: %w", err)
	}

	s.log.Info().Str("region", region.ID).Str("shape", string(region.Shape)).Msg("geofence created")
	return &region, nil
}

// Get retrieves a region by ID
func (s *GeofenceService) Get(ctx context.Context, id string) (*models.GeofenceRegion, error) {
	region, err := s.geofenceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get geofence: %w", err)
	}
	if region == nil {
		return nil, ErrRegionNotFound
	}
	return region, nil
}

// List returns all regions, or only the active ones
func (s *GeofenceService) List(ctx context.Context, activeOnly bool) ([]models.GeofenceRegion, error) {
	regions, err := s.geofenceRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list geofences: %w", err)
	}
	return regions, nil
}

// Update replaces a region's definition
func (s *GeofenceService) Update(ctx context.Context, id string, req models.GeofenceRequest) (*models.GeofenceRegion, error) {
	region, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyRequest(region, req)
	region.UpdatedAt = s.now().UTC()

	if err := validation.ValidateRegion(*region); err != nil {
		return nil, err
	}

	found, err := s.geofenceRepo.Update(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to update geofence: %w", err)
	}
	if !found {
		return nil, ErrRegionNotFound
	}

	s.log.Info().Str("region", region.ID).Bool("active", region.Active).Msg("geofence updated")
	return region, nil
}

// Delete removes a region
func (s *GeofenceService) Delete(ctx context.Context, id string) error {
	found, err := s.geofenceRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete geofence: %w", err)
	}
	if !found {
		return ErrRegionNotFound
	}

	s.log.Info().Str("region", id).Msg("geofence deleted")
	return nil
}

// applyRequest copies the request onto region, clearing geometry that does not
// belong to the requested shape
func applyRequest(region *models.GeofenceRegion, req models.GeofenceRequest) {
	region.Name = req.Name
	region.Shape = req.Shape
	region.Center = models.Coordinate{}
	region.RadiusMeters = 0
	region.Vertices = nil

	switch req.Shape {
	case models.ShapeCircle:
		region.Center = req.Center
		region.RadiusMeters = req.RadiusMeters
	case models.ShapePolygon:
		region.Vertices = req.Vertices
	}

	if req.Active != nil {
		region.Active = *req.Active
	}
}
