package service

import (
	"github.com/jengzang/presence-backend-go/internal/analysis/geofence"
	"github.com/jengzang/presence-backend-go/internal/analysis/location"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
)

// proximityTarget returns the point and rules a sample is validated against.
// Without a site the sample is its own target, so only accuracy and freshness
// can reject it. A circle site uses its radius as the proximity limit; a
// polygon site uses the larger of the configured limit and its farthest vertex.
func proximityTarget(sample models.LocationSample, site *models.GeofenceRegion, base location.Rules) (models.Coordinate, location.Rules) {
	rules := base
	if site == nil {
		return sample.Coordinate, rules
	}

	target := geofence.Center(*site)
	switch site.Shape {
	case models.ShapeCircle:
		rules.MaxDistanceMeters = site.RadiusMeters
	case models.ShapePolygon:
		for _, v := range site.Vertices {
			if d := spatial.DistanceMeters(target, v); d > rules.MaxDistanceMeters {
				rules.MaxDistanceMeters = d
			}
		}
	}
	return target, rules
}
