// Package geofence decides whether positions fall inside circular or polygonal
// regions and turns membership changes into enter/exit events.
package geofence

import (
	"time"

	"github.com/golang/geo/s2"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
)

// boundaryToleranceMeters absorbs floating-point error on circle boundaries
const boundaryToleranceMeters = 1e-6

// boundsMargin keeps points on a polygon's extreme edges inside its bounding rect
var boundsMargin = s2.LatLngFromDegrees(1e-9, 1e-9)

// Contains reports whether point lies inside region. Boundaries are inclusive.
func Contains(point models.Coordinate, region models.GeofenceRegion) bool {
	switch region.Shape {
	case models.ShapeCircle:
		return spatial.DistanceMeters(point, region.Center) <= region.RadiusMeters+boundaryToleranceMeters
	case models.ShapePolygon:
		if len(region.Vertices) < 3 {
			return false
		}
		// Cheap rejection before the edge walk
		if !paddedBounds(region.Vertices).ContainsLatLng(s2.LatLngFromDegrees(point.Latitude, point.Longitude)) {
			return false
		}
		return spatial.PointInPolygon(point, region.Vertices)
	default:
		return false
	}
}

// paddedBounds is the bounding rect of vertices grown by boundsMargin on every side
func paddedBounds(vertices []models.Coordinate) s2.Rect {
	b := spatial.BoundingRect(vertices)
	size := b.Size()
	return s2.RectFromCenterSize(b.Center(), s2.LatLng{
		Lat: size.Lat + 2*boundsMargin.Lat,
		Lng: size.Lng + 2*boundsMargin.Lng,
	})
}

// Center returns the point used as the proximity target of a region:
// the circle center, or the vertex centroid of a polygon
func Center(region models.GeofenceRegion) models.Coordinate {
	if region.Shape == models.ShapePolygon {
		return spatial.Centroid(region.Vertices)
	}
	return region.Center
}

// ActiveRegions filters regions down to the active ones, preserving order
func ActiveRegions(regions []models.GeofenceRegion) []models.GeofenceRegion {
	active := make([]models.GeofenceRegion, 0, len(regions))
	for _, r := range regions {
		if r.Active {
			active = append(active, r)
		}
	}
	return active
}

// EvaluateTransitions compares the membership of point in every active region
// against prior and emits an event for each region whose membership changed.
// Events follow the order of regions. A region missing from prior counts as
// outside. prior is left untouched; the returned map is the next state and
// carries over entries for regions that were not evaluated.
func EvaluateTransitions(point models.Coordinate, at time.Time, regions []models.GeofenceRegion, prior map[string]models.MembershipState) ([]models.TransitionEvent, map[string]models.MembershipState) {
	next := make(map[string]models.MembershipState, len(prior)+len(regions))
	for id, state := range prior {
		next[id] = state
	}

	var events []models.TransitionEvent
	for _, region := range regions {
		if !region.Active {
			continue
		}

		inside := Contains(point, region)
		previous, known := prior[region.ID]
		if inside == previous.Inside {
			if !known {
				next[region.ID] = models.MembershipState{Inside: inside, Since: at}
			}
			continue
		}

		kind := models.TransitionExit
		if inside {
			kind = models.TransitionEnter
		}
		events = append(events, models.TransitionEvent{RegionID: region.ID, Kind: kind, At: at})
		next[region.ID] = models.MembershipState{Inside: inside, Since: at}
	}

	return events, next
}
