// Package trail reconstructs movement trails from time-ordered location samples.
package trail

import (
	"fmt"
	"time"

	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
)

// DefaultMaxGap is the inactivity gap that ends a trail when none is configured
const DefaultMaxGap = 30 * time.Minute

// OrderingError is returned when samples are not sorted by capture time
type OrderingError struct {
	Index    int
	Previous time.Time
	Current  time.Time
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("sample %d captured at %s precedes previous sample at %s",
		e.Index, e.Current.Format(time.RFC3339), e.Previous.Format(time.RFC3339))
}

// BuildTrails splits points into trails wherever two consecutive samples are
// more than maxGap apart. Points must be sorted ascending by CapturedAt; equal
// timestamps are allowed. A non-positive maxGap uses DefaultMaxGap.
func BuildTrails(points []models.LocationSample, maxGap time.Duration) ([]models.Trail, error) {
	if maxGap <= 0 {
		maxGap = DefaultMaxGap
	}
	if len(points) == 0 {
		return []models.Trail{}, nil
	}

	var trails []models.Trail
	current := []models.TrailPoint{toTrailPoint(points[0])}

	for i := 1; i < len(points); i++ {
		gap := points[i].CapturedAt.Sub(points[i-1].CapturedAt)
		if gap < 0 {
			return nil, &OrderingError{
				Index:    i,
				Previous: points[i-1].CapturedAt,
				Current:  points[i].CapturedAt,
			}
		}

		if gap > maxGap {
			trails = append(trails, summarize(current))
			current = nil
		}
		current = append(current, toTrailPoint(points[i]))
	}

	// Trailing trail is always emitted, even with a single point
	trails = append(trails, summarize(current))
	return trails, nil
}

// Flatten concatenates the points of trails in order
func Flatten(trails []models.Trail) []models.TrailPoint {
	n := 0
	for _, t := range trails {
		n += len(t.Points)
	}

	out := make([]models.TrailPoint, 0, n)
	for _, t := range trails {
		out = append(out, t.Points...)
	}
	return out
}

func toTrailPoint(s models.LocationSample) models.TrailPoint {
	return models.TrailPoint{
		Coordinate: s.Coordinate,
		CapturedAt: s.CapturedAt,
		SpeedKmh:   s.SpeedKmh,
	}
}

func summarize(points []models.TrailPoint) models.Trail {
	coords := make([]models.Coordinate, len(points))
	for i, p := range points {
		coords[i] = p.Coordinate
	}

	start := points[0].CapturedAt
	end := points[len(points)-1].CapturedAt

	return models.Trail{
		Points:         points,
		StartedAt:      start,
		EndedAt:        end,
		DurationSecs:   int64(end.Sub(start).Seconds()),
		DistanceMeters: spatial.PathLength(coords),
	}
}
