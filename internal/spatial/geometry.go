package spatial

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/jengzang/presence-backend-go/internal/models"
)

// planeEpsilon is the tolerance, in squared degrees, for treating a point as lying on an edge
const planeEpsilon = 1e-12

// Centroid calculates the arithmetic centroid of a set of coordinates
func Centroid(points []models.Coordinate) models.Coordinate {
	if len(points) == 0 {
		return models.Coordinate{}
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Latitude
		sumLon += p.Longitude
	}

	return models.Coordinate{
		Latitude:  sumLat / float64(len(points)),
		Longitude: sumLon / float64(len(points)),
	}
}

// PathLength calculates the total length of a path (sequence of points) in meters
func PathLength(points []models.Coordinate) float64 {
	if len(points) < 2 {
		return 0
	}

	var totalDist float64
	for i := 1; i < len(points); i++ {
		totalDist += DistanceMeters(points[i-1], points[i])
	}

	return totalDist
}

// BoundingRect returns the s2 latitude/longitude rectangle enclosing points
func BoundingRect(points []models.Coordinate) s2.Rect {
	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Latitude, p.Longitude))
	}
	return rect
}

// PointInPolygon checks if a point is inside a polygon using ray casting.
// Points lying on an edge or a vertex count as inside.
func PointInPolygon(point models.Coordinate, polygon []models.Coordinate) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		if PointOnSegment(point, pj, pi) {
			return true
		}
		if ((pi.Latitude > point.Latitude) != (pj.Latitude > point.Latitude)) &&
			(point.Longitude < (pj.Longitude-pi.Longitude)*(point.Latitude-pi.Latitude)/(pj.Latitude-pi.Latitude)+pi.Longitude) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// PointOnSegment reports whether p lies on the segment a-b in the lat/lon plane
func PointOnSegment(p, a, b models.Coordinate) bool {
	if math.Abs(cross(a, b, p)) > planeEpsilon {
		return false
	}
	return withinBox(p, a, b)
}

// PolygonSelfIntersects reports whether any two non-adjacent edges of the
// closed polygon touch or cross
func PolygonSelfIntersects(polygon []models.Coordinate) bool {
	n := len(polygon)
	if n < 4 {
		return false
	}

	for i := 0; i < n; i++ {
		a1, a2 := polygon[i], polygon[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip edges sharing a vertex with edge i
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			b1, b2 := polygon[j], polygon[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}

	return false
}

// segmentsIntersect reports whether segments p1-p2 and q1-q2 share any point
func segmentsIntersect(p1, p2, q1, q2 models.Coordinate) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > planeEpsilon && d2 < -planeEpsilon) || (d1 < -planeEpsilon && d2 > planeEpsilon)) &&
		((d3 > planeEpsilon && d4 < -planeEpsilon) || (d3 < -planeEpsilon && d4 > planeEpsilon)) {
		return true
	}

	// Collinear or touching cases
	return PointOnSegment(p1, q1, q2) || PointOnSegment(p2, q1, q2) ||
		PointOnSegment(q1, p1, p2) || PointOnSegment(q2, p1, p2)
}

// cross is the z component of (b-a) x (p-a) with longitude as x and latitude as y
func cross(a, b, p models.Coordinate) float64 {
	return (b.Longitude-a.Longitude)*(p.Latitude-a.Latitude) -
		(b.Latitude-a.Latitude)*(p.Longitude-a.Longitude)
}

func withinBox(p, a, b models.Coordinate) bool {
	return p.Latitude >= math.Min(a.Latitude, b.Latitude)-planeEpsilon &&
		p.Latitude <= math.Max(a.Latitude, b.Latitude)+planeEpsilon &&
		p.Longitude >= math.Min(a.Longitude, b.Longitude)-planeEpsilon &&
		p.Longitude <= math.Max(a.Longitude, b.Longitude)+planeEpsilon
}
