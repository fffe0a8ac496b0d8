package spatial

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/jengzang/presence-backend-go/internal/models"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	EarthRadiusKm     = 6371.0    // Earth's mean radius in kilometers
)

// DistanceMeters returns the great-circle distance between two coordinates in meters
func DistanceMeters(a, b models.Coordinate) float64 {
	return HaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// HaversineDistance calculates the great-circle distance between two points in meters
// using the Haversine formula
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// SpeedKmh returns the average speed needed to cover distanceMeters in seconds.
// A zero or negative interval yields +Inf for any positive distance.
func SpeedKmh(distanceMeters, seconds float64) float64 {
	if seconds <= 0 {
		if distanceMeters > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return (distanceMeters / 1000) / (seconds / 3600)
}

// BearingDegrees calculates the initial bearing (forward azimuth) from a to b.
// Returns bearing in degrees (0-360), where 0 is North, 90 is East, etc.
func BearingDegrees(a, b models.Coordinate) float64 {
	p1 := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	p2 := s2.LatLngFromDegrees(b.Latitude, b.Longitude)

	lat1 := p1.Lat.Radians()
	lat2 := p2.Lat.Radians()
	lonDiff := p2.Lng.Radians() - p1.Lng.Radians()

	y := math.Sin(lonDiff) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lonDiff)
	bearing := math.Atan2(y, x)

	// Convert to degrees and normalize to 0-360
	bearingDeg := bearing * 180 / math.Pi
	return math.Mod(bearingDeg+360, 360)
}

// DestinationPoint returns the coordinate reached from start after travelling
// distance meters along bearing degrees
func DestinationPoint(start models.Coordinate, bearing, distance float64) models.Coordinate {
	p := s2.LatLngFromDegrees(start.Latitude, start.Longitude)
	bearingRad := bearing * math.Pi / 180
	angularDistance := distance / EarthRadiusMeters

	latRad := p.Lat.Radians()
	lonRad := p.Lng.Radians()

	lat2 := math.Asin(math.Sin(latRad)*math.Cos(angularDistance) +
		math.Cos(latRad)*math.Sin(angularDistance)*math.Cos(bearingRad))

	lon2 := lonRad + math.Atan2(
		math.Sin(bearingRad)*math.Sin(angularDistance)*math.Cos(latRad),
		math.Cos(angularDistance)-math.Sin(latRad)*math.Sin(lat2))

	return models.Coordinate{
		Latitude:  lat2 * 180 / math.Pi,
		Longitude: lon2 * 180 / math.Pi,
	}
}

// CellToken returns the s2 cell token containing c at the given level (0-30).
// Used as a coarse spatial index for stored samples.
func CellToken(c models.Coordinate, level int) string {
	if level < 0 {
		level = 0
	}
	if level > s2.MaxLevel {
		level = s2.MaxLevel
	}
	id := s2.CellIDFromLatLng(s2.LatLngFromDegrees(c.Latitude, c.Longitude))
	return id.Parent(level).ToToken()
}
