package spatial

import (
	"math"
	"testing"

	"github.com/jengzang/presence-backend-go/internal/models"
)

func TestDistanceMeters_Identity(t *testing.T) {
	points := []models.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 10, Longitude: 10},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 89.9, Longitude: -179.9},
	}

	for _, p := range points {
		if d := DistanceMeters(p, p); d != 0 {
			t.Errorf("DistanceMeters(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	pairs := [][2]models.Coordinate{
		{{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 1}},
		{{Latitude: 40.7128, Longitude: -74.0060}, {Latitude: 51.5074, Longitude: -0.1278}},
		{{Latitude: -10, Longitude: 170}, {Latitude: 5, Longitude: -175}},
	}

	for _, pair := range pairs {
		ab := DistanceMeters(pair[0], pair[1])
		ba := DistanceMeters(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("distance not symmetric: %f vs %f", ab, ba)
		}
	}
}

func TestDistanceMeters_KnownFixtures(t *testing.T) {
	tests := []struct {
		name      string
		a, b      models.Coordinate
		want      float64
		tolerance float64
	}{
		{
			name:      "one degree of longitude on the equator",
			a:         models.Coordinate{Latitude: 0, Longitude: 0},
			b:         models.Coordinate{Latitude: 0, Longitude: 1},
			want:      111195,
			tolerance: 50,
		},
		{
			name:      "NYC to London",
			a:         models.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
			b:         models.Coordinate{Latitude: 51.5074, Longitude: -0.1278},
			want:      5570000,
			tolerance: 10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceMeters() = %.1f, want %.1f ± %.1f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestBearingDegrees(t *testing.T) {
	origin := models.Coordinate{Latitude: 0, Longitude: 0}

	tests := []struct {
		name string
		to   models.Coordinate
		want float64
	}{
		{"north", models.Coordinate{Latitude: 1, Longitude: 0}, 0},
		{"east", models.Coordinate{Latitude: 0, Longitude: 1}, 90},
		{"south", models.Coordinate{Latitude: -1, Longitude: 0}, 180},
		{"west", models.Coordinate{Latitude: 0, Longitude: -1}, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BearingDegrees(origin, tt.to)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("BearingDegrees() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDestinationPoint_RoundTrip(t *testing.T) {
	start := models.Coordinate{Latitude: 10, Longitude: 10}

	for _, bearing := range []float64{0, 45, 135, 270} {
		dest := DestinationPoint(start, bearing, 250)
		if d := DistanceMeters(start, dest); math.Abs(d-250) > 1e-3 {
			t.Errorf("bearing %.0f: distance = %f, want 250", bearing, d)
		}
	}
}

func TestSpeedKmh(t *testing.T) {
	if got := SpeedKmh(1000, 3600); math.Abs(got-1) > 1e-9 {
		t.Errorf("SpeedKmh(1000, 3600) = %f, want 1", got)
	}
	if got := SpeedKmh(1000, 1); math.Abs(got-3600) > 1e-9 {
		t.Errorf("SpeedKmh(1000, 1) = %f, want 3600", got)
	}
	if got := SpeedKmh(10, 0); !math.IsInf(got, 1) {
		t.Errorf("SpeedKmh(10, 0) = %f, want +Inf", got)
	}
	if got := SpeedKmh(0, 0); got != 0 {
		t.Errorf("SpeedKmh(0, 0) = %f, want 0", got)
	}
}

func TestCellToken_SameCellForNearbyPoints(t *testing.T) {
	a := models.Coordinate{Latitude: 22.5431, Longitude: 114.0579}
	b := DestinationPoint(a, 90, 1)

	if CellToken(a, 10) != CellToken(b, 10) {
		t.Error("points 1 m apart should share a level-10 cell")
	}
	if CellToken(a, 30) == "" {
		t.Error("expected non-empty token")
	}
}
