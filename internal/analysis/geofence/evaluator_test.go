package geofence

import (
	"testing"
	"time"

	"github.com/golang/geo/s2"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
)

var (
	center = models.Coordinate{Latitude: 10, Longitude: 10}
	at     = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
)

func circle(id string, radius float64) models.GeofenceRegion {
	return models.GeofenceRegion{
		ID:           id,
		Shape:        models.ShapeCircle,
		Center:       center,
		RadiusMeters: radius,
		Active:       true,
	}
}

func square(id string) models.GeofenceRegion {
	return models.GeofenceRegion{
		ID:    id,
		Shape: models.ShapePolygon,
		Vertices: []models.Coordinate{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0, Longitude: 1},
			{Latitude: 1, Longitude: 1},
			{Latitude: 1, Longitude: 0},
		},
		Active: true,
	}
}

func TestContains_Circle(t *testing.T) {
	region := circle("site", 100)

	tests := []struct {
		name  string
		point models.Coordinate
		want  bool
	}{
		{"center", center, true},
		{"inside", spatial.DestinationPoint(center, 30, 60), true},
		{"on boundary", spatial.DestinationPoint(center, 90, 100), true},
		{"on boundary north", spatial.DestinationPoint(center, 0, 100), true},
		{"outside", spatial.DestinationPoint(center, 90, 150), false},
		{"just outside", spatial.DestinationPoint(center, 200, 100.01), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.point, region); got != tt.want {
				t.Errorf("Contains() = %v, want %v (distance %.6f m)", got, tt.want, spatial.DistanceMeters(tt.point, center))
			}
		})
	}
}

func TestContains_Polygon(t *testing.T) {
	region := square("block")

	tests := []struct {
		name  string
		point models.Coordinate
		want  bool
	}{
		{"interior", models.Coordinate{Latitude: 0.5, Longitude: 0.5}, true},
		{"on edge", models.Coordinate{Latitude: 0, Longitude: 0.5}, true},
		{"on far edge", models.Coordinate{Latitude: 1, Longitude: 0.25}, true},
		{"vertex", models.Coordinate{Latitude: 1, Longitude: 1}, true},
		{"outside bounds", models.Coordinate{Latitude: 2, Longitude: 2}, false},
		{"outside beside", models.Coordinate{Latitude: 0.5, Longitude: -0.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.point, region); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestContains_PolygonExtremeEdges(t *testing.T) {
	region := models.GeofenceRegion{
		ID:    "lot",
		Shape: models.ShapePolygon,
		Vertices: []models.Coordinate{
			{Latitude: 22.5431, Longitude: 114.0579},
			{Latitude: 22.5431, Longitude: 114.0612},
			{Latitude: 22.5467, Longitude: 114.0612},
			{Latitude: 22.5467, Longitude: 114.0579},
		},
		Active: true,
	}

	bounds := paddedBounds(region.Vertices)
	for _, v := range region.Vertices {
		if !bounds.ContainsLatLng(s2.LatLngFromDegrees(v.Latitude, v.Longitude)) {
			t.Errorf("paddedBounds() excludes vertex %v", v)
		}
	}

	tests := []struct {
		name  string
		point models.Coordinate
		want  bool
	}{
		{"south edge", models.Coordinate{Latitude: 22.5431, Longitude: 114.0600}, true},
		{"north edge", models.Coordinate{Latitude: 22.5467, Longitude: 114.0600}, true},
		{"west edge", models.Coordinate{Latitude: 22.5450, Longitude: 114.0579}, true},
		{"east edge", models.Coordinate{Latitude: 22.5450, Longitude: 114.0612}, true},
		{"corner", models.Coordinate{Latitude: 22.5467, Longitude: 114.0612}, true},
		{"north of box", models.Coordinate{Latitude: 22.5468, Longitude: 114.0600}, false},
		{"east of box", models.Coordinate{Latitude: 22.5450, Longitude: 114.0613}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.point, region); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestContains_DegenerateRegions(t *testing.T) {
	line := square("line")
	line.Vertices = line.Vertices[:2]

	unknown := circle("blob", 100)
	unknown.Shape = "blob"

	for _, region := range []models.GeofenceRegion{line, unknown} {
		if Contains(center, region) {
			t.Errorf("region %q should never contain a point", region.ID)
		}
	}
}

func TestCenter(t *testing.T) {
	if got := Center(circle("c", 50)); got != center {
		t.Errorf("circle Center = %v, want %v", got, center)
	}

	got := Center(square("s"))
	if got.Latitude != 0.5 || got.Longitude != 0.5 {
		t.Errorf("polygon Center = %v, want (0.5, 0.5)", got)
	}
}

func TestActiveRegions(t *testing.T) {
	a, b, c := circle("a", 10), circle("b", 10), circle("c", 10)
	b.Active = false

	got := ActiveRegions([]models.GeofenceRegion{a, b, c})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("ActiveRegions() = %v, want [a c]", got)
	}
}

func TestEvaluateTransitions_EnterAndExit(t *testing.T) {
	regions := []models.GeofenceRegion{circle("near", 100), circle("wide", 1000)}
	point := spatial.DestinationPoint(center, 90, 500)

	// Outside "near", inside "wide"; no prior state
	events, state := EvaluateTransitions(point, at, regions, nil)
	if len(events) != 1 || events[0].RegionID != "wide" || events[0].Kind != models.TransitionEnter {
		t.Fatalf("expected a single enter for wide, got %+v", events)
	}
	if !state["wide"].Inside || !state["wide"].Since.Equal(at) {
		t.Errorf("wide state = %+v, want inside since %v", state["wide"], at)
	}
	if state["near"].Inside {
		t.Errorf("near state should be outside, got %+v", state["near"])
	}

	// Move to the center: enter near, stay in wide
	later := at.Add(5 * time.Minute)
	events, state = EvaluateTransitions(center, later, regions, state)
	if len(events) != 1 || events[0].RegionID != "near" || events[0].Kind != models.TransitionEnter {
		t.Fatalf("expected a single enter for near, got %+v", events)
	}
	if !state["wide"].Since.Equal(at) {
		t.Errorf("unchanged membership must keep its original since, got %v", state["wide"].Since)
	}

	// Leave both, events in region order
	far := spatial.DestinationPoint(center, 90, 5000)
	events, _ = EvaluateTransitions(far, later.Add(time.Minute), regions, state)
	if len(events) != 2 {
		t.Fatalf("expected two exits, got %+v", events)
	}
	if events[0].RegionID != "near" || events[1].RegionID != "wide" {
		t.Errorf("events out of region order: %+v", events)
	}
	for _, e := range events {
		if e.Kind != models.TransitionExit {
			t.Errorf("expected exit, got %+v", e)
		}
	}
}

func TestEvaluateTransitions_NoEventWhenUnchanged(t *testing.T) {
	regions := []models.GeofenceRegion{circle("site", 100)}
	prior := map[string]models.MembershipState{"site": {Inside: true, Since: at}}

	events, next := EvaluateTransitions(center, at.Add(time.Hour), regions, prior)
	if len(events) != 0 {
		t.Errorf("expected no events, got %+v", events)
	}
	if next["site"] != prior["site"] {
		t.Errorf("state changed without a transition: %+v", next["site"])
	}
}

func TestEvaluateTransitions_SkipsInactiveAndKeepsPrior(t *testing.T) {
	inactive := circle("closed", 100)
	inactive.Active = false

	prior := map[string]models.MembershipState{
		"closed": {Inside: false, Since: at},
		"other":  {Inside: true, Since: at},
	}

	events, next := EvaluateTransitions(center, at.Add(time.Minute), []models.GeofenceRegion{inactive}, prior)
	if len(events) != 0 {
		t.Errorf("inactive regions must not emit events, got %+v", events)
	}
	if next["other"] != prior["other"] || next["closed"] != prior["closed"] {
		t.Errorf("unevaluated state should carry over, got %+v", next)
	}
}

func TestEvaluateTransitions_DoesNotMutatePrior(t *testing.T) {
	prior := map[string]models.MembershipState{"site": {Inside: false, Since: at}}

	_, next := EvaluateTransitions(center, at.Add(time.Minute), []models.GeofenceRegion{circle("site", 100)}, prior)

	if prior["site"].Inside {
		t.Error("prior map was mutated")
	}
	if !next["site"].Inside {
		t.Error("next state should be inside")
	}
}
