package trail

import (
	"errors"
	"testing"
	"time"

	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
)

var (
	origin = models.Coordinate{Latitude: 22.5, Longitude: 114.0}
	start  = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
)

// samplesWithGaps builds a walk east of origin, one sample per gap plus the first
func samplesWithGaps(gaps ...time.Duration) []models.LocationSample {
	at := start
	samples := []models.LocationSample{{Coordinate: origin, CapturedAt: at, AccuracyMeters: 5}}
	for i, g := range gaps {
		at = at.Add(g)
		samples = append(samples, models.LocationSample{
			Coordinate:     spatial.DestinationPoint(origin, 90, float64(i+1)*100),
			CapturedAt:     at,
			AccuracyMeters: 5,
		})
	}
	return samples
}

func TestBuildTrails_SplitsOnGap(t *testing.T) {
	samples := samplesWithGaps(5*time.Minute, 40*time.Minute, 5*time.Minute)

	trails, err := BuildTrails(samples, 30*time.Minute)
	if err != nil {
		t.Fatalf("BuildTrails() error = %v", err)
	}
	if len(trails) != 2 {
		t.Fatalf("expected 2 trails, got %d", len(trails))
	}
	if len(trails[0].Points) != 2 || len(trails[1].Points) != 2 {
		t.Errorf("trail sizes = %d, %d, want 2, 2", len(trails[0].Points), len(trails[1].Points))
	}

	flat := Flatten(trails)
	if len(flat) != len(samples) {
		t.Fatalf("flattened %d points, want %d", len(flat), len(samples))
	}
	for i, p := range flat {
		if p.Coordinate != samples[i].Coordinate || !p.CapturedAt.Equal(samples[i].CapturedAt) {
			t.Errorf("point %d = %+v, want %+v", i, p, samples[i])
		}
	}
}

func TestBuildTrails_Summary(t *testing.T) {
	samples := samplesWithGaps(5*time.Minute, 5*time.Minute)

	trails, err := BuildTrails(samples, 0)
	if err != nil {
		t.Fatalf("BuildTrails() error = %v", err)
	}
	if len(trails) != 1 {
		t.Fatalf("expected 1 trail, got %d", len(trails))
	}

	tr := trails[0]
	if !tr.StartedAt.Equal(start) || !tr.EndedAt.Equal(start.Add(10*time.Minute)) {
		t.Errorf("bounds = %v..%v", tr.StartedAt, tr.EndedAt)
	}
	if tr.DurationSecs != 600 {
		t.Errorf("DurationSecs = %d, want 600", tr.DurationSecs)
	}
	if tr.DistanceMeters < 199.9 || tr.DistanceMeters > 200.1 {
		t.Errorf("DistanceMeters = %f, want ~200", tr.DistanceMeters)
	}
}

func TestBuildTrails_GapAtThresholdDoesNotSplit(t *testing.T) {
	trails, err := BuildTrails(samplesWithGaps(30*time.Minute, 30*time.Minute+time.Second), 30*time.Minute)
	if err != nil {
		t.Fatalf("BuildTrails() error = %v", err)
	}
	if len(trails) != 2 || len(trails[0].Points) != 2 || len(trails[1].Points) != 1 {
		t.Errorf("unexpected split: %d trails", len(trails))
	}
}

func TestBuildTrails_EdgeCases(t *testing.T) {
	trails, err := BuildTrails(nil, time.Minute)
	if err != nil || len(trails) != 0 {
		t.Errorf("empty input: trails=%v err=%v", trails, err)
	}

	single := samplesWithGaps()
	trails, err = BuildTrails(single, time.Minute)
	if err != nil || len(trails) != 1 || len(trails[0].Points) != 1 {
		t.Errorf("single point: trails=%v err=%v", trails, err)
	}
	if trails[0].DistanceMeters != 0 || trails[0].DurationSecs != 0 {
		t.Errorf("single point summary = %+v", trails[0])
	}

	// Equal timestamps are in order
	dup := samplesWithGaps(0, time.Minute)
	if _, err := BuildTrails(dup, time.Minute); err != nil {
		t.Errorf("equal timestamps rejected: %v", err)
	}
}

func TestBuildTrails_OutOfOrder(t *testing.T) {
	samples := samplesWithGaps(5*time.Minute, 5*time.Minute)
	samples[1], samples[2] = samples[2], samples[1]

	trails, err := BuildTrails(samples, 30*time.Minute)
	if trails != nil {
		t.Errorf("expected no trails on error, got %v", trails)
	}

	var orderErr *OrderingError
	if !errors.As(err, &orderErr) {
		t.Fatalf("expected *OrderingError, got %v", err)
	}
	if orderErr.Index != 2 {
		t.Errorf("Index = %d, want 2", orderErr.Index)
	}
	if !orderErr.Current.Before(orderErr.Previous) {
		t.Errorf("Current %v should precede Previous %v", orderErr.Current, orderErr.Previous)
	}
}

func TestBuildTrails_KeepsSpeed(t *testing.T) {
	speed := 4.2
	samples := samplesWithGaps(time.Minute)
	samples[1].SpeedKmh = &speed

	trails, err := BuildTrails(samples, 0)
	if err != nil {
		t.Fatalf("BuildTrails() error = %v", err)
	}
	if got := trails[0].Points[1].SpeedKmh; got == nil || *got != speed {
		t.Errorf("SpeedKmh = %v, want %v", got, speed)
	}
	if trails[0].Points[0].SpeedKmh != nil {
		t.Error("first point should have no speed")
	}
}
