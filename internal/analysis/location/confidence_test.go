package location

import (
	"math"
	"testing"
	"time"

	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
)

func TestConfidenceScore_NoHistory(t *testing.T) {
	sample := models.LocationSample{
		Coordinate:     target,
		AccuracyMeters: 5,
		CapturedAt:     now.Add(-1 * time.Minute),
	}

	got := ConfidenceScore(sample, nil, now, DefaultConfidenceParams())

	if math.Abs(got.Factors.Accuracy-0.9) > 1e-9 {
		t.Errorf("Accuracy factor = %f, want 0.9", got.Factors.Accuracy)
	}
	if math.Abs(got.Factors.Freshness-0.9) > 1e-9 {
		t.Errorf("Freshness factor = %f, want 0.9", got.Factors.Freshness)
	}
	if got.Factors.Consistency != 0.5 {
		t.Errorf("Consistency factor = %f, want 0.5", got.Factors.Consistency)
	}
	if math.Abs(got.Confidence-0.78) > 1e-9 {
		t.Errorf("Confidence = %f, want 0.78", got.Confidence)
	}
}

func TestConfidenceScore_Clamping(t *testing.T) {
	sample := models.LocationSample{
		Coordinate:     target,
		AccuracyMeters: 120,
		CapturedAt:     now.Add(-time.Hour),
	}

	got := ConfidenceScore(sample, nil, now, DefaultConfidenceParams())
	if got.Factors.Accuracy != 0 || got.Factors.Freshness != 0 {
		t.Errorf("expected clamped zero factors, got %+v", got.Factors)
	}

	sample.CapturedAt = now.Add(time.Minute)
	if got := ConfidenceScore(sample, nil, now, DefaultConfidenceParams()); got.Factors.Freshness != 1 {
		t.Errorf("future sample freshness = %f, want 1", got.Factors.Freshness)
	}
}

func TestConfidenceScore_Consistency(t *testing.T) {
	last := models.LocationSample{Coordinate: target, AccuracyMeters: 5, CapturedAt: now.Add(-2 * time.Minute)}

	// 60 km/h over one minute allows 1000 m
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"stationary", 0, 1},
		{"within bound", 500, 1},
		{"half over bound", 1500, 0.5},
		{"double the bound", 2000, 0},
		{"far beyond", 10000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := models.LocationSample{
				Coordinate:     spatial.DestinationPoint(target, 180, tt.distance),
				AccuracyMeters: 5,
				CapturedAt:     now.Add(-1 * time.Minute),
			}

			got := ConfidenceScore(sample, []models.LocationSample{last}, now, DefaultConfidenceParams())
			if math.Abs(got.Factors.Consistency-tt.want) > 1e-6 {
				t.Errorf("Consistency = %f, want %f", got.Factors.Consistency, tt.want)
			}
		})
	}
}

func TestConfidenceScore_SimultaneousSamples(t *testing.T) {
	last := models.LocationSample{Coordinate: target, CapturedAt: now}
	moved := models.LocationSample{Coordinate: spatial.DestinationPoint(target, 0, 10), CapturedAt: now}

	if got := ConfidenceScore(last, []models.LocationSample{last}, now, DefaultConfidenceParams()); got.Factors.Consistency != 1 {
		t.Errorf("same place same time: Consistency = %f, want 1", got.Factors.Consistency)
	}
	if got := ConfidenceScore(moved, []models.LocationSample{last}, now, DefaultConfidenceParams()); got.Factors.Consistency != 0 {
		t.Errorf("moved at same time: Consistency = %f, want 0", got.Factors.Consistency)
	}
}
