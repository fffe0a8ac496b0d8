package stats

import (
	"math"
	"testing"
	"time"
)

func TestMeanVarianceStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := Mean(values); got != 5 {
		t.Errorf("Mean() = %f, want 5", got)
	}
	if got := Variance(values); got != 4 {
		t.Errorf("Variance() = %f, want 4", got)
	}
	if got := StdDev(values); got != 2 {
		t.Errorf("StdDev() = %f, want 2", got)
	}
	if got := CoefficientOfVariation(values); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("CoefficientOfVariation() = %f, want 0.4", got)
	}
}

func TestEmptyInputs(t *testing.T) {
	if Mean(nil) != 0 || Variance(nil) != 0 || Max(nil) != 0 || CoefficientOfVariation(nil) != 0 {
		t.Error("expected zero values for empty input")
	}
	if Intervals([]time.Time{time.Now()}) != nil {
		t.Error("expected nil intervals for a single timestamp")
	}
}

func TestIntervalsAndMax(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(30 * time.Second), base.Add(90 * time.Second)}

	got := Intervals(times)
	if len(got) != 2 || got[0] != 30 || got[1] != 60 {
		t.Errorf("Intervals() = %v, want [30 60]", got)
	}
	if Max(got) != 60 {
		t.Errorf("Max() = %f, want 60", Max(got))
	}
}

func TestClamp(t *testing.T) {
	if Clamp(1.5, 0, 1) != 1 || Clamp(-2, 0, 1) != 0 || Clamp(0.3, 0, 1) != 0.3 {
		t.Error("Clamp returned unexpected value")
	}
}
