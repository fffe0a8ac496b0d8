package location

import (
	"fmt"
	"math"
	"time"

	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
	"github.com/jengzang/presence-backend-go/internal/stats"
)

// Spoofing reason prefixes
const (
	ReasonImpossibleSpeed   = "impossible speed"
	ReasonVeryHighSpeed     = "very high speed"
	ReasonPerfectAccuracy   = "suspiciously perfect accuracy"
	ReasonIdenticalLocation = "identical locations"
	ReasonRegularIntervals  = "suspiciously regular intervals"
)

// HistoryPoint is one entry of a spoofing-detection history
type HistoryPoint struct {
	Coordinate     models.Coordinate `json:"coordinate"`
	CapturedAt     time.Time         `json:"capturedAt"`
	AccuracyMeters float64           `json:"accuracyMeters"`
}

// SpoofingThresholds defines configurable thresholds for spoofing detection
type SpoofingThresholds struct {
	ImpossibleSpeedKmh    float64 `koanf:"impossible_speed_kmh"`
	ImpossibleSpeedWeight float64 `koanf:"impossible_speed_weight"`
	HighSpeedKmh          float64 `koanf:"high_speed_kmh"`
	HighSpeedWeight       float64 `koanf:"high_speed_weight"`

	PerfectAccuracyMeters float64 `koanf:"perfect_accuracy_m"`
	PerfectAccuracyShare  float64 `koanf:"perfect_accuracy_share"`
	PerfectAccuracyWeight float64 `koanf:"perfect_accuracy_weight"`

	IdenticalMinSamples int     `koanf:"identical_min_samples"`
	IdenticalWeight     float64 `koanf:"identical_weight"`

	RegularMinSamples int     `koanf:"regular_min_samples"`
	// RegularDispersion bounds the intervals' stddev / mean, not their raw variance
	RegularDispersion float64 `koanf:"regular_dispersion"`
	RegularWeight     float64 `koanf:"regular_weight"`

	SuspiciousScore float64 `koanf:"suspicious_score"`
}

// DefaultSpoofingThresholds provides default spoofing detection thresholds
func DefaultSpoofingThresholds() SpoofingThresholds {
	return SpoofingThresholds{
		ImpossibleSpeedKmh:    300,
		ImpossibleSpeedWeight: 0.8,
		HighSpeedKmh:          150,
		HighSpeedWeight:       0.4,
		PerfectAccuracyMeters: 1,
		PerfectAccuracyShare:  0.5,
		PerfectAccuracyWeight: 0.3,
		IdenticalMinSamples:   4,
		IdenticalWeight:       0.6,
		RegularMinSamples:     5,
		RegularDispersion:     0.1,
		RegularWeight:         0.3,
		SuspiciousScore:       0.5,
	}
}

// SpoofingReport is the outcome of DetectSpoofing
type SpoofingReport struct {
	Suspicious bool     `json:"suspicious"`
	Reasons    []string `json:"reasons"`
	Score      float64  `json:"score"` // 0~1
}

// HistoryFromSamples converts location samples into spoofing history points
func HistoryFromSamples(samples []models.LocationSample) []HistoryPoint {
	out := make([]HistoryPoint, len(samples))
	for i, s := range samples {
		out[i] = HistoryPoint{
			Coordinate:     s.Coordinate,
			CapturedAt:     s.CapturedAt,
			AccuracyMeters: s.AccuracyMeters,
		}
	}
	return out
}

// DetectSpoofing scores a time-ordered history for signs of falsified positions.
// Histories with fewer than two points are never suspicious.
func DetectSpoofing(history []HistoryPoint, th SpoofingThresholds) SpoofingReport {
	report := SpoofingReport{Reasons: []string{}}
	if len(history) < 2 {
		return report
	}

	var score float64

	// Rule 1: pairwise travel speed
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		distance := spatial.DistanceMeters(prev.Coordinate, cur.Coordinate)
		speed := spatial.SpeedKmh(distance, cur.CapturedAt.Sub(prev.CapturedAt).Seconds())

		switch {
		case speed > th.ImpossibleSpeedKmh:
			score += th.ImpossibleSpeedWeight
			report.Reasons = append(report.Reasons, speedReason(ReasonImpossibleSpeed, speed, i))
		case speed > th.HighSpeedKmh:
			score += th.HighSpeedWeight
			report.Reasons = append(report.Reasons, speedReason(ReasonVeryHighSpeed, speed, i))
		}
	}

	// Rule 2: too many sub-meter accuracy readings
	perfect := 0
	for _, p := range history {
		if p.AccuracyMeters < th.PerfectAccuracyMeters {
			perfect++
		}
	}
	if float64(perfect)/float64(len(history)) > th.PerfectAccuracyShare {
		score += th.PerfectAccuracyWeight
		report.Reasons = append(report.Reasons, ReasonPerfectAccuracy)
	}

	// Rule 3: every position bit-identical
	if len(history) >= th.IdenticalMinSamples && allIdentical(history) {
		score += th.IdenticalWeight
		report.Reasons = append(report.Reasons, ReasonIdenticalLocation)
	}

	// Rule 4: machine-regular reporting intervals
	if len(history) >= th.RegularMinSamples {
		times := make([]time.Time, len(history))
		for i, p := range history {
			times[i] = p.CapturedAt
		}
		intervals := stats.Intervals(times)
		if stats.Mean(intervals) > 0 && stats.CoefficientOfVariation(intervals) < th.RegularDispersion {
			score += th.RegularWeight
			report.Reasons = append(report.Reasons, ReasonRegularIntervals)
		}
	}

	report.Score = stats.Clamp(score, 0, 1)
	report.Suspicious = report.Score > th.SuspiciousScore
	return report
}

func speedReason(prefix string, speed float64, index int) string {
	if math.IsInf(speed, 1) {
		return fmt.Sprintf("%s: simultaneous samples %d and %d at different positions", prefix, index-1, index)
	}
	return fmt.Sprintf("%s: %.0f km/h between samples %d and %d", prefix, speed, index-1, index)
}

func allIdentical(history []HistoryPoint) bool {
	first := history[0].Coordinate
	for _, p := range history[1:] {
		if math.Float64bits(p.Coordinate.Latitude) != math.Float64bits(first.Latitude) ||
			math.Float64bits(p.Coordinate.Longitude) != math.Float64bits(first.Longitude) {
			return false
		}
	}
	return true
}
