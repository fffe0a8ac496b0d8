package location

import (
	"time"

	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
	"github.com/jengzang/presence-backend-go/internal/stats"
)

// ConfidenceParams configures ConfidenceScore
type ConfidenceParams struct {
	AccuracyCeilingMeters   float64 `koanf:"accuracy_ceiling_m"`
	FreshnessCeilingMinutes float64 `koanf:"freshness_ceiling_min"`
	MaxPlausibleSpeedKmh    float64 `koanf:"max_plausible_speed_kmh"`
	NeutralConsistency      float64 `koanf:"neutral_consistency"`

	AccuracyWeight    float64 `koanf:"accuracy_weight"`
	FreshnessWeight   float64 `koanf:"freshness_weight"`
	ConsistencyWeight float64 `koanf:"consistency_weight"`
}

// DefaultConfidenceParams provides the default confidence blend
func DefaultConfidenceParams() ConfidenceParams {
	return ConfidenceParams{
		AccuracyCeilingMeters:   50,
		FreshnessCeilingMinutes: 10,
		MaxPlausibleSpeedKmh:    60,
		NeutralConsistency:      0.5,
		AccuracyWeight:          0.4,
		FreshnessWeight:         0.3,
		ConsistencyWeight:       0.3,
	}
}

// ConfidenceFactors are the individual 0~1 components of a confidence score
type ConfidenceFactors struct {
	Accuracy    float64 `json:"accuracy"`
	Freshness   float64 `json:"freshness"`
	Consistency float64 `json:"consistency"`
}

// ConfidenceResult is the outcome of ConfidenceScore
type ConfidenceResult struct {
	Confidence float64           `json:"confidence"`
	Factors    ConfidenceFactors `json:"factors"`
}

// ConfidenceScore blends accuracy, freshness and consistency with the last
// known sample into a single 0~1 score. previous must be ordered by capture time.
func ConfidenceScore(sample models.LocationSample, previous []models.LocationSample, now time.Time, params ConfidenceParams) ConfidenceResult {
	factors := ConfidenceFactors{
		Accuracy:    stats.Clamp((params.AccuracyCeilingMeters-sample.AccuracyMeters)/params.AccuracyCeilingMeters, 0, 1),
		Freshness:   stats.Clamp((params.FreshnessCeilingMinutes-now.Sub(sample.CapturedAt).Minutes())/params.FreshnessCeilingMinutes, 0, 1),
		Consistency: params.NeutralConsistency,
	}

	if len(previous) > 0 {
		factors.Consistency = consistency(previous[len(previous)-1], sample, params.MaxPlausibleSpeedKmh)
	}

	return ConfidenceResult{
		Confidence: params.AccuracyWeight*factors.Accuracy +
			params.FreshnessWeight*factors.Freshness +
			params.ConsistencyWeight*factors.Consistency,
		Factors: factors,
	}
}

// consistency is 1 while the implied travel stays within maxSpeedKmh and
// decays linearly to 0 at twice the plausible distance
func consistency(last, sample models.LocationSample, maxSpeedKmh float64) float64 {
	distance := spatial.DistanceMeters(last.Coordinate, sample.Coordinate)
	elapsedHours := sample.CapturedAt.Sub(last.CapturedAt).Hours()

	allowed := maxSpeedKmh * 1000 * elapsedHours
	if allowed <= 0 {
		if distance == 0 {
			return 1
		}
		return 0
	}
	if distance <= allowed {
		return 1
	}
	return stats.Clamp(1-(distance-allowed)/allowed, 0, 1)
}
