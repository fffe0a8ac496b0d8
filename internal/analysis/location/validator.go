package location

import (
	"time"

	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
)

// ReasonFutureTimestamp marks a sample dated further ahead than the allowed clock skew
const ReasonFutureTimestamp = "future_timestamp"

// AccuracyCheck is the outcome of ValidateAccuracy
type AccuracyCheck struct {
	Accepted bool                  `json:"accepted"`
	Tier     models.ConfidenceTier `json:"tier"`
}

// FreshnessCheck is the outcome of ValidateFreshness
type FreshnessCheck struct {
	Accepted   bool    `json:"accepted"`
	AgeMinutes float64 `json:"ageMinutes"`
	Future     bool    `json:"future,omitempty"`
}

// ProximityCheck is the outcome of ValidateProximity
type ProximityCheck struct {
	Accepted       bool                  `json:"accepted"`
	Tier           models.ConfidenceTier `json:"tier"`
	DistanceMeters float64               `json:"distanceMeters"`
	Fallback       bool                  `json:"fallback"`
}

// ValidateAccuracy buckets the reported accuracy radius into a confidence tier
func ValidateAccuracy(accuracyMeters float64, rules Rules) AccuracyCheck {
	switch {
	case accuracyMeters <= rules.HighAccuracyMeters:
		return AccuracyCheck{Accepted: true, Tier: models.TierHigh}
	case accuracyMeters <= rules.MediumAccuracyMeters:
		return AccuracyCheck{Accepted: true, Tier: models.TierMedium}
	case accuracyMeters <= rules.MinAccuracyMeters:
		return AccuracyCheck{Accepted: true, Tier: models.TierLow}
	default:
		return AccuracyCheck{Accepted: false, Tier: models.TierLow}
	}
}

// ValidateFreshness rejects samples older than the rule's time window relative to now
func ValidateFreshness(capturedAt, now time.Time, rules Rules) FreshnessCheck {
	age := now.Sub(capturedAt).Minutes()

	if age < -rules.MaxFutureSkewMinutes {
		return FreshnessCheck{Accepted: false, AgeMinutes: age, Future: true}
	}
	return FreshnessCheck{Accepted: age <= rules.TimeWindowMinutes, AgeMinutes: age}
}

// ValidateProximity checks how far point is from target
func ValidateProximity(point, target models.Coordinate, rules Rules) ProximityCheck {
	distance := spatial.DistanceMeters(point, target)

	if distance <= rules.MaxDistanceMeters {
		ratio := 0.0
		if rules.MaxDistanceMeters > 0 {
			ratio = distance / rules.MaxDistanceMeters
		}

		tier := models.TierLow
		switch {
		case ratio <= 0.5:
			tier = models.TierHigh
		case ratio <= 0.8:
			tier = models.TierMedium
		}
		return ProximityCheck{Accepted: true, Tier: tier, DistanceMeters: distance}
	}

	if rules.fallbackAllowed(distance) {
		return ProximityCheck{Accepted: true, Tier: models.TierLow, DistanceMeters: distance, Fallback: true}
	}

	return ProximityCheck{Accepted: false, Tier: models.TierLow, DistanceMeters: distance}
}

// Validate combines the accuracy, freshness and proximity checks into one verdict.
//
// A sample is accepted when all three checks pass, or when the fallback path
// applies (not strict, fallback allowed, within FallbackMultiplier x MaxDistanceMeters).
func Validate(sample models.LocationSample, target models.Coordinate, rules Rules, now time.Time) models.ValidationVerdict {
	accuracy := ValidateAccuracy(sample.AccuracyMeters, rules)
	freshness := ValidateFreshness(sample.CapturedAt, now, rules)
	proximity := ValidateProximity(sample.Coordinate, target, rules)

	allPass := accuracy.Accepted && freshness.Accepted && proximity.Accepted
	accepted := allPass || rules.fallbackAllowed(proximity.DistanceMeters)

	reasons := make([]string, 0, 4)
	if !accuracy.Accepted {
		reasons = append(reasons, models.ReasonLowAccuracy)
	}
	if freshness.Future {
		reasons = append(reasons, ReasonFutureTimestamp)
	} else if !freshness.Accepted {
		reasons = append(reasons, models.ReasonStaleSample)
	}
	if proximity.DistanceMeters > rules.MaxDistanceMeters {
		reasons = append(reasons, models.ReasonOutOfRange)
	}
	if accepted && (!allPass || proximity.Fallback) {
		reasons = append(reasons, models.ReasonFallbackAccepted)
	}

	tier := models.TierLow
	switch {
	case allPass && proximity.Tier == models.TierHigh && accuracy.Tier == models.TierHigh:
		tier = models.TierHigh
	case accepted && (proximity.Tier == models.TierMedium || accuracy.Tier == models.TierMedium):
		tier = models.TierMedium
	}

	return models.ValidationVerdict{
		Accepted:       accepted,
		Tier:           tier,
		Confidence:     ConfidenceScore(sample, nil, now, DefaultConfidenceParams()).Confidence,
		DistanceMeters: proximity.DistanceMeters,
		Reasons:        reasons,
	}
}
