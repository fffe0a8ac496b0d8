// Package location scores individual GPS samples for trustworthiness and
// detects spoofing patterns across a user's recent history.
//
// Every function is pure: the evaluation time is passed in, nothing is
// logged or stored, and well-formed input never produces an error. Callers
// must reject malformed input (see package validation) first.
package location

// Rules configures a single Validate call
type Rules struct {
	// Proximity radius around the target
	MaxDistanceMeters float64 `koanf:"max_distance_m"`

	// Worst accuracy still accepted
	MinAccuracyMeters float64 `koanf:"min_accuracy_m"`

	// Accuracy tiers: at or below High is high, at or below Medium is medium
	HighAccuracyMeters   float64 `koanf:"high_accuracy_m"`
	MediumAccuracyMeters float64 `koanf:"medium_accuracy_m"`

	// Maximum sample age
	TimeWindowMinutes float64 `koanf:"time_window_min"`

	// Tolerated device clock lead before a sample counts as future-dated
	MaxFutureSkewMinutes float64 `koanf:"max_future_skew_min"`

	// Fallback accepts samples up to FallbackMultiplier x MaxDistanceMeters away
	// unless StrictMode is set
	AllowFallback      bool    `koanf:"allow_fallback"`
	StrictMode         bool    `koanf:"strict_mode"`
	FallbackMultiplier float64 `koanf:"fallback_multiplier"`
}

// DefaultRules provides the default validation rules
func DefaultRules() Rules {
	return Rules{
		MaxDistanceMeters:    100,
		MinAccuracyMeters:    50,
		HighAccuracyMeters:   10,
		MediumAccuracyMeters: 30,
		TimeWindowMinutes:    5,
		MaxFutureSkewMinutes: 2,
		AllowFallback:        true,
		StrictMode:           false,
		FallbackMultiplier:   1.5,
	}
}

// fallbackAllowed reports whether a sample distanceMeters from the target
// qualifies for the soft fallback
func (r Rules) fallbackAllowed(distanceMeters float64) bool {
	return !r.StrictMode && r.AllowFallback && distanceMeters <= r.FallbackMultiplier*r.MaxDistanceMeters
}
