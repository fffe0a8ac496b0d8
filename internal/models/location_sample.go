package models

import "time"

// LocationSample is a single GPS fix reported by a client device
type LocationSample struct {
	Coordinate     Coordinate `json:"coordinate"`
	AccuracyMeters float64    `json:"accuracyMeters" db:"accuracy_m" validate:"finite,min=0"`
	CapturedAt     time.Time  `json:"capturedAt" db:"captured_at" validate:"required"`
	BatteryLevel   *int       `json:"batteryLevel,omitempty" db:"battery_level" validate:"omitempty,min=0,max=100"`
	SpeedKmh       *float64   `json:"speedKmh,omitempty" db:"speed_kmh" validate:"omitempty,finite,min=0"`
}

// ConfidenceTier is a coarse trust bucket for a sample
type ConfidenceTier string

// Confidence tiers
const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// Verdict reason codes
const (
	ReasonLowAccuracy      = "low_accuracy"
	ReasonStaleSample      = "stale_sample"
	ReasonOutOfRange       = "out_of_range"
	ReasonFallbackAccepted = "fallback_accepted"
	ReasonSuspectedSpoof   = "suspected_spoofing"
)

// ValidationVerdict is the outcome of validating one sample against a target
type ValidationVerdict struct {
	Accepted       bool           `json:"accepted"`
	Tier           ConfidenceTier `json:"tier"`
	Confidence     float64        `json:"confidence"`     // 0~1
	DistanceMeters float64        `json:"distanceMeters"` // distance to target
	Reasons        []string       `json:"reasons"`
}

// PingRequest is the body of a tracking ping. SiteID optionally names the
// geofence whose center is the proximity target.
type PingRequest struct {
	LocationSample
	SiteID string `json:"siteId,omitempty"`
}

// StoredSample is an accepted sample as persisted for a user
type StoredSample struct {
	ID         int64   `json:"id" db:"id"`
	UserID     string  `json:"userId" db:"user_id"`
	CellToken  string  `json:"cellToken" db:"cell_token"`
	Confidence float64 `json:"confidence" db:"confidence"`
	LocationSample
}
