package models

import "time"

// TrailPoint is one position of a reconstructed trail
type TrailPoint struct {
	Coordinate Coordinate `json:"coordinate"`
	CapturedAt time.Time  `json:"capturedAt"`
	SpeedKmh   *float64   `json:"speedKmh,omitempty"`
}

// Trail is a contiguous run of points with no gap above the configured maximum
type Trail struct {
	Points         []TrailPoint `json:"points"`
	StartedAt      time.Time    `json:"startedAt"`
	EndedAt        time.Time    `json:"endedAt"`
	DurationSecs   int64        `json:"durationSeconds"`
	DistanceMeters float64      `json:"distanceMeters"`
}

// TrailQuery represents filter parameters for querying trails
type TrailQuery struct {
	From       int64 `form:"from"`   // Unix timestamp
	To         int64 `form:"to"`     // Unix timestamp
	MaxGapMins int   `form:"maxGap"` // Minutes, 0 uses the default
}
