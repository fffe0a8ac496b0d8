package models

import "time"

// ShapeKind identifies the geometry of a geofence region
type ShapeKind string

// Shape kinds
const (
	ShapeCircle  ShapeKind = "circle"
	ShapePolygon ShapeKind = "polygon"
)

// GeofenceRegion is a circular or polygonal area
type GeofenceRegion struct {
	ID           string       `json:"id" db:"id"`
	Name         string       `json:"name" db:"name" validate:"required,max=200"`
	Shape        ShapeKind    `json:"shape" db:"shape" validate:"required,oneof=circle polygon"`
	Center       Coordinate   `json:"center,omitempty" db:"center"`
	RadiusMeters float64      `json:"radiusMeters,omitempty" db:"radius_m" validate:"finite,min=0"`
	Vertices     []Coordinate `json:"vertices,omitempty" db:"vertices" validate:"omitempty,dive"`
	Active       bool         `json:"active" db:"active"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// MembershipState records whether a user is inside a region and since when
type MembershipState struct {
	Inside bool      `json:"inside" db:"inside"`
	Since  time.Time `json:"since" db:"since"`
}

// TransitionKind is the direction of a geofence crossing
type TransitionKind string

// Transition kinds
const (
	TransitionEnter TransitionKind = "enter"
	TransitionExit  TransitionKind = "exit"
)

// TransitionEvent is emitted when membership of a region changes
type TransitionEvent struct {
	RegionID string         `json:"regionId"`
	Kind     TransitionKind `json:"kind"`
	At       time.Time      `json:"at"`
}

// GeofenceRequest is the body of a geofence create or update call.
// A missing Active defaults to true on create and is left unchanged on update.
type GeofenceRequest struct {
	Name         string       `json:"name"`
	Shape        ShapeKind    `json:"shape"`
	Center       Coordinate   `json:"center"`
	RadiusMeters float64      `json:"radiusMeters"`
	Vertices     []Coordinate `json:"vertices"`
	Active       *bool        `json:"active"`
}

// EventQuery selects geofence transitions by time range
type EventQuery struct {
	From int64 `form:"from"` // Unix timestamp
	To   int64 `form:"to"`   // Unix timestamp
}
