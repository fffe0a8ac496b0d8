package models

// Coordinate is a WGS84 position in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude" db:"latitude" validate:"finite,min=-90,max=90"`
	Longitude float64 `json:"longitude" db:"longitude" validate:"finite,min=-180,max=180"`
}

// NewCoordinate builds a coordinate from latitude and longitude
func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Latitude: lat, Longitude: lon}
}
