package service

import (
	"errors"
	"strings"

	"github.com/jengzang/presence-backend-go/internal/models"
)

// ErrRegionNotFound is returned when a referenced geofence does not exist
var ErrRegionNotFound = errors.New("geofence not found")

// LocationRejectedError is returned when a clock event's location fails validation
type LocationRejectedError struct {
	Verdict models.ValidationVerdict
}

func (e *LocationRejectedError) Error() string {
	if len(e.Verdict.Reasons) == 0 {
		return "location rejected"
	}
	return "location rejected: " + strings.Join(e.Verdict.Reasons, ", ")
}

// IsLocationRejected reports whether err is or wraps a *LocationRejectedError
func IsLocationRejected(err error) bool {
	var le *LocationRejectedError
	return errors.As(err, &le)
}
