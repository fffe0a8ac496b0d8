package attendance

import (
	"errors"
	"fmt"
	"time"
)

// AlreadyClockedInError is returned when a day already has a clock-in
type AlreadyClockedInError struct {
	UserID string
	Date   string
	At     time.Time
}

func (e *AlreadyClockedInError) Error() string {
	return fmt.Sprintf("user %s already clocked in on %s at %s", e.UserID, e.Date, e.At.Format(time.RFC3339))
}

// NotClockedInError is returned when clocking out of a day without a clock-in
type NotClockedInError struct {
	UserID string
	Date   string
}

func (e *NotClockedInError) Error() string {
	return fmt.Sprintf("user %s has not clocked in on %s", e.UserID, e.Date)
}

// AlreadyClockedOutError is returned when a day already has a clock-out
type AlreadyClockedOutError struct {
	UserID string
	Date   string
	At     time.Time
}

func (e *AlreadyClockedOutError) Error() string {
	return fmt.Sprintf("user %s already clocked out on %s at %s", e.UserID, e.Date, e.At.Format(time.RFC3339))
}

// IsConflict reports whether err is an attendance state-machine violation
func IsConflict(err error) bool {
	var in *AlreadyClockedInError
	var notIn *NotClockedInError
	var out *AlreadyClockedOutError
	return errors.As(err, &in) || errors.As(err, &notIn) || errors.As(err, &out)
}
