// Package attendance derives per-day attendance state from clock-in and
// clock-out events. Every operation takes the previous record and returns the
// next one; storage and per-user serialization belong to the caller.
package attendance

import "time"

// DateLayout is the format of AttendanceRecord.Date
const DateLayout = "2006-01-02"

// Policy defines the working-hours rules used to flag anomalies.
// Hours are wall-clock hours in Location.
type Policy struct {
	Location *time.Location `koanf:"-"`

	// Clock-in hour in [LateFromHour, LateUntilHour) is late
	LateFromHour  int `koanf:"late_from_hour"`
	LateUntilHour int `koanf:"late_until_hour"`

	// Clock-out hour in (EarlyAfterHour, EarlyBeforeHour) is early
	EarlyAfterHour  int `koanf:"early_after_hour"`
	EarlyBeforeHour int `koanf:"early_before_hour"`
}

// DefaultPolicy provides the default working-hours policy in UTC
func DefaultPolicy() Policy {
	return Policy{
		Location:        time.UTC,
		LateFromHour:    9,
		LateUntilHour:   12,
		EarlyAfterHour:  6,
		EarlyBeforeHour: 17,
	}
}

func (p Policy) isLate(clockIn time.Time) bool {
	h := clockIn.In(p.Location).Hour()
	return h >= p.LateFromHour && h < p.LateUntilHour
}

func (p Policy) isEarly(clockOut time.Time) bool {
	h := clockOut.In(p.Location).Hour()
	return h > p.EarlyAfterHour && h < p.EarlyBeforeHour
}
