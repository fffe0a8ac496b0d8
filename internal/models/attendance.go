package models

import (
	"sort"
	"time"
)

// AttendanceStatus is the derived state of a user's day
type AttendanceStatus string

// Attendance statuses
const (
	StatusAbsent  AttendanceStatus = "absent"
	StatusPending AttendanceStatus = "pending"
	StatusPartial AttendanceStatus = "partial"
	StatusPresent AttendanceStatus = "present"
)

// Anomaly is an advisory flag attached to an attendance record
type Anomaly string

// Anomaly codes
const (
	AnomalyLateClockIn         Anomaly = "late_clock_in"
	AnomalyEarlyClockOut       Anomaly = "early_clock_out"
	AnomalyMissingClockOut     Anomaly = "missing_clock_out"
	AnomalyClockInOutsideSite  Anomaly = "clock_in_outside_site"
	AnomalyClockOutOutsideSite Anomaly = "clock_out_outside_site"
)

// AnomalySet is a sorted list of anomalies without duplicates
type AnomalySet []Anomaly

// With returns a copy of the set that includes a
func (s AnomalySet) With(a Anomaly) AnomalySet {
	if s.Has(a) {
		return s
	}
	out := make(AnomalySet, 0, len(s)+1)
	out = append(out, s...)
	out = append(out, a)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether a is in the set
func (s AnomalySet) Has(a Anomaly) bool {
	for _, x := range s {
		if x == a {
			return true
		}
	}
	return false
}

// ClockEvent is a clock-in or clock-out with the location it was made from
type ClockEvent struct {
	Time       time.Time  `json:"time"`
	Coordinate Coordinate `json:"coordinate"`
}

// AttendanceRecord is one user's attendance for one calendar day
type AttendanceRecord struct {
	UserID     string           `json:"userId" db:"user_id"`
	Date       string           `json:"date" db:"date"` // Format: 2006-01-02
	ClockIn    *ClockEvent      `json:"clockIn,omitempty" db:"clock_in"`
	ClockOut   *ClockEvent      `json:"clockOut,omitempty" db:"clock_out"`
	TotalHours float64          `json:"totalHours" db:"total_hours"`
	Status     AttendanceStatus `json:"status" db:"status"`
	Anomalies  AnomalySet       `json:"anomalies" db:"anomalies"`
	SiteID     string           `json:"siteId,omitempty" db:"site_id"`
}

// ClockRequest is the body of a clock-in or clock-out call
type ClockRequest struct {
	Coordinate     Coordinate `json:"coordinate"`
	AccuracyMeters float64    `json:"accuracyMeters" validate:"finite,min=0"`
	SiteID         string     `json:"siteId"`
}
