package attendance

import (
	"math"
	"time"

	"github.com/jengzang/presence-backend-go/internal/analysis/geofence"
	"github.com/jengzang/presence-backend-go/internal/models"
)

// Deriver applies clock events to attendance records under a Policy
type Deriver struct {
	policy Policy
}

// NewDeriver creates a deriver. A nil policy location means UTC.
func NewDeriver(policy Policy) *Deriver {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &Deriver{policy: policy}
}

// DateOf returns the calendar day of t in the policy location
func (d *Deriver) DateOf(t time.Time) string {
	return t.In(d.policy.Location).Format(DateLayout)
}

// RecordClockIn adds a clock-in to prev, creating the day's record when prev
// is nil. site is optional and only used for advisory anomalies.
func (d *Deriver) RecordClockIn(prev *models.AttendanceRecord, userID string, event models.ClockEvent, site *models.GeofenceRegion, now time.Time) (models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if prev != nil {
		if prev.ClockIn != nil {
			return models.AttendanceRecord{}, &AlreadyClockedInError{UserID: prev.UserID, Date: prev.Date, At: prev.ClockIn.Time}
		}
		record = clone(*prev)
	} else {
		record = models.AttendanceRecord{UserID: userID, Date: d.DateOf(event.Time)}
	}

	in := event
	record.ClockIn = &in
	return d.Derive(record, site, now), nil
}

// RecordClockOut adds a clock-out to prev, which must already hold a clock-in
func (d *Deriver) RecordClockOut(prev *models.AttendanceRecord, event models.ClockEvent, site *models.GeofenceRegion, now time.Time) (models.AttendanceRecord, error) {
	if prev == nil {
		return models.AttendanceRecord{}, &NotClockedInError{Date: d.DateOf(event.Time)}
	}
	if prev.ClockIn == nil {
		return models.AttendanceRecord{}, &NotClockedInError{UserID: prev.UserID, Date: prev.Date}
	}
	if prev.ClockOut != nil {
		return models.AttendanceRecord{}, &AlreadyClockedOutError{UserID: prev.UserID, Date: prev.Date, At: prev.ClockOut.Time}
	}

	record := clone(*prev)
	out := event
	record.ClockOut = &out
	return d.Derive(record, site, now), nil
}

// Derive recomputes status, total hours and anomalies from the stored clock
// events. The result depends only on its inputs, so deriving twice is a no-op.
// Outside-site anomalies are kept from record when site is nil.
func (d *Deriver) Derive(record models.AttendanceRecord, site *models.GeofenceRegion, now time.Time) models.AttendanceRecord {
	out := clone(record)
	if out.Date == "" && out.ClockIn != nil {
		out.Date = d.DateOf(out.ClockIn.Time)
	}

	anomalies := models.AnomalySet{}
	if site == nil {
		for _, a := range []models.Anomaly{models.AnomalyClockInOutsideSite, models.AnomalyClockOutOutsideSite} {
			if record.Anomalies.Has(a) {
				anomalies = anomalies.With(a)
			}
		}
	}

	out.TotalHours = 0
	switch {
	case out.ClockIn == nil:
		out.Status = models.StatusAbsent

	case out.ClockOut == nil:
		if out.Date < d.DateOf(now) {
			out.Status = models.StatusPartial
			anomalies = anomalies.With(models.AnomalyMissingClockOut)
		} else {
			out.Status = models.StatusPending
		}

	default:
		out.Status = models.StatusPresent
		out.TotalHours = workedHours(out.ClockIn.Time, out.ClockOut.Time)
		if d.policy.isEarly(out.ClockOut.Time) {
			anomalies = anomalies.With(models.AnomalyEarlyClockOut)
		}
		if site != nil && !geofence.Contains(out.ClockOut.Coordinate, *site) {
			anomalies = anomalies.With(models.AnomalyClockOutOutsideSite)
		}
	}

	if out.ClockIn != nil {
		if d.policy.isLate(out.ClockIn.Time) {
			anomalies = anomalies.With(models.AnomalyLateClockIn)
		}
		if site != nil && !geofence.Contains(out.ClockIn.Coordinate, *site) {
			anomalies = anomalies.With(models.AnomalyClockInOutsideSite)
		}
	}

	out.Anomalies = anomalies
	return out
}

// workedHours is the non-negative span between in and out, rounded to 2 decimals
func workedHours(in, out time.Time) float64 {
	hours := math.Max(0, out.Sub(in).Hours())
	return math.Round(hours*100) / 100
}

func clone(r models.AttendanceRecord) models.AttendanceRecord {
	if r.ClockIn != nil {
		in := *r.ClockIn
		r.ClockIn = &in
	}
	if r.ClockOut != nil {
		out := *r.ClockOut
		r.ClockOut = &out
	}
	if r.Anomalies != nil {
		r.Anomalies = append(make(models.AnomalySet, 0, len(r.Anomalies)), r.Anomalies...)
	}
	return r
}
