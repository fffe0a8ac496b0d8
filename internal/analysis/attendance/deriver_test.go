package attendance

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/spatial"
)

var (
	site = models.GeofenceRegion{
		ID:           "hq",
		Shape:        models.ShapeCircle,
		Center:       models.Coordinate{Latitude: 31.23, Longitude: 121.47},
		RadiusMeters: 200,
		Active:       true,
	}
	day   = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	later = day.Add(72 * time.Hour)
)

func clockAt(hour, minute int) models.ClockEvent {
	return models.ClockEvent{
		Time:       day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute),
		Coordinate: site.Center,
	}
}

func TestDeriver_FullDayPresent(t *testing.T) {
	d := NewDeriver(DefaultPolicy())

	rec, err := d.RecordClockIn(nil, "u1", clockAt(8, 0), &site, later)
	if err != nil {
		t.Fatalf("RecordClockIn() error = %v", err)
	}
	if rec.UserID != "u1" || rec.Date != "2025-03-03" {
		t.Errorf("record key = %s/%s", rec.UserID, rec.Date)
	}

	rec, err = d.RecordClockOut(&rec, clockAt(17, 30), &site, later)
	if err != nil {
		t.Fatalf("RecordClockOut() error = %v", err)
	}

	if rec.TotalHours != 9.5 {
		t.Errorf("TotalHours = %v, want 9.5", rec.TotalHours)
	}
	if rec.Status != models.StatusPresent {
		t.Errorf("Status = %s, want present", rec.Status)
	}
	if len(rec.Anomalies) != 0 {
		t.Errorf("expected no anomalies, got %v", rec.Anomalies)
	}
}

func TestDeriver_LateWithoutClockOut(t *testing.T) {
	d := NewDeriver(DefaultPolicy())

	rec, err := d.RecordClockIn(nil, "u1", clockAt(9, 30), nil, later)
	if err != nil {
		t.Fatalf("RecordClockIn() error = %v", err)
	}

	if rec.Status != models.StatusPartial {
		t.Errorf("Status = %s, want partial", rec.Status)
	}
	for _, want := range []models.Anomaly{models.AnomalyLateClockIn, models.AnomalyMissingClockOut} {
		if !rec.Anomalies.Has(want) {
			t.Errorf("expected %s in %v", want, rec.Anomalies)
		}
	}
}

func TestDeriver_PendingToday(t *testing.T) {
	d := NewDeriver(DefaultPolicy())

	rec, err := d.RecordClockIn(nil, "u1", clockAt(8, 45), nil, day.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("RecordClockIn() error = %v", err)
	}
	if rec.Status != models.StatusPending {
		t.Errorf("Status = %s, want pending", rec.Status)
	}
	if len(rec.Anomalies) != 0 {
		t.Errorf("expected no anomalies, got %v", rec.Anomalies)
	}

	// The same record becomes partial once the day is over
	if got := d.Derive(rec, nil, later); got.Status != models.StatusPartial {
		t.Errorf("Status after the day = %s, want partial", got.Status)
	}
}

func TestDeriver_Absent(t *testing.T) {
	d := NewDeriver(DefaultPolicy())

	rec := d.Derive(models.AttendanceRecord{UserID: "u1", Date: "2025-03-03"}, nil, later)
	if rec.Status != models.StatusAbsent || rec.TotalHours != 0 || len(rec.Anomalies) != 0 {
		t.Errorf("Derive() = %+v, want absent", rec)
	}
}

func TestDeriver_Anomalies(t *testing.T) {
	tests := []struct {
		name     string
		in, out  models.ClockEvent
		expected []models.Anomaly
	}{
		{"on time", clockAt(8, 59), clockAt(17, 0), nil},
		{"late at nine", clockAt(9, 0), clockAt(18, 0), []models.Anomaly{models.AnomalyLateClockIn}},
		{"noon is not late", clockAt(12, 0), clockAt(20, 0), nil},
		{"early out", clockAt(8, 0), clockAt(16, 59), []models.Anomaly{models.AnomalyEarlyClockOut}},
		{"overnight out is not early", clockAt(8, 0), clockAt(30, 0), nil},
		{"late and early", clockAt(10, 0), clockAt(15, 0), []models.Anomaly{models.AnomalyEarlyClockOut, models.AnomalyLateClockIn}},
	}

	d := NewDeriver(DefaultPolicy())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := d.RecordClockIn(nil, "u1", tt.in, nil, later)
			if err != nil {
				t.Fatalf("RecordClockIn() error = %v", err)
			}
			rec, err = d.RecordClockOut(&rec, tt.out, nil, later)
			if err != nil {
				t.Fatalf("RecordClockOut() error = %v", err)
			}

			got := []models.Anomaly(rec.Anomalies)
			if len(got) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Anomalies = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDeriver_PolicyLocation(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	policy := DefaultPolicy()
	policy.Location = shanghai
	d := NewDeriver(policy)

	// 01:30 UTC is 09:30 in Shanghai
	event := models.ClockEvent{Time: day.Add(90 * time.Minute), Coordinate: site.Center}
	rec, err := d.RecordClockIn(nil, "u1", event, nil, later)
	if err != nil {
		t.Fatalf("RecordClockIn() error = %v", err)
	}
	if !rec.Anomalies.Has(models.AnomalyLateClockIn) {
		t.Errorf("expected late clock-in in local time, got %v", rec.Anomalies)
	}

	// 20:00 UTC falls on the next local day
	if got := d.DateOf(day.Add(20 * time.Hour)); got != "2025-03-04" {
		t.Errorf("DateOf() = %s, want 2025-03-04", got)
	}
}

func TestDeriver_OutsideSite(t *testing.T) {
	d := NewDeriver(DefaultPolicy())

	in := clockAt(8, 0)
	in.Coordinate = spatial.DestinationPoint(site.Center, 90, 1000)

	rec, err := d.RecordClockIn(nil, "u1", in, &site, later)
	if err != nil {
		t.Fatalf("RecordClockIn() error = %v", err)
	}
	if !rec.Anomalies.Has(models.AnomalyClockInOutsideSite) {
		t.Errorf("expected %s, got %v", models.AnomalyClockInOutsideSite, rec.Anomalies)
	}

	// Re-deriving without the site keeps the flag
	if got := d.Derive(rec, nil, later); !got.Anomalies.Has(models.AnomalyClockInOutsideSite) {
		t.Errorf("outside-site flag lost without a site: %v", got.Anomalies)
	}

	rec, err = d.RecordClockOut(&rec, clockAt(17, 0), &site, later)
	if err != nil {
		t.Fatalf("RecordClockOut() error = %v", err)
	}
	if rec.Anomalies.Has(models.AnomalyClockOutOutsideSite) {
		t.Errorf("clock-out at the site flagged as outside: %v", rec.Anomalies)
	}
}

func TestDeriver_Conflicts(t *testing.T) {
	d := NewDeriver(DefaultPolicy())

	_, err := d.RecordClockOut(nil, clockAt(17, 0), nil, later)
	var notIn *NotClockedInError
	if !errors.As(err, &notIn) {
		t.Fatalf("expected *NotClockedInError, got %v", err)
	}
	if !IsConflict(err) {
		t.Error("NotClockedInError should be a conflict")
	}

	empty := models.AttendanceRecord{UserID: "u1", Date: "2025-03-03"}
	if _, err := d.RecordClockOut(&empty, clockAt(17, 0), nil, later); !errors.As(err, &notIn) {
		t.Errorf("expected *NotClockedInError for an empty record, got %v", err)
	}

	rec, err := d.RecordClockIn(nil, "u1", clockAt(8, 0), nil, later)
	if err != nil {
		t.Fatalf("RecordClockIn() error = %v", err)
	}

	_, err = d.RecordClockIn(&rec, "u1", clockAt(8, 5), nil, later)
	var alreadyIn *AlreadyClockedInError
	if !errors.As(err, &alreadyIn) {
		t.Fatalf("expected *AlreadyClockedInError, got %v", err)
	}
	if !alreadyIn.At.Equal(clockAt(8, 0).Time) {
		t.Errorf("At = %v, want the original clock-in", alreadyIn.At)
	}

	rec, err = d.RecordClockOut(&rec, clockAt(17, 0), nil, later)
	if err != nil {
		t.Fatalf("RecordClockOut() error = %v", err)
	}

	_, err = d.RecordClockOut(&rec, clockAt(18, 0), nil, later)
	var alreadyOut *AlreadyClockedOutError
	if !errors.As(err, &alreadyOut) {
		t.Fatalf("expected *AlreadyClockedOutError, got %v", err)
	}
	if !IsConflict(err) {
		t.Error("AlreadyClockedOutError should be a conflict")
	}

	if IsConflict(errors.New("boom")) {
		t.Error("plain errors are not conflicts")
	}
}

func TestDeriver_DeriveIsIdempotent(t *testing.T) {
	d := NewDeriver(DefaultPolicy())

	rec, _ := d.RecordClockIn(nil, "u1", clockAt(9, 30), &site, later)
	rec, _ = d.RecordClockOut(&rec, clockAt(16, 0), &site, later)

	first := d.Derive(rec, &site, later)
	second := d.Derive(first, &site, later)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Derive not idempotent:\n first=%+v\nsecond=%+v", first, second)
	}
	if len(second.Anomalies) != 2 {
		t.Errorf("expected two distinct anomalies, got %v", second.Anomalies)
	}
}

func TestDeriver_DoesNotMutateInput(t *testing.T) {
	d := NewDeriver(DefaultPolicy())

	prev, _ := d.RecordClockIn(nil, "u1", clockAt(8, 0), nil, later)
	snapshot := clone(prev)

	if _, err := d.RecordClockOut(&prev, clockAt(17, 0), nil, later); err != nil {
		t.Fatalf("RecordClockOut() error = %v", err)
	}
	if !reflect.DeepEqual(prev, snapshot) {
		t.Errorf("input record mutated: %+v", prev)
	}
}

func TestWorkedHours(t *testing.T) {
	tests := []struct {
		in, out time.Time
		want    float64
	}{
		{day, day.Add(9*time.Hour + 30*time.Minute), 9.5},
		{day, day.Add(20 * time.Minute), 0.33},
		{day, day.Add(-time.Hour), 0},
	}

	for _, tt := range tests {
		if got := workedHours(tt.in, tt.out); got != tt.want {
			t.Errorf("workedHours(%v) = %v, want %v", tt.out.Sub(tt.in), got, tt.want)
		}
	}
}
