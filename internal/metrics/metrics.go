package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Location validation
	SampleValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_sample_validations_total",
			Help: "Location samples validated, by outcome and confidence tier",
		},
		[]string{"outcome", "tier"}, // outcome: accepted, rejected, suspicious
	)

	SpoofingScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "presence_spoofing_score",
			Help:    "Spoofing score of each evaluated history",
			Buckets: []float64{0, 0.1, 0.3, 0.5, 0.7, 0.9, 1},
		},
	)

	SampleConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "presence_sample_confidence",
			Help:    "Confidence score of validated samples",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// Geofencing
	GeofenceTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_geofence_transitions_total",
			Help: "Geofence enter/exit events emitted",
		},
		[]string{"kind"},
	)

	// Trails
	TrailsBuilt = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_trails_built_total",
			Help: "Trails reconstructed for trail queries",
		},
	)

	// Attendance
	AttendanceEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_attendance_events_total",
			Help: "Clock-in/clock-out attempts by outcome",
		},
		[]string{"event", "outcome"}, // outcome: recorded, conflict, rejected, error
	)

	AttendanceAnomalies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_attendance_anomalies_total",
			Help: "Anomalies flagged on recorded clock events",
		},
		[]string{"anomaly"},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "presence_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// RecordAPIRequest records an API request's status and latency
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordValidation records a validated sample
func RecordValidation(outcome, tier string, confidence, spoofScore float64) {
	SampleValidations.WithLabelValues(outcome, tier).Inc()
	SampleConfidence.Observe(confidence)
	SpoofingScore.Observe(spoofScore)
}

// RecordTransition records an emitted geofence event
func RecordTransition(kind string) {
	GeofenceTransitions.WithLabelValues(kind).Inc()
}

// RecordAttendance records a clock event outcome and the anomalies it carries
func RecordAttendance(event, outcome string, anomalies []string) {
	AttendanceEvents.WithLabelValues(event, outcome).Inc()
	for _, a := range anomalies {
		AttendanceAnomalies.WithLabelValues(a).Inc()
	}
}
