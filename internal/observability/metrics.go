package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ApplicationsSubmitted counts application attempts by outcome.
	ApplicationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_applications_submitted_total",
		Help: "Application submissions by result",
	}, []string{"result"})

	// JobStatusChanges counts job status updates by target status.
	JobStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_job_status_changes_total",
		Help: "Job status changes by target status",
	}, []string{"to"})

	// ApplicationStatusChanges counts application status updates by target status.
	ApplicationStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_application_status_changes_total",
		Help: "Application status changes by target status",
	}, []string{"to"})

	// Notifications counts notification deliveries by channel and result.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_notifications_total",
		Help: "Notification deliveries by channel and result",
	}, []string{"channel", "result"})

	// Uploads counts stored files by bucket and result.
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_uploads_total",
		Help: "File uploads by bucket and result",
	}, []string{"bucket", "result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// Result turns an error into a low-cardinality metric label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
