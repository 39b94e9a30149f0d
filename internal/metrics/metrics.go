package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CheckInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_checkins_total",
			Help: "Check-in attempts by facility and outcome",
		},
		[]string{"facility", "result"},
	)

	VisitConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_visit_conflicts_total",
			Help: "Visit decrements that lost a race and were retried",
		},
	)

	PausesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_pauses_total",
			Help: "Total number of pause and unpause transitions",
		},
		[]string{"action"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_payments_total",
			Help: "Total number of recorded payments",
		},
		[]string{"method"},
	)

	RevenueShareTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_revenue_share_total",
			Help: "Revenue allocated to each party",
		},
		[]string{"party"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymdesk_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordCheckIn counts one attempt. result is "allowed" or the denied
// membership status.
func RecordCheckIn(facility, result string) {
	CheckInsTotal.WithLabelValues(facility, result).Inc()
}

func RecordVisitConflict() {
	VisitConflictsTotal.Inc()
}

func RecordPause(action string) {
	PausesTotal.WithLabelValues(action).Inc()
}

func RecordPayment(method string, gymShare, crossfitShare float64) {
	PaymentsTotal.WithLabelValues(method).Inc()
	if gymShare > 0 {
		RevenueShareTotal.WithLabelValues("gym").Add(gymShare)
	}
	if crossfitShare > 0 {
		RevenueShareTotal.WithLabelValues("crossfit").Add(crossfitShare)
	}
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
