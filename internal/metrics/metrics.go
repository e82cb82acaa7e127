package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// HTTP requests by route, method and status class
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Submissions by kind ("document_request", "application") and outcome
	Submissions *prometheus.CounterVec

	// Post-create upload failures by kind
	UploadFailures *prometheus.CounterVec

	// Eligibility evaluations by overall result
	EligibilityChecks *prometheus.CounterVec

	// Fee exemptions granted by exemption type
	FeeExemptions *prometheus.CounterVec

	// Read-through cache lookups by key prefix and result ("hit", "miss", "error")
	CacheLookups *prometheus.CounterVec

	// Scheduled job runs by job and outcome
	JobRuns *prometheus.CounterVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "munlink_http_requests_total",
			Help: "HTTP requests by route, method and status class",
		}, []string{"route", "method", "status"}),

		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "munlink_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),

		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "munlink_submissions_total",
			Help: "Submissions by kind and outcome",
		}, []string{"kind", "outcome"}),

		UploadFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "munlink_upload_failures_total",
			Help: "File uploads that failed after the record was created",
		}, []string{"kind"}),

		EligibilityChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "munlink_eligibility_checks_total",
			Help: "Eligibility evaluations by overall result",
		}, []string{"result"}),

		FeeExemptions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "munlink_fee_exemptions_total",
			Help: "Fee exemptions applied to submitted document requests",
		}, []string{"exemption_type"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "munlink_cache_lookups_total",
			Help: "Read-through cache lookups by key prefix and result",
		}, []string{"prefix", "result"}),

		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "munlink_job_runs_total",
			Help: "Scheduled job runs by job and outcome",
		}, []string{"job", "outcome"}),
	}
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, statusClass(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(d.Seconds())
}

// IncrementSubmission records a submission outcome: "created", "rejected", "failed".
func (m *Metrics) IncrementSubmission(kind, outcome string) {
	if m != nil {
		m.Submissions.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) IncrementUploadFailure(kind string) {
	if m != nil {
		m.UploadFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncrementEligibility(eligible bool) {
	if m == nil {
		return
	}
	result := "ineligible"
	if eligible {
		result = "eligible"
	}
	m.EligibilityChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementFeeExemption(exemptionType string) {
	if m != nil && exemptionType != "" {
		m.FeeExemptions.WithLabelValues(exemptionType).Inc()
	}
}

func (m *Metrics) IncrementCacheLookup(prefix, result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(prefix, result).Inc()
	}
}

func (m *Metrics) IncrementJobRun(job string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.JobRuns.WithLabelValues(job, outcome).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
