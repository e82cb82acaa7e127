package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveHTTP("SubmitDocumentRequest", "POST", 201, 20*time.Millisecond)
	m.ObserveHTTP("SubmitDocumentRequest", "POST", 422, 5*time.Millisecond)
	m.IncrementSubmission("document_request", "created")
	m.IncrementUploadFailure("application")
	m.IncrementEligibility(true)
	m.IncrementEligibility(false)
	m.IncrementFeeExemption("SENIOR")
	m.IncrementFeeExemption("")
	m.IncrementCacheLookup("programs", "hit")
	m.IncrementJobRun("expire_special_statuses", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("SubmitDocumentRequest", "POST", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("SubmitDocumentRequest", "POST", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("document_request", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadFailures.WithLabelValues("application")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EligibilityChecks.WithLabelValues("ineligible")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FeeExemptions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("expire_special_statuses", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("x", "GET", 200, time.Millisecond)
		m.IncrementSubmission("application", "failed")
		m.IncrementUploadFailure("application")
		m.IncrementEligibility(true)
		m.IncrementFeeExemption("PWD")
		m.IncrementCacheLookup("programs", "miss")
		m.IncrementJobRun("remind_pending_uploads", nil)
	})
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "3xx", statusClass(304))
	assert.Equal(t, "4xx", statusClass(409))
	assert.Equal(t, "5xx", statusClass(502))
}
