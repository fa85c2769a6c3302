package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountersAndExposition(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/complaint/:complaintId", http.MethodPut, 200, 15*time.Millisecond)
	m.RecordError("/Login", http.MethodPost, "UNAUTHORIZED")
	m.ComplaintSubmitted("Water")
	m.ComplaintSubmitted("Water")
	m.DualWritePartial("set_status", "assignment")
	m.ComplaintEscalated()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.complaintsSubmitted.WithLabelValues("Water")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dualWritePartial.WithLabelValues("set_status", "assignment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.escalations))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="PUT",path="/complaint/:complaintId",status="200"} 1`)
	assert.Contains(t, string(body), `http_errors_total{code="UNAUTHORIZED",method="POST",path="/Login"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", http.MethodGet, 200, time.Millisecond)
		m.RecordError("/", http.MethodGet, "X")
		m.ComplaintSubmitted("d")
		m.StatusChanged("completed")
		m.ComplaintAssigned()
		m.ComplaintEscalated()
		m.MessagePosted()
		m.DualWritePartial("op", "side")
		m.LockOutcome("contended")
	})
}

func TestInstancesDoNotShareRegistry(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.MessagePosted()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.messagesPosted))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.messagesPosted))
}
