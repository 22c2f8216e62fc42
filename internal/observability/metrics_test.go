package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	m := NewMetrics("obstest")
	m.RecordRequest("GET", "/api", "200", 0.01, 512)
	m.RecordRequest("GET", "/api", "200", 0.02, 256)
	m.RecordRequest("GET", "", "404", 0.001, 9)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api", "200")))

	// Empty route labels collapse to a bounded fallback.
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", unmatchedRoute, "404")))
}

func TestMetrics_ActiveRequests(t *testing.T) {
	t.Parallel()

	m := NewMetrics("obstest2")
	m.IncActiveRequests()
	m.IncActiveRequests()
	m.DecActiveRequests()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.activeRequests))
}

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := NewMetrics("obstest3")
	m.RecordUpstreamRetry("localhost:8888")
	m.RecordPanicRecovered()
	m.RecordReload(true)
	m.RecordReload(false)
	m.RecordReload(false)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.upstreamRetries.WithLabelValues("localhost:8888")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.panicsRecovered))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.reloadsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.reloadsTotal.WithLabelValues("failure")))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := NewMetrics("obstest4")
	m.SetBuildInfo("1.0.0", "abc1234")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `obstest4_build_info{commit="abc1234",version="1.0.0"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
