package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthzHandler(t *testing.T) {
	t.Parallel()

	c := NewChecker("1.2.3")

	rec := httptest.NewRecorder()
	c.HealthzHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReadyzHandler_NoChecks(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")

	rec := httptest.NewRecorder()
	c.ReadyzHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
}

func TestReadyzHandler_FailingCheck(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")
	c.RegisterCheck("ok_dep", func() Check {
		return Check{Status: StatusHealthy}
	})
	c.RegisterCheck("bad_dep", func() Check {
		return Check{Status: StatusUnhealthy, Message: "dependency down"}
	})

	rec := httptest.NewRecorder()
	c.ReadyzHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	require.Len(t, resp.Checks, 2)
	assert.Equal(t, StatusHealthy, resp.Checks["ok_dep"].Status)
	assert.Equal(t, "dependency down", resp.Checks["bad_dep"].Message)
}

func TestReadyzHandler_RecoversWhenCheckPasses(t *testing.T) {
	t.Parallel()

	healthy := false
	c := NewChecker("test")
	c.RegisterCheck("flappy", func() Check {
		if healthy {
			return Check{Status: StatusHealthy}
		}
		return Check{Status: StatusUnhealthy}
	})

	rec := httptest.NewRecorder()
	c.ReadyzHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	healthy = true
	rec = httptest.NewRecorder()
	c.ReadyzHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
