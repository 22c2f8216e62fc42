package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgegate/edgegate/internal/config"
)

func TestRateLimiter_GlobalBurst(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(&config.RateLimitConfig{RPS: 1, Burst: 2})
	defer rl.Stop()

	assert.True(t, rl.Allow("192.0.2.1"))
	assert.True(t, rl.Allow("192.0.2.2"))
	// Burst exhausted; the global limiter does not care about the
	// client address.
	assert.False(t, rl.Allow("192.0.2.3"))
}

func TestRateLimiter_PerClientIsolation(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(&config.RateLimitConfig{RPS: 1, Burst: 1, PerClient: true})
	defer rl.Stop()

	assert.True(t, rl.Allow("192.0.2.1"))
	assert.False(t, rl.Allow("192.0.2.1"))

	// A different client has its own bucket.
	assert.True(t, rl.Allow("192.0.2.2"))
}

func TestRateLimiter_Middleware429(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(&config.RateLimitConfig{RPS: 1, Burst: 1})
	defer rl.Stop()

	var served int
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req.RemoteAddr = "192.0.2.1:5000"

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "rate limit exceeded", second.Body.String())
	assert.Equal(t, 1, served)
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{name: "host and port", remoteAddr: "192.0.2.1:4711", want: "192.0.2.1"},
		{name: "ipv6", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "no port", remoteAddr: "192.0.2.1", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/x", nil)
			r.RemoteAddr = tt.remoteAddr
			assert.Equal(t, tt.want, clientIP(r))
		})
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(&config.RateLimitConfig{RPS: 1, Burst: 1, PerClient: true})
	rl.Stop()
	rl.Stop()
}
