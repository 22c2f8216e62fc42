package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	t.Parallel()

	err := NewConfigError("routes[0].pattern", "pattern must start with /")
	assert.Equal(t, "config error at routes[0].pattern: pattern must start with /", err.Error())
	assert.ErrorIs(t, err, ErrConfigInvalid)

	cause := errors.New("yaml: line 3")
	wrapped := NewConfigErrorWithCause("", "parse failed", cause)
	assert.Equal(t, "config error: parse failed", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestRouteNotFoundError(t *testing.T) {
	t.Parallel()

	err := NewRouteNotFoundError("GET", "/missing")
	assert.Equal(t, "no route for GET /missing", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	var target *RouteNotFoundError
	require.ErrorAs(t, fmt.Errorf("dispatch: %w", err), &target)
	assert.Equal(t, "/missing", target.Path)
}

func TestUpstreamError(t *testing.T) {
	t.Parallel()

	t.Run("connect failure", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("connection refused")
		err := NewUpstreamError("localhost:8888", UpstreamConnectFailure, cause)

		assert.Contains(t, err.Error(), "upstream localhost:8888 unavailable")
		assert.ErrorIs(t, err, ErrUpstreamUnavail)
		assert.NotErrorIs(t, err, ErrTimeout)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		err := NewUpstreamError("localhost:8888", UpstreamTimeout, errors.New("deadline exceeded"))

		assert.Contains(t, err.Error(), "upstream localhost:8888 timed out")
		assert.ErrorIs(t, err, ErrTimeout)
		assert.NotErrorIs(t, err, ErrUpstreamUnavail)
	})
}
