package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgegate/edgegate/internal/config"
)

func TestExactMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		path     string
		expected bool
	}{
		{
			name:     "exact match",
			pattern:  "/health",
			path:     "/health",
			expected: true,
		},
		{
			name:     "no match different path",
			pattern:  "/health",
			path:     "/healthz",
			expected: false,
		},
		{
			name:     "no match with trailing slash",
			pattern:  "/health",
			path:     "/health/",
			expected: false,
		},
		{
			name:     "no match on prefix",
			pattern:  "/health",
			path:     "/health/live",
			expected: false,
		},
		{
			name:     "root path",
			pattern:  "/",
			path:     "/",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			matcher := NewExactMatcher(tt.pattern)
			matched, residual := matcher.Match(tt.path)
			assert.Equal(t, tt.expected, matched)
			if matched {
				assert.Equal(t, "/", residual)
			} else {
				assert.Empty(t, residual)
			}
			assert.Equal(t, config.MatchExact, matcher.Kind())
			assert.Equal(t, tt.pattern, matcher.Pattern())
		})
	}
}

func TestPrefixMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		pattern      string
		path         string
		expected     bool
		wantResidual string
	}{
		{
			name:         "prefix with file below",
			pattern:      "/images",
			path:         "/images/foo.png",
			expected:     true,
			wantResidual: "/foo.png",
		},
		{
			name:         "prefix equals path",
			pattern:      "/images",
			path:         "/images",
			expected:     true,
			wantResidual: "/",
		},
		{
			name:         "nested residual",
			pattern:      "/images",
			path:         "/images/icons/logo.png",
			expected:     true,
			wantResidual: "/icons/logo.png",
		},
		{
			name:     "no match",
			pattern:  "/images",
			path:     "/img/foo.png",
			expected: false,
		},
		{
			name:         "raw prefix matches mid-segment",
			pattern:      "/api",
			path:         "/apiv2/users",
			expected:     true,
			wantResidual: "/v2/users",
		},
		{
			name:         "pattern with trailing slash",
			pattern:      "/static/",
			path:         "/static/app.js",
			expected:     true,
			wantResidual: "/app.js",
		},
		{
			name:         "root prefix matches everything",
			pattern:      "/",
			path:         "/anything",
			expected:     true,
			wantResidual: "/anything",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			matcher := NewPrefixMatcher(tt.pattern)
			matched, residual := matcher.Match(tt.path)
			assert.Equal(t, tt.expected, matched)
			if tt.expected {
				assert.Equal(t, tt.wantResidual, residual)
			}
			assert.Equal(t, config.MatchPrefix, matcher.Kind())
		})
	}
}

func TestCatchallMatcher(t *testing.T) {
	t.Parallel()

	matcher := NewCatchallMatcher()

	for _, path := range []string{"/", "/anything", "/a/b/c", "/health"} {
		matched, residual := matcher.Match(path)
		assert.True(t, matched)
		assert.Equal(t, path, residual, "catchall must pass the path through unchanged")
	}

	assert.Equal(t, config.MatchCatchall, matcher.Kind())
	assert.Equal(t, "*", matcher.Pattern())
}

func TestNewMatcher(t *testing.T) {
	t.Parallel()

	t.Run("exact", func(t *testing.T) {
		t.Parallel()
		m, err := NewMatcher(config.MatchExact, "/health")
		require.NoError(t, err)
		assert.IsType(t, &ExactMatcher{}, m)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()
		m, err := NewMatcher(config.MatchPrefix, "/api")
		require.NoError(t, err)
		assert.IsType(t, &PrefixMatcher{}, m)
	})

	t.Run("catchall", func(t *testing.T) {
		t.Parallel()
		m, err := NewMatcher(config.MatchCatchall, "")
		require.NoError(t, err)
		assert.IsType(t, &CatchallMatcher{}, m)
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()
		_, err := NewMatcher("regex", "/api")
		require.Error(t, err)
		var unknownErr *UnknownMatchKindError
		assert.ErrorAs(t, err, &unknownErr)
	})
}
