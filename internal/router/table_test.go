package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgegate/edgegate/internal/config"
)

func fixedRoute(match config.MatchKind, pattern string, status int, body string) config.Route {
	return config.Route{
		Match:   match,
		Pattern: pattern,
		Handler: config.HandlerFixedResponse,
		FixedResponse: &config.FixedResponseConfig{
			Status: status,
			Body:   body,
		},
	}
}

func TestBuildTable(t *testing.T) {
	t.Parallel()

	routes := []config.Route{
		fixedRoute(config.MatchExact, "/health", 200, "OK"),
		fixedRoute(config.MatchPrefix, "/api", 200, "api"),
		fixedRoute(config.MatchCatchall, "", 404, "Not Found"),
	}

	table, err := BuildTable(routes)
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Empty(t, table.Warnings())

	rules := table.Rules()
	for i, rule := range rules {
		assert.Equal(t, i, rule.Order, "order must equal declaration position")
	}
	assert.Equal(t, config.MatchExact, rules[0].Matcher.Kind())
	assert.Equal(t, config.MatchPrefix, rules[1].Matcher.Kind())
	assert.Equal(t, config.MatchCatchall, rules[2].Matcher.Kind())
}

func TestBuildTable_UnreachableAfterCatchall(t *testing.T) {
	t.Parallel()

	routes := []config.Route{
		fixedRoute(config.MatchCatchall, "", 404, "Not Found"),
		fixedRoute(config.MatchExact, "/health", 200, "OK"),
	}

	table, err := BuildTable(routes)
	require.NoError(t, err, "unreachable rules are a warning, not an error")

	assert.Equal(t, 2, table.Len(), "unreachable rules are still compiled")
	require.Len(t, table.Warnings(), 1)
	assert.Contains(t, table.Warnings()[0], "unreachable")
}

func TestBuildTable_UnknownMatchKind(t *testing.T) {
	t.Parallel()

	routes := []config.Route{
		fixedRoute("regex", "/api/.*", 200, "ok"),
	}

	_, err := BuildTable(routes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown match kind")
}

func TestBuildTable_UnknownHandlerKind(t *testing.T) {
	t.Parallel()

	routes := []config.Route{
		{Match: config.MatchExact, Pattern: "/x", Handler: "lambda"},
	}

	_, err := BuildTable(routes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown handler kind")
}

func TestBuildTable_MissingHandlerParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		route config.Route
	}{
		{
			name:  "staticFile without params",
			route: config.Route{Match: config.MatchPrefix, Pattern: "/s", Handler: config.HandlerStaticFile},
		},
		{
			name:  "reverseProxy without params",
			route: config.Route{Match: config.MatchPrefix, Pattern: "/p", Handler: config.HandlerReverseProxy},
		},
		{
			name:  "fixedResponse without params",
			route: config.Route{Match: config.MatchExact, Pattern: "/f", Handler: config.HandlerFixedResponse},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := BuildTable([]config.Route{tt.route})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "params missing")
		})
	}
}

func TestBuildTable_HandlerKinds(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	routes := []config.Route{
		{
			Match:      config.MatchPrefix,
			Pattern:    "/static",
			Handler:    config.HandlerStaticFile,
			StaticFile: &config.StaticFileConfig{Root: root},
		},
		{
			Match:        config.MatchPrefix,
			Pattern:      "/api",
			Handler:      config.HandlerReverseProxy,
			ReverseProxy: &config.ReverseProxyConfig{Upstream: "localhost:8888"},
		},
		fixedRoute(config.MatchCatchall, "", 404, "Not Found"),
	}

	table, err := BuildTable(routes)
	require.NoError(t, err)

	rules := table.Rules()
	assert.Equal(t, "staticFile", rules[0].Handler.Kind())
	assert.Equal(t, "reverseProxy", rules[1].Handler.Kind())
	assert.Equal(t, "fixedResponse", rules[2].Handler.Kind())

	table.Close()
}
