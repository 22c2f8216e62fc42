package util

import (
	"context"
	"time"
)

// contextKey is a private type for context keys defined in this package.
type contextKey string

const (
	routeInfoKey contextKey = "route_info"
	startTimeKey contextKey = "start_time"
)

// RouteInfo records which rule matched a request. Middleware installs
// an empty RouteInfo before dispatch and the router fills it in when a
// rule matches, so observers that run after the response is produced
// (access logging, metrics) can see the winning pattern. A RouteInfo
// is request-scoped and never shared across requests.
type RouteInfo struct {
	// Pattern is the winning rule's pattern, or empty when no rule
	// matched.
	Pattern string

	// Residual is the path remaining after prefix removal.
	Residual string
}

// ContextWithRouteInfo installs a RouteInfo holder in the context.
func ContextWithRouteInfo(ctx context.Context, info *RouteInfo) context.Context {
	return context.WithValue(ctx, routeInfoKey, info)
}

// RouteInfoFromContext extracts the RouteInfo holder from the context.
// Returns nil if none was installed.
func RouteInfoFromContext(ctx context.Context) *RouteInfo {
	if info, ok := ctx.Value(routeInfoKey).(*RouteInfo); ok {
		return info
	}
	return nil
}

// RouteFromContext returns the matched route pattern, or an empty
// string when no rule matched or no holder was installed.
func RouteFromContext(ctx context.Context) string {
	if info := RouteInfoFromContext(ctx); info != nil {
		return info.Pattern
	}
	return ""
}

// ContextWithStartTime adds the request start time to the context.
func ContextWithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey, t)
}

// StartTimeFromContext extracts the request start time from the
// context. The zero time is returned if none was recorded.
func StartTimeFromContext(ctx context.Context) time.Time {
	if t, ok := ctx.Value(startTimeKey).(time.Time); ok {
		return t
	}
	return time.Time{}
}
