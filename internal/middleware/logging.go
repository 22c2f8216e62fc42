// Package middleware provides HTTP middleware for the edge server.
package middleware

import (
	"net/http"
	"time"

	"github.com/edgegate/edgegate/internal/observability"
	"github.com/edgegate/edgegate/internal/util"
)

// responseWriter wraps http.ResponseWriter to capture status code and size.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size.
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Flush implements http.Flusher for streaming support.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Logging returns a middleware that records one structured access log
// entry per request. The entry is emitted only after the response is
// fully produced, so the status reflects the true outcome including
// errors converted downstream. A failing log sink never fails the
// request: zap writes are best-effort from the request's perspective.
func Logging(logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := util.ContextWithStartTime(r.Context(), start)
			if util.RouteInfoFromContext(ctx) == nil {
				ctx = util.ContextWithRouteInfo(ctx, &util.RouteInfo{})
			}
			r = r.WithContext(ctx)

			rw := &responseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)

			//nolint:contextcheck // request context is the correct source here
			requestID := observability.RequestIDFromContext(r.Context())
			route := util.RouteFromContext(r.Context())

			logger.Info("http request",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.String("query", r.URL.RawQuery),
				observability.Int("status", rw.status),
				observability.Int("bytes", rw.size),
				observability.Int64("latency_us", duration.Microseconds()),
				observability.String("route", route),
				observability.String("remote_addr", r.RemoteAddr),
				observability.String("user_agent", r.UserAgent()),
				observability.String("request_id", requestID),
			)
		})
	}
}
