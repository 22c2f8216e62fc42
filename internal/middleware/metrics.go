package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/edgegate/edgegate/internal/observability"
	"github.com/edgegate/edgegate/internal/util"
)

// Metrics returns a middleware that records request counters and
// latency histograms. The route label is the matched pattern filled in
// by the router; unmatched requests get a bounded fallback label.
func Metrics(m *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := r.Context()
			if util.RouteInfoFromContext(ctx) == nil {
				ctx = util.ContextWithRouteInfo(ctx, &util.RouteInfo{})
				r = r.WithContext(ctx)
			}

			rw := &responseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			m.IncActiveRequests()
			next.ServeHTTP(rw, r)
			m.DecActiveRequests()

			m.RecordRequest(
				r.Method,
				util.RouteFromContext(ctx),
				strconv.Itoa(rw.status),
				time.Since(start).Seconds(),
				rw.size,
			)
		})
	}
}
