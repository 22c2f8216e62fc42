package router

import (
	"io"
	"net/http"
	"runtime/debug"
	"sync/atomic"

	"github.com/edgegate/edgegate/internal/observability"
	"github.com/edgegate/edgegate/internal/util"
)

// notFoundBody is the body of the built-in terminal 404 response used
// when no rule matches and no catchall is configured.
const notFoundBody = "Not Found"

// Router selects a handler for each inbound request by walking the
// current route table in declaration order and dispatching to the
// first rule whose matcher succeeds. The router inspects only the
// path; method-specific behavior belongs to handlers.
//
// The table is held behind an atomic pointer: readers never lock, and
// a reload publishes a complete replacement table in a single store,
// so every in-flight request observes either the old table or the new
// one, never a mix.
type Router struct {
	table   atomic.Pointer[Table]
	logger  observability.Logger
	metrics *observability.Metrics
}

// RouterOption is a functional option for configuring the router.
type RouterOption func(*Router)

// WithLogger sets the logger for the router.
func WithLogger(logger observability.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics sink for the router.
func WithMetrics(m *observability.Metrics) RouterOption {
	return func(r *Router) {
		r.metrics = m
	}
}

// New creates a router serving the given table.
func New(table *Table, opts ...RouterOption) *Router {
	r := &Router{
		logger: observability.NopLogger(),
	}
	r.table.Store(table)

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Table returns the currently published table.
func (r *Router) Table() *Table {
	return r.table.Load()
}

// Swap atomically publishes a new table and returns the previous one.
// The caller owns the returned table and should Close it once no
// in-flight request can still be using it.
func (r *Router) Swap(table *Table) *Table {
	return r.table.Swap(table)
}

// ServeHTTP implements http.Handler by dispatching to the first
// matching rule. A panicking handler is recovered here and converted
// to a 500 so one faulty request never takes down the serving loop.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler panic recovered",
				observability.String("method", req.Method),
				observability.String("path", req.URL.Path),
				observability.Any("panic", rec),
				observability.String("stack", string(debug.Stack())),
			)
			if r.metrics != nil {
				r.metrics.RecordPanicRecovered()
			}
			writePanicResponse(w)
		}
	}()

	table := r.table.Load()
	path := req.URL.Path

	info := util.RouteInfoFromContext(req.Context())
	if info == nil {
		info = &util.RouteInfo{}
		req = req.WithContext(util.ContextWithRouteInfo(req.Context(), info))
	}

	for i := range table.rules {
		rule := &table.rules[i]
		matched, residual := rule.Matcher.Match(path)
		if !matched {
			continue
		}

		info.Pattern = rule.Matcher.Pattern()
		info.Residual = residual
		rule.Handler.Handle(w, req, residual)
		return
	}

	r.handleNotFound(w, req)
}

// handleNotFound writes the built-in terminal 404.
func (r *Router) handleNotFound(w http.ResponseWriter, req *http.Request) {
	err := util.NewRouteNotFoundError(req.Method, req.URL.Path)
	r.logger.Debug("no matching route",
		observability.String("method", req.Method),
		observability.String("path", req.URL.Path),
		observability.Error(err),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, notFoundBody)
}

// writePanicResponse writes the 500 produced for a recovered panic.
// If the handler already wrote headers the write degrades gracefully:
// net/http ignores the duplicate WriteHeader and the connection is
// closed after the truncated response.
func writePanicResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, "internal server error")
}
