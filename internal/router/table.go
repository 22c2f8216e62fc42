package router

import (
	"fmt"

	"github.com/edgegate/edgegate/internal/config"
	"github.com/edgegate/edgegate/internal/handler"
	"github.com/edgegate/edgegate/internal/observability"
)

// Rule is one compiled routing decision unit: a matcher paired with
// the handler it dispatches to. Order equals declaration position.
type Rule struct {
	Matcher Matcher
	Handler handler.Handler
	Order   int
}

// Table is an ordered, immutable-after-build sequence of rules. It is
// built once from configuration and shared read-only by all request
// goroutines; a reload builds a fresh table rather than mutating one
// in place.
type Table struct {
	rules    []Rule
	warnings []string
}

// TableOption is a functional option for table construction.
type TableOption func(*tableBuilder)

type tableBuilder struct {
	logger  observability.Logger
	metrics *observability.Metrics
}

// WithTableLogger sets the logger passed to constructed handlers.
func WithTableLogger(logger observability.Logger) TableOption {
	return func(b *tableBuilder) {
		b.logger = logger
	}
}

// WithTableMetrics sets the metrics sink passed to constructed
// handlers.
func WithTableMetrics(m *observability.Metrics) TableOption {
	return func(b *tableBuilder) {
		b.metrics = m
	}
}

// BuildTable compiles an ordered route list into a Table. Handler
// instances are resolved from their configuration tags here, once,
// so dispatch never performs a type lookup. Rules declared after a
// catchall are unreachable; they are compiled anyway and reported as
// warnings, matching shadowing semantics where earlier rules win.
func BuildTable(routes []config.Route, opts ...TableOption) (*Table, error) {
	b := &tableBuilder{logger: observability.NopLogger()}
	for _, opt := range opts {
		opt(b)
	}

	t := &Table{rules: make([]Rule, 0, len(routes))}

	catchallSeen := false
	for i := range routes {
		r := &routes[i]

		if catchallSeen {
			t.warnings = append(t.warnings, fmt.Sprintf(
				"rule %d (%s %s) is unreachable: a catchall precedes it",
				i, r.Match, r.Pattern))
		}

		m, err := NewMatcher(r.Match, r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		h, err := b.buildHandler(r)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		t.rules = append(t.rules, Rule{Matcher: m, Handler: h, Order: i})

		if r.Match == config.MatchCatchall {
			catchallSeen = true
		}
	}

	return t, nil
}

// buildHandler resolves a route's handler tag into a handler instance.
func (b *tableBuilder) buildHandler(r *config.Route) (handler.Handler, error) {
	switch r.Handler {
	case config.HandlerStaticFile:
		if r.StaticFile == nil {
			return nil, fmt.Errorf("staticFile params missing")
		}
		return handler.NewStaticFile(r.StaticFile,
			handler.WithStaticFileLogger(b.logger),
		), nil

	case config.HandlerReverseProxy:
		if r.ReverseProxy == nil {
			return nil, fmt.Errorf("reverseProxy params missing")
		}
		opts := []handler.ReverseProxyOption{
			handler.WithProxyLogger(b.logger),
		}
		if b.metrics != nil {
			opts = append(opts, handler.WithProxyMetrics(b.metrics))
		}
		return handler.NewReverseProxy(r.ReverseProxy, opts...), nil

	case config.HandlerFixedResponse:
		if r.FixedResponse == nil {
			return nil, fmt.Errorf("fixedResponse params missing")
		}
		return handler.NewFixedResponse(r.FixedResponse), nil

	default:
		return nil, fmt.Errorf("unknown handler kind: %s", r.Handler)
	}
}

// Rules returns the compiled rules in declaration order.
func (t *Table) Rules() []Rule {
	return t.rules
}

// Warnings returns construction-time findings, such as unreachable
// rules declared after a catchall.
func (t *Table) Warnings() []string {
	return t.warnings
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// Close releases resources held by handlers, such as pooled proxy
// connections. Called on the outgoing table after a reload swap.
func (t *Table) Close() {
	for i := range t.rules {
		if c, ok := t.rules[i].Handler.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
