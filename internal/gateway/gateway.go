// Package gateway wires the edge server together: the middleware
// chain, the router, the main and admin listeners, and the reload
// path that swaps route tables atomically.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/edgegate/edgegate/internal/config"
	"github.com/edgegate/edgegate/internal/health"
	"github.com/edgegate/edgegate/internal/middleware"
	"github.com/edgegate/edgegate/internal/observability"
	"github.com/edgegate/edgegate/internal/router"
)

// Gateway is the assembled edge server.
type Gateway struct {
	cfg           *config.Config
	router        *router.Router
	listener      *Listener
	adminListener *Listener
	rateLimiter   *middleware.RateLimiter
	checker       *health.Checker
	metrics       *observability.Metrics
	logger        observability.Logger
}

// Option is a functional option for configuring the gateway.
type Option func(*Gateway)

// WithGatewayLogger sets the logger for the gateway.
func WithGatewayLogger(logger observability.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithMetrics sets the metrics instance for the gateway.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithHealthChecker sets the health checker for the gateway.
func WithHealthChecker(c *health.Checker) Option {
	return func(g *Gateway) {
		g.checker = c
	}
}

// New builds a gateway from validated configuration. The initial
// route table is compiled here; construction fails if any rule cannot
// be compiled.
func New(cfg *config.Config, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		cfg:    cfg,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(g)
	}

	table, err := g.buildTable(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build route table: %w", err)
	}
	g.logTableWarnings(table)

	routerOpts := []router.RouterOption{router.WithLogger(g.logger)}
	if g.metrics != nil {
		routerOpts = append(routerOpts, router.WithMetrics(g.metrics))
	}
	g.router = router.New(table, routerOpts...)

	if cfg.Server.RateLimit != nil {
		g.rateLimiter = middleware.NewRateLimiter(cfg.Server.RateLimit,
			middleware.WithRateLimiterLogger(g.logger),
		)
	}

	g.listener = NewListener("main", cfg.Server.Listen, g.buildHandler(),
		WithListenerLogger(g.logger),
		WithListenerTimeouts(
			cfg.Server.ReadTimeout.Duration(),
			cfg.Server.WriteTimeout.Duration(),
			cfg.Server.IdleTimeout.Duration(),
		),
	)

	if cfg.Server.AdminListen != "" {
		g.adminListener = NewListener("admin", cfg.Server.AdminListen, g.buildAdminHandler(),
			WithListenerLogger(g.logger),
		)
	}

	g.registerChecks(cfg)

	return g, nil
}

// buildTable compiles the route table from configuration.
func (g *Gateway) buildTable(cfg *config.Config) (*router.Table, error) {
	opts := []router.TableOption{
		router.WithTableLogger(g.logger),
	}
	if g.metrics != nil {
		opts = append(opts, router.WithTableMetrics(g.metrics))
	}
	return router.BuildTable(cfg.Routes, opts...)
}

func (g *Gateway) logTableWarnings(table *router.Table) {
	for _, warning := range table.Warnings() {
		g.logger.Warn("route table warning",
			observability.String("warning", warning),
		)
	}
}

// buildHandler assembles the middleware chain around the router:
// request ID, access logging, metrics, then rate limiting, innermost
// last so logging observes the final status of throttled requests too.
func (g *Gateway) buildHandler() http.Handler {
	var h http.Handler = g.router

	if g.rateLimiter != nil {
		h = g.rateLimiter.Middleware()(h)
	}
	if g.metrics != nil {
		h = middleware.Metrics(g.metrics)(h)
	}
	h = middleware.Logging(g.logger)(h)
	h = middleware.RequestID()(h)

	return h
}

// buildAdminHandler assembles the admin mux: health, readiness, and
// metrics.
func (g *Gateway) buildAdminHandler() http.Handler {
	mux := http.NewServeMux()

	if g.checker != nil {
		mux.Handle("/healthz", g.checker.HealthzHandler())
		mux.Handle("/readyz", g.checker.ReadyzHandler())
	}
	if g.metrics != nil {
		mux.Handle("/metrics", g.metrics.Handler())
	}

	return mux
}

// registerChecks registers readiness checks for route dependencies.
func (g *Gateway) registerChecks(cfg *config.Config) {
	if g.checker == nil {
		return
	}

	for i := range cfg.Routes {
		sf := cfg.Routes[i].StaticFile
		if sf == nil {
			continue
		}
		root := sf.Root
		name := fmt.Sprintf("static_root_%d", i)
		g.checker.RegisterCheck(name, func() health.Check {
			info, err := os.Stat(root)
			if err != nil || !info.IsDir() {
				return health.Check{
					Status:  health.StatusUnhealthy,
					Message: fmt.Sprintf("root %s is not a readable directory", root),
				}
			}
			return health.Check{Status: health.StatusHealthy}
		})
	}
}

// Handler returns the main request handler, middleware included.
// Exposed for tests that drive the gateway without a listener.
func (g *Gateway) Handler() http.Handler {
	return g.buildHandler()
}

// Router returns the dispatch core.
func (g *Gateway) Router() *router.Router {
	return g.router
}

// Start binds and starts the main and admin listeners. A bind failure
// on either listener is returned immediately.
func (g *Gateway) Start(ctx context.Context) error {
	if err := g.listener.Start(ctx); err != nil {
		return err
	}

	if g.adminListener != nil {
		if err := g.adminListener.Start(ctx); err != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(),
				g.cfg.Server.ShutdownTimeout.Duration())
			defer cancel()
			_ = g.listener.Stop(stopCtx)
			return err
		}
	}

	g.logger.Info("gateway started",
		observability.String("listen", g.cfg.Server.Listen),
		observability.Int("routes", len(g.cfg.Routes)),
	)

	return nil
}

// Stop drains both listeners within the configured shutdown window.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.rateLimiter != nil {
		g.rateLimiter.Stop()
	}

	var firstErr error
	if err := g.listener.Stop(ctx); err != nil {
		firstErr = err
	}
	if g.adminListener != nil {
		if err := g.adminListener.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Release pooled upstream connections held by the live table.
	g.router.Table().Close()

	g.logger.Info("gateway stopped")
	return firstErr
}

// Reload builds a fresh route table from the new configuration and
// publishes it with a single atomic swap, so in-flight requests see
// either the old table or the new one in full. An invalid new
// configuration leaves the current table serving.
func (g *Gateway) Reload(cfg *config.Config) error {
	table, err := g.buildTable(cfg)
	if err != nil {
		if g.metrics != nil {
			g.metrics.RecordReload(false)
		}
		return fmt.Errorf("reload rejected: %w", err)
	}
	g.logTableWarnings(table)

	old := g.router.Swap(table)
	old.Close()

	g.cfg.Routes = cfg.Routes

	if g.metrics != nil {
		g.metrics.RecordReload(true)
	}

	g.logger.Info("route table reloaded",
		observability.Int("routes", table.Len()),
	)

	return nil
}
