package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/edgegate/edgegate/internal/observability"
)

// Listener wraps an http.Server bound to a single address. Binding
// happens in Start so a failure to bind surfaces immediately instead
// of inside the serve goroutine.
type Listener struct {
	name    string
	addr    string
	server  *http.Server
	handler http.Handler
	logger  observability.Logger
	running atomic.Bool

	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration
}

// ListenerOption is a functional option for configuring a listener.
type ListenerOption func(*Listener)

// WithListenerLogger sets the logger for the listener.
func WithListenerLogger(logger observability.Logger) ListenerOption {
	return func(l *Listener) {
		l.logger = logger
	}
}

// WithListenerTimeouts sets the server timeouts.
func WithListenerTimeouts(read, write, idle time.Duration) ListenerOption {
	return func(l *Listener) {
		l.readTimeout = read
		l.writeTimeout = write
		l.idleTimeout = idle
	}
}

// NewListener creates a new listener.
func NewListener(name, addr string, handler http.Handler, opts ...ListenerOption) *Listener {
	l := &Listener{
		name:         name,
		addr:         addr,
		handler:      handler,
		logger:       observability.NopLogger(),
		readTimeout:  30 * time.Second,
		writeTimeout: 30 * time.Second,
		idleTimeout:  120 * time.Second,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Name returns the listener name.
func (l *Listener) Name() string {
	return l.name
}

// Addr returns the configured listen address.
func (l *Listener) Addr() string {
	return l.addr
}

// Start binds the address and begins serving in a background
// goroutine. A bind failure is returned synchronously.
func (l *Listener) Start(ctx context.Context) error {
	if l.running.Load() {
		return fmt.Errorf("listener %s is already running", l.name)
	}

	l.server = &http.Server{
		Addr:              l.addr,
		Handler:           l.handler,
		ReadTimeout:       l.readTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      l.writeTimeout,
		IdleTimeout:       l.idleTimeout,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.addr, err)
	}

	l.running.Store(true)

	l.logger.Info("listener started",
		observability.String("name", l.name),
		observability.String("address", ln.Addr().String()),
	)

	go l.serve(ln)

	return nil
}

// serve runs the accept loop until shutdown.
func (l *Listener) serve(ln net.Listener) {
	err := l.server.Serve(ln)
	if err != nil && err != http.ErrServerClosed {
		l.logger.Error("listener error",
			observability.String("name", l.name),
			observability.Error(err),
		)
	}
	l.running.Store(false)
}

// Stop stops the listener gracefully: no new connections are
// accepted, in-flight requests drain until the context deadline, and
// whatever remains is force-closed.
func (l *Listener) Stop(ctx context.Context) error {
	if !l.running.Load() {
		return nil
	}

	l.logger.Info("stopping listener",
		observability.String("name", l.name),
	)

	if err := l.server.Shutdown(ctx); err != nil {
		if closeErr := l.server.Close(); closeErr != nil {
			return fmt.Errorf("shutdown failed: %w, close failed: %v", err, closeErr)
		}
		return fmt.Errorf("graceful shutdown failed, forced close: %w", err)
	}

	return nil
}
