package handler

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/sony/gobreaker"

	"github.com/edgegate/edgegate/internal/config"
	"github.com/edgegate/edgegate/internal/observability"
	"github.com/edgegate/edgegate/internal/util"
)

// breakerFailureThreshold is the number of consecutive failures after
// which the upstream circuit opens.
const breakerFailureThreshold = 5

// ReverseProxy forwards requests to a single upstream backend.
//
// The matcher's residual path is deliberately not applied: proxied
// requests keep their original path, so an upstream mounted behind
// /api sees /api/users, not /users. Prefix stripping is a static-file
// concern only.
//
// Responses stream through without buffering; the transport keeps a
// pool of idle connections, and connect, response-header, and idle
// timeouts bound every upstream interaction. A request that fails
// before any response byte reaches the client is retried once on a
// fresh connection, but only for idempotent methods with no request
// body, so a transient idle-connection teardown never duplicates a
// side effect.
type ReverseProxy struct {
	upstream  string
	transport *http.Transport
	proxy     *httputil.ReverseProxy
	breaker   *gobreaker.CircuitBreaker
	logger    observability.Logger
	metrics   *observability.Metrics
}

// ReverseProxyOption is a functional option for configuring the proxy.
type ReverseProxyOption func(*ReverseProxy)

// WithProxyLogger sets the logger for the proxy.
func WithProxyLogger(logger observability.Logger) ReverseProxyOption {
	return func(p *ReverseProxy) {
		p.logger = logger
	}
}

// WithProxyMetrics sets the metrics sink for the proxy.
func WithProxyMetrics(m *observability.Metrics) ReverseProxyOption {
	return func(p *ReverseProxy) {
		p.metrics = m
	}
}

// NewReverseProxy creates a reverse proxy handler from configuration.
func NewReverseProxy(cfg *config.ReverseProxyConfig, opts ...ReverseProxyOption) *ReverseProxy {
	p := &ReverseProxy{
		upstream: cfg.Upstream,
		logger:   observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.transport = &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout.Duration(),
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ResponseTimeout.Duration(),
		IdleConnTimeout:       cfg.IdleConnTimeout.Duration(),
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		ForceAttemptHTTP2:     false,
	}

	p.proxy = &httputil.ReverseProxy{
		Director:  p.director,
		Transport: p.transport,
		// Negative interval flushes after every write so large
		// upstream bodies stream through with backpressure intact.
		FlushInterval: -1,
		ErrorHandler:  p.captureError,
	}

	if cfg.CircuitBreaker {
		p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: cfg.Upstream,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				p.logger.Warn("upstream circuit state changed",
					observability.String("upstream", name),
					observability.String("from", from.String()),
					observability.String("to", to.String()),
				)
			},
		})
	}

	return p
}

// proxyErrorKey carries the captured transport error for one attempt.
type proxyErrorKey struct{}

type proxyErrorHolder struct {
	err error
}

// captureError records the transport error instead of writing a
// response, so the caller can decide between retrying and surfacing
// it. httputil.ReverseProxy guarantees the handler is only invoked
// when no response byte has been written yet.
func (p *ReverseProxy) captureError(w http.ResponseWriter, r *http.Request, err error) {
	if holder, ok := r.Context().Value(proxyErrorKey{}).(*proxyErrorHolder); ok {
		holder.err = err
	}
}

// director rewrites the outbound request to target the upstream. The
// inbound path and query are preserved unchanged.
func (p *ReverseProxy) director(req *http.Request) {
	req.URL.Scheme = "http"
	req.URL.Host = p.upstream

	// Director mode appends the client address to X-Forwarded-For in
	// httputil; host and proto are ours to set.
	req.Header.Set("X-Forwarded-Host", req.Host)
	if req.TLS != nil {
		req.Header.Set("X-Forwarded-Proto", "https")
	} else {
		req.Header.Set("X-Forwarded-Proto", "http")
	}

	req.Host = p.upstream
}

// Handle implements Handler.
func (p *ReverseProxy) Handle(w http.ResponseWriter, r *http.Request, _ string) {
	if p.breaker == nil {
		p.forward(w, r)
		return
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.forward(w, r)
	})
	if err == nil {
		return
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		p.logger.Warn("upstream circuit open, rejecting request",
			observability.String("upstream", p.upstream),
			observability.String("path", r.URL.Path),
		)
		writeProxyError(w, http.StatusBadGateway, "upstream unavailable")
	}
	// Other errors have already been written by forward.
}

// forward performs the proxy exchange, retrying once on a fresh
// connection when the first attempt failed before any response byte
// was produced. The returned error feeds the circuit breaker only.
func (p *ReverseProxy) forward(w http.ResponseWriter, r *http.Request) error {
	attempts := 1
	if p.retryable(r) {
		attempts = 2
	}

	var upErr *util.UpstreamError
	for attempt := 0; attempt < attempts; attempt++ {
		holder := &proxyErrorHolder{}
		ctx := context.WithValue(r.Context(), proxyErrorKey{}, holder)

		p.proxy.ServeHTTP(w, r.WithContext(ctx))

		if holder.err == nil {
			return nil
		}

		upErr = p.classify(holder.err)

		if attempt < attempts-1 {
			p.logger.Warn("retrying upstream request on fresh connection",
				observability.String("upstream", p.upstream),
				observability.String("path", r.URL.Path),
				observability.Error(holder.err),
			)
			if p.metrics != nil {
				p.metrics.RecordUpstreamRetry(p.upstream)
			}
			// Discard pooled connections so the retry does not land
			// on the same half-closed socket.
			p.transport.CloseIdleConnections()
		}
	}

	p.logger.Error("upstream request failed",
		observability.String("upstream", p.upstream),
		observability.String("method", r.Method),
		observability.String("path", r.URL.Path),
		observability.Error(upErr),
	)

	if upErr.Kind == util.UpstreamTimeout {
		writeProxyError(w, http.StatusGatewayTimeout, "upstream timeout")
	} else {
		writeProxyError(w, http.StatusBadGateway, "upstream unavailable")
	}
	return upErr
}

// retryable reports whether a failed first attempt may be retried.
// Only idempotent methods qualify, and only when there is no request
// body: once body bytes may have reached the upstream, a second send
// risks duplicate side effects.
func (p *ReverseProxy) retryable(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
	default:
		return false
	}
	return r.Body == nil || r.Body == http.NoBody
}

// classify maps a transport error to the upstream error taxonomy.
func (p *ReverseProxy) classify(err error) *util.UpstreamError {
	if errors.Is(err, context.DeadlineExceeded) {
		return util.NewUpstreamError(p.upstream, util.UpstreamTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return util.NewUpstreamError(p.upstream, util.UpstreamTimeout, err)
	}
	return util.NewUpstreamError(p.upstream, util.UpstreamConnectFailure, err)
}

// Kind implements Handler.
func (p *ReverseProxy) Kind() string {
	return string(config.HandlerReverseProxy)
}

// Close releases pooled upstream connections.
func (p *ReverseProxy) Close() {
	p.transport.CloseIdleConnections()
}

func writeProxyError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}
