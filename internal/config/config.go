// Package config provides configuration loading, validation, and hot
// reload for the edge server. Configuration is read from a YAML file;
// the route list is ordered and order is authoritative for matching.
package config

import "time"

// Default server timeouts applied when the configuration omits them.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
)

// Default proxy timeouts applied when a reverseProxy route omits them.
const (
	DefaultConnectTimeout  = 5 * time.Second
	DefaultResponseTimeout = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// MatchKind selects how a route pattern is compared against a request
// path.
type MatchKind string

// Supported match kinds.
const (
	MatchExact    MatchKind = "exact"
	MatchPrefix   MatchKind = "prefix"
	MatchCatchall MatchKind = "catchall"
)

// HandlerKind selects the handler variant a route dispatches to. The
// set is closed: handler instances are resolved from these tags once
// at table build time, never on the request path.
type HandlerKind string

// Supported handler kinds.
const (
	HandlerStaticFile    HandlerKind = "staticFile"
	HandlerReverseProxy  HandlerKind = "reverseProxy"
	HandlerFixedResponse HandlerKind = "fixedResponse"
)

// Config is the top-level configuration for the edge server.
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Routes []Route      `yaml:"routes" json:"routes"`
}

// ServerConfig holds listener and lifecycle settings.
type ServerConfig struct {
	// Listen is the main listener address in host:port form.
	Listen string `yaml:"listen" json:"listen"`

	// AdminListen is the optional admin listener address serving
	// health and metrics endpoints. Empty disables the admin listener.
	AdminListen string `yaml:"adminListen,omitempty" json:"adminListen,omitempty"`

	ReadTimeout  Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`
	IdleTimeout  Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`

	// ShutdownTimeout bounds the graceful drain window: in-flight
	// requests get this long to complete before connections are
	// force-closed.
	ShutdownTimeout Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`

	// RateLimit optionally throttles inbound requests ahead of the
	// router.
	RateLimit *RateLimitConfig `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
}

// RateLimitConfig configures inbound request throttling.
type RateLimitConfig struct {
	RPS       int  `yaml:"rps" json:"rps"`
	Burst     int  `yaml:"burst" json:"burst"`
	PerClient bool `yaml:"perClient,omitempty" json:"perClient,omitempty"`
}

// Route is one ordered routing rule. Rules are evaluated strictly in
// declaration order and the first match wins, even when a later rule
// is more specific.
type Route struct {
	Match   MatchKind   `yaml:"match" json:"match"`
	Pattern string      `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Handler HandlerKind `yaml:"handler" json:"handler"`

	StaticFile    *StaticFileConfig    `yaml:"staticFile,omitempty" json:"staticFile,omitempty"`
	ReverseProxy  *ReverseProxyConfig  `yaml:"reverseProxy,omitempty" json:"reverseProxy,omitempty"`
	FixedResponse *FixedResponseConfig `yaml:"fixedResponse,omitempty" json:"fixedResponse,omitempty"`
}

// StaticFileConfig configures a static file handler.
type StaticFileConfig struct {
	// Root is the directory files are served from. Resolutions that
	// escape Root are rejected.
	Root string `yaml:"root" json:"root"`

	// Index is the file served when the resolved path is a directory.
	// Empty means directories yield 404; listings are never produced.
	Index string `yaml:"index,omitempty" json:"index,omitempty"`
}

// ReverseProxyConfig configures a reverse proxy handler.
type ReverseProxyConfig struct {
	// Upstream is the backend address in host:port form.
	Upstream string `yaml:"upstream" json:"upstream"`

	ConnectTimeout  Duration `yaml:"connectTimeout,omitempty" json:"connectTimeout,omitempty"`
	ResponseTimeout Duration `yaml:"responseTimeout,omitempty" json:"responseTimeout,omitempty"`
	IdleConnTimeout Duration `yaml:"idleConnTimeout,omitempty" json:"idleConnTimeout,omitempty"`

	MaxIdleConns        int `yaml:"maxIdleConns,omitempty" json:"maxIdleConns,omitempty"`
	MaxIdleConnsPerHost int `yaml:"maxIdleConnsPerHost,omitempty" json:"maxIdleConnsPerHost,omitempty"`

	// CircuitBreaker guards the upstream with a breaker: repeated
	// failures open the circuit and requests short-circuit to 502
	// until the upstream recovers.
	CircuitBreaker bool `yaml:"circuitBreaker,omitempty" json:"circuitBreaker,omitempty"`
}

// FixedResponseConfig configures a fixed response handler.
type FixedResponseConfig struct {
	Status  int               `yaml:"status" json:"status"`
	Body    string            `yaml:"body,omitempty" json:"body,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// ApplyDefaults fills in zero-valued settings with defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(DefaultIdleTimeout)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}

	for i := range c.Routes {
		if rp := c.Routes[i].ReverseProxy; rp != nil {
			if rp.ConnectTimeout == 0 {
				rp.ConnectTimeout = Duration(DefaultConnectTimeout)
			}
			if rp.ResponseTimeout == 0 {
				rp.ResponseTimeout = Duration(DefaultResponseTimeout)
			}
			if rp.IdleConnTimeout == 0 {
				rp.IdleConnTimeout = Duration(DefaultIdleConnTimeout)
			}
		}
	}
}
