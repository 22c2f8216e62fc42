package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates edge server configuration. Unreachable rules
// (anything declared after a catchall) are warnings, not errors: the
// table still loads, mirroring first-match-wins shadowing semantics.
type Validator struct {
	errors   ValidationErrors
	warnings []string
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// ValidateConfig validates a configuration and returns any errors.
// Warnings are discarded; use a Validator directly to collect them.
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)
	v.warnings = nil

	if cfg == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateServer(&cfg.Server)
	v.validateRoutes(cfg.Routes)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// Warnings returns non-fatal findings from the last Validate call.
func (v *Validator) Warnings() []string {
	return v.warnings
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) addWarning(format string, args ...interface{}) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *Validator) validateServer(s *ServerConfig) {
	if s.Listen == "" {
		v.addError("server.listen", "listen address is required")
	} else {
		v.validateHostPort("server.listen", s.Listen)
	}

	if s.AdminListen != "" {
		v.validateHostPort("server.adminListen", s.AdminListen)
	}

	if rl := s.RateLimit; rl != nil {
		if rl.RPS <= 0 {
			v.addError("server.rateLimit.rps", "rps must be positive")
		}
		if rl.Burst <= 0 {
			v.addError("server.rateLimit.burst", "burst must be positive")
		}
	}
}

func (v *Validator) validateRoutes(routes []Route) {
	if len(routes) == 0 {
		v.addError("routes", "at least one route is required")
		return
	}

	catchallIndex := -1
	for i := range routes {
		path := fmt.Sprintf("routes[%d]", i)
		v.validateRoute(path, &routes[i])

		if routes[i].Match == MatchCatchall && catchallIndex == -1 {
			catchallIndex = i
		}
	}

	if catchallIndex >= 0 && catchallIndex < len(routes)-1 {
		v.addWarning("routes[%d] and later are unreachable: catchall at routes[%d] matches every path",
			catchallIndex+1, catchallIndex)
	}
}

func (v *Validator) validateRoute(path string, r *Route) {
	switch r.Match {
	case MatchExact, MatchPrefix:
		if r.Pattern == "" {
			v.addError(path+".pattern", "pattern is required for exact and prefix matches")
		} else if !strings.HasPrefix(r.Pattern, "/") {
			v.addError(path+".pattern", "pattern must start with /")
		}
	case MatchCatchall:
		if r.Pattern != "" {
			v.addError(path+".pattern", "catchall must not declare a pattern")
		}
	case "":
		v.addError(path+".match", "match kind is required")
	default:
		v.addError(path+".match", fmt.Sprintf("unknown match kind: %s", r.Match))
	}

	v.validateHandler(path, r)
}

func (v *Validator) validateHandler(path string, r *Route) {
	switch r.Handler {
	case HandlerStaticFile:
		v.validateStaticFile(path, r.StaticFile)
	case HandlerReverseProxy:
		v.validateReverseProxy(path, r.ReverseProxy)
	case HandlerFixedResponse:
		v.validateFixedResponse(path, r.FixedResponse)
	case "":
		v.addError(path+".handler", "handler kind is required")
	default:
		v.addError(path+".handler", fmt.Sprintf("unknown handler kind: %s", r.Handler))
	}
}

func (v *Validator) validateStaticFile(path string, cfg *StaticFileConfig) {
	if cfg == nil {
		v.addError(path+".staticFile", "staticFile params are required")
		return
	}
	if cfg.Root == "" {
		v.addError(path+".staticFile.root", "root directory is required")
		return
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		v.addError(path+".staticFile.root", fmt.Sprintf("root is not readable: %v", err))
		return
	}
	if !info.IsDir() {
		v.addError(path+".staticFile.root", "root is not a directory")
	}
}

func (v *Validator) validateReverseProxy(path string, cfg *ReverseProxyConfig) {
	if cfg == nil {
		v.addError(path+".reverseProxy", "reverseProxy params are required")
		return
	}
	if cfg.Upstream == "" {
		v.addError(path+".reverseProxy.upstream", "upstream address is required")
		return
	}
	v.validateHostPort(path+".reverseProxy.upstream", cfg.Upstream)
}

func (v *Validator) validateFixedResponse(path string, cfg *FixedResponseConfig) {
	if cfg == nil {
		v.addError(path+".fixedResponse", "fixedResponse params are required")
		return
	}
	if cfg.Status < 100 || cfg.Status > 599 {
		v.addError(path+".fixedResponse.status",
			fmt.Sprintf("status must be between 100 and 599, got %d", cfg.Status))
	}
}

// validateHostPort checks that addr parses as host:port with a valid
// port number. An empty host (":8080") binds all interfaces and is
// allowed for listen addresses.
func (v *Validator) validateHostPort(path, addr string) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		v.addError(path, fmt.Sprintf("invalid host:port address %q: %v", addr, err))
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		v.addError(path, fmt.Sprintf("invalid port in address %q", addr))
	}
}
