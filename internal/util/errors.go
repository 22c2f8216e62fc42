// Package util provides shared error types and context helpers for the
// edge server.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., ConfigError, UpstreamError). Each type
//     implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
package util

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrTimeout         = errors.New("timeout")
	ErrCircuitOpen     = errors.New("circuit breaker open")
	ErrUpstreamUnavail = errors.New("upstream unavailable")
	ErrConfigInvalid   = errors.New("invalid configuration")
)

// ConfigError represents a configuration-related error. Configuration
// errors are fatal at startup: the process must not begin serving with
// an invalid route table.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	if _, ok := target.(*ConfigError); ok {
		return true
	}
	return errors.Is(target, ErrConfigInvalid)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with a cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// RouteNotFoundError indicates that no route matched a request path.
type RouteNotFoundError struct {
	Method string
	Path   string
}

// Error implements the error interface.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route for %s %s", e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *RouteNotFoundError) Is(target error) bool {
	if _, ok := target.(*RouteNotFoundError); ok {
		return true
	}
	return errors.Is(target, ErrNotFound)
}

// NewRouteNotFoundError creates a new RouteNotFoundError.
func NewRouteNotFoundError(method, path string) *RouteNotFoundError {
	return &RouteNotFoundError{Method: method, Path: path}
}

// UpstreamErrorKind classifies upstream failures.
type UpstreamErrorKind int

const (
	// UpstreamConnectFailure covers refused connections and DNS errors.
	UpstreamConnectFailure UpstreamErrorKind = iota
	// UpstreamTimeout covers exceeded connect or response deadlines.
	UpstreamTimeout
)

// UpstreamError represents a failure talking to a proxy upstream. Kind
// distinguishes connect failures (502) from deadline expiry (504).
type UpstreamError struct {
	Upstream string
	Kind     UpstreamErrorKind
	Cause    error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Kind == UpstreamTimeout {
		return fmt.Sprintf("upstream %s timed out: %v", e.Upstream, e.Cause)
	}
	return fmt.Sprintf("upstream %s unavailable: %v", e.Upstream, e.Cause)
}

// Unwrap returns the underlying error.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *UpstreamError) Is(target error) bool {
	if _, ok := target.(*UpstreamError); ok {
		return true
	}
	if e.Kind == UpstreamTimeout {
		return errors.Is(target, ErrTimeout)
	}
	return errors.Is(target, ErrUpstreamUnavail)
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(upstream string, kind UpstreamErrorKind, cause error) *UpstreamError {
	return &UpstreamError{Upstream: upstream, Kind: kind, Cause: cause}
}
