package router

import (
	"strings"

	"github.com/edgegate/edgegate/internal/config"
)

// Matcher decides whether a request path satisfies a rule's pattern
// and computes the residual path handed to the handler.
type Matcher interface {
	// Match reports whether path satisfies the pattern. On a match the
	// residual is the request path remaining after prefix removal,
	// always rooted with a leading slash; exact matches yield "/".
	Match(path string) (matched bool, residual string)
	Kind() config.MatchKind
	Pattern() string
}

// ExactMatcher matches a path exactly. No trailing-slash
// normalization is applied: /health and /health/ are distinct unless
// the pattern itself ends in a slash.
type ExactMatcher struct {
	path string
}

// NewExactMatcher creates a new exact path matcher.
func NewExactMatcher(path string) *ExactMatcher {
	return &ExactMatcher{path: path}
}

// Match checks if the path matches exactly.
func (m *ExactMatcher) Match(path string) (matched bool, residual string) {
	if path != m.path {
		return false, ""
	}
	return true, "/"
}

// Kind returns the matcher kind.
func (m *ExactMatcher) Kind() config.MatchKind {
	return config.MatchExact
}

// Pattern returns the pattern.
func (m *ExactMatcher) Pattern() string {
	return m.path
}

// PrefixMatcher matches any path starting with the pattern. There is
// no longest-prefix reordering: declaration order decides between
// overlapping prefixes.
type PrefixMatcher struct {
	prefix string
}

// NewPrefixMatcher creates a new prefix path matcher.
func NewPrefixMatcher(prefix string) *PrefixMatcher {
	return &PrefixMatcher{prefix: prefix}
}

// Match checks if the path starts with the prefix and computes the
// residual. The residual is re-rooted with a leading slash so
// downstream handlers always receive a root-relative path: pattern
// /images against /images/logo.png yields /logo.png.
func (m *PrefixMatcher) Match(path string) (matched bool, residual string) {
	if !strings.HasPrefix(path, m.prefix) {
		return false, ""
	}
	residual = path[len(m.prefix):]
	if !strings.HasPrefix(residual, "/") {
		residual = "/" + residual
	}
	return true, residual
}

// Kind returns the matcher kind.
func (m *PrefixMatcher) Kind() config.MatchKind {
	return config.MatchPrefix
}

// Pattern returns the pattern.
func (m *PrefixMatcher) Pattern() string {
	return m.prefix
}

// CatchallMatcher matches every path unchanged. A catchall rule is
// the table's terminal fallback.
type CatchallMatcher struct{}

// NewCatchallMatcher creates a new catchall matcher.
func NewCatchallMatcher() *CatchallMatcher {
	return &CatchallMatcher{}
}

// Match always matches; the residual is the path unchanged.
func (m *CatchallMatcher) Match(path string) (matched bool, residual string) {
	return true, path
}

// Kind returns the matcher kind.
func (m *CatchallMatcher) Kind() config.MatchKind {
	return config.MatchCatchall
}

// Pattern returns the pattern.
func (m *CatchallMatcher) Pattern() string {
	return "*"
}

// NewMatcher creates a matcher from a route's match configuration.
func NewMatcher(kind config.MatchKind, pattern string) (Matcher, error) {
	switch kind {
	case config.MatchExact:
		return NewExactMatcher(pattern), nil
	case config.MatchPrefix:
		return NewPrefixMatcher(pattern), nil
	case config.MatchCatchall:
		return NewCatchallMatcher(), nil
	default:
		return nil, &UnknownMatchKindError{Kind: kind}
	}
}

// UnknownMatchKindError indicates an unrecognized match kind tag.
type UnknownMatchKindError struct {
	Kind config.MatchKind
}

// Error implements the error interface.
func (e *UnknownMatchKindError) Error() string {
	return "unknown match kind: " + string(e.Kind)
}
