// Package handler provides the handler variants a route can dispatch
// to: static file serving, reverse proxying, and fixed responses.
//
// Handlers form a closed set resolved from configuration tags at route
// table build time. Each handler receives the residual path computed
// by the matcher alongside the original request; whether the residual
// is applied is a per-handler policy (the static file handler resolves
// it against its root, the reverse proxy forwards the original path
// unchanged).
package handler

import "net/http"

// Handler produces a response for a matched request. residual is the
// request path remaining after prefix removal, always rooted with a
// leading slash. Implementations must write exactly one response and
// must not retain the request after returning.
type Handler interface {
	Handle(w http.ResponseWriter, r *http.Request, residual string)

	// Kind returns the configuration tag this handler was built from.
	Kind() string
}
