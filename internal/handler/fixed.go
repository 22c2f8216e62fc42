package handler

import (
	"io"
	"net/http"

	"github.com/edgegate/edgegate/internal/config"
)

// FixedResponse replies with a configured status and body regardless
// of the request. It never fails.
type FixedResponse struct {
	status  int
	body    string
	headers map[string]string
}

// NewFixedResponse creates a fixed response handler from configuration.
func NewFixedResponse(cfg *config.FixedResponseConfig) *FixedResponse {
	status := cfg.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &FixedResponse{
		status:  status,
		body:    cfg.Body,
		headers: cfg.Headers,
	}
}

// Handle implements Handler.
func (h *FixedResponse) Handle(w http.ResponseWriter, r *http.Request, _ string) {
	for key, value := range h.headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(h.status)

	// HEAD gets headers only.
	if r.Method == http.MethodHead {
		return
	}
	if h.body != "" {
		_, _ = io.WriteString(w, h.body)
	}
}

// Kind implements Handler.
func (h *FixedResponse) Kind() string {
	return string(config.HandlerFixedResponse)
}
