package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/edgegate/edgegate/internal/config"
	"github.com/edgegate/edgegate/internal/observability"
)

// StaticFile serves files from a root directory. The residual path is
// resolved below root; any resolution that would escape root is
// rejected with 403 before touching the filesystem. Directories serve
// the configured index file or 404 — listings are never produced.
type StaticFile struct {
	root   string
	index  string
	logger observability.Logger
}

// StaticFileOption is a functional option for configuring the handler.
type StaticFileOption func(*StaticFile)

// WithStaticFileLogger sets the logger for the handler.
func WithStaticFileLogger(logger observability.Logger) StaticFileOption {
	return func(h *StaticFile) {
		h.logger = logger
	}
}

// NewStaticFile creates a static file handler from configuration.
func NewStaticFile(cfg *config.StaticFileConfig, opts ...StaticFileOption) *StaticFile {
	h := &StaticFile{
		root:   filepath.Clean(cfg.Root),
		index:  cfg.Index,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Handle implements Handler.
func (h *StaticFile) Handle(w http.ResponseWriter, r *http.Request, residual string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	full, ok := h.resolve(residual)
	if !ok {
		h.logger.Warn("rejected path traversal attempt",
			observability.String("path", r.URL.Path),
			observability.String("residual", residual),
		)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	info, err := os.Stat(full)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if info.IsDir() {
		if h.index == "" {
			http.NotFound(w, r)
			return
		}
		full = filepath.Join(full, h.index)
		info, err = os.Stat(full)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
	}

	f, err := os.Open(full)
	if err != nil {
		// Stat succeeded but open failed: permissions, not absence.
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	defer func() { _ = f.Close() }()

	// ServeContent supplies Content-Type by extension, Last-Modified,
	// range handling, and conditional request support.
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// Kind implements Handler.
func (h *StaticFile) Kind() string {
	return string(config.HandlerStaticFile)
}

// resolve maps a residual request path to a filesystem path below the
// root. It returns false when the path attempts to escape the root.
func (h *StaticFile) resolve(residual string) (string, bool) {
	// Reject encoded or literal parent references before cleaning so
	// traversal attempts surface as 403 rather than silently resolving.
	if containsDotDot(residual) {
		return "", false
	}

	clean := path.Clean("/" + residual)
	full := filepath.Join(h.root, filepath.FromSlash(clean))

	// Joining a cleaned rooted path cannot escape, but verify against
	// the root as a final guard.
	if full != h.root && !strings.HasPrefix(full, h.root+string(filepath.Separator)) {
		return "", false
	}

	return full, true
}

// containsDotDot reports whether any slash-delimited segment of p is
// "..".
func containsDotDot(p string) bool {
	if !strings.Contains(p, "..") {
		return false
	}
	for _, seg := range strings.FieldsFunc(p, isSlashRune) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func isSlashRune(r rune) bool {
	return r == '/' || r == '\\'
}
