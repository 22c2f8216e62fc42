// Package health provides health and readiness probe endpoints for
// the admin listener.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status.
type Status string

const (
	// StatusHealthy indicates the service is healthy.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the service is unhealthy.
	StatusUnhealthy Status = "unhealthy"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessResponse represents the readiness check response.
type ReadinessResponse struct {
	Status    Status           `json:"status"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Check represents an individual readiness check result.
type Check struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// CheckFunc is a function that performs a readiness check.
type CheckFunc func() Check

// Checker provides health and readiness checking functionality.
type Checker struct {
	version   string
	startTime time.Time
	checks    map[string]CheckFunc
	mu        sync.RWMutex
}

// NewChecker creates a new health checker.
func NewChecker(version string) *Checker {
	return &Checker{
		version:   version,
		startTime: time.Now(),
		checks:    make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a readiness check function.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// HealthzHandler returns the liveness probe handler. Liveness only
// says the process is serving; readiness covers dependencies.
func (c *Checker) HealthzHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    StatusHealthy,
			Version:   c.version,
			Uptime:    time.Since(c.startTime).Round(time.Second).String(),
			Timestamp: time.Now(),
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// ReadyzHandler returns the readiness probe handler. It runs all
// registered checks and reports 503 if any fails.
func (c *Checker) ReadyzHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.RLock()
		names := make([]string, 0, len(c.checks))
		funcs := make([]CheckFunc, 0, len(c.checks))
		for name, fn := range c.checks {
			names = append(names, name)
			funcs = append(funcs, fn)
		}
		c.mu.RUnlock()

		resp := ReadinessResponse{
			Status:    StatusHealthy,
			Checks:    make(map[string]Check, len(names)),
			Timestamp: time.Now(),
		}

		status := http.StatusOK
		for i, fn := range funcs {
			result := fn()
			resp.Checks[names[i]] = result
			if result.Status != StatusHealthy {
				resp.Status = StatusUnhealthy
				status = http.StatusServiceUnavailable
			}
		}

		writeJSON(w, status, resp)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
