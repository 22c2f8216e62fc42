package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgegate/edgegate/internal/config"
)

func TestFixedResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfg        config.FixedResponseConfig
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ok with body",
			cfg:        config.FixedResponseConfig{Status: 200, Body: "OK"},
			wantStatus: 200,
			wantBody:   "OK",
		},
		{
			name:       "not found fallback",
			cfg:        config.FixedResponseConfig{Status: 404, Body: "Not Found"},
			wantStatus: 404,
			wantBody:   "Not Found",
		},
		{
			name:       "zero status defaults to 200",
			cfg:        config.FixedResponseConfig{Body: "hi"},
			wantStatus: 200,
			wantBody:   "hi",
		},
		{
			name:       "empty body",
			cfg:        config.FixedResponseConfig{Status: 204},
			wantStatus: 204,
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewFixedResponse(&tt.cfg)

			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), "/")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestFixedResponse_Headers(t *testing.T) {
	t.Parallel()

	h := NewFixedResponse(&config.FixedResponseConfig{
		Status: 200,
		Body:   `{"ok":true}`,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Cache-Control": "no-store",
		},
	})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), "/")

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestFixedResponse_HeadOmitsBody(t *testing.T) {
	t.Parallel()

	h := NewFixedResponse(&config.FixedResponseConfig{Status: 200, Body: "OK"})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodHead, "/", nil), "/")

	assert.Equal(t, 200, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestFixedResponse_NeverFails(t *testing.T) {
	t.Parallel()

	h := NewFixedResponse(&config.FixedResponseConfig{Status: 503, Body: "down"})

	// Any method, any path, same answer.
	for _, method := range []string{"GET", "POST", "DELETE", "PATCH"} {
		rec := httptest.NewRecorder()
		h.Handle(rec, httptest.NewRequest(method, "/whatever", nil), "/whatever")
		assert.Equal(t, 503, rec.Code)
		assert.Equal(t, "down", rec.Body.String())
	}
}
