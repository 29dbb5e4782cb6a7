package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okPinger() Pinger {
	return PingerFunc(func(ctx context.Context) error { return nil })
}

func failingPinger() Pinger {
	return PingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })
}

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(failingPinger(), nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		postgres   Pinger
		redis      Pinger
		wantStatus int
		wantBody   string
	}{
		{"all healthy", okPinger(), okPinger(), http.StatusOK, `"redis":"ok"`},
		{"without redis", okPinger(), nil, http.StatusOK, `"redis":"disabled"`},
		{"postgres down", failingPinger(), okPinger(), http.StatusServiceUnavailable, "postgres unhealthy"},
		{"redis down", okPinger(), failingPinger(), http.StatusServiceUnavailable, "redis unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.postgres, tt.redis).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
