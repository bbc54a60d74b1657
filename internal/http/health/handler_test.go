package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/salesdash/internal/http/health"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHandler(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") })

	tests := []struct {
		name       string
		path       string
		checks     map[string]health.Pinger
		wantStatus int
		wantState  string
		wantChecks map[string]string
	}{
		{
			name:       "Liveness",
			path:       "/healthz",
			checks:     map[string]health.Pinger{"store": down},
			wantStatus: http.StatusOK,
			wantState:  "ok",
		},
		{
			name:       "Ready",
			path:       "/readyz",
			checks:     map[string]health.Pinger{"store": ok, "cache": ok},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
			wantChecks: map[string]string{"store": "healthy", "cache": "healthy"},
		},
		{
			name:       "StoreDown",
			path:       "/readyz",
			checks:     map[string]health.Pinger{"store": down, "cache": ok},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
			wantChecks: map[string]string{"store": "unhealthy", "cache": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			health.NewHandler("test", tt.checks).Routes(r)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}
