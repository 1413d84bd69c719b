package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/architeacher/catalog/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		path         string
		failing      bool
		expectedCode int
		expectedKey  string
		expectedVal  any
	}{
		{name: "liveness", path: "/health/liveness", expectedCode: http.StatusOK, expectedKey: "status", expectedVal: "ok"},
		{name: "liveness ignores storage", path: "/health/liveness", failing: true, expectedCode: http.StatusOK, expectedKey: "status", expectedVal: "ok"},
		{name: "readiness", path: "/health/readiness", expectedCode: http.StatusOK, expectedKey: "ready", expectedVal: true},
		{name: "readiness with storage down", path: "/health/readiness", failing: true, expectedCode: http.StatusServiceUnavailable, expectedKey: "ready", expectedVal: false},
		{name: "report", path: "/health", expectedCode: http.StatusOK, expectedKey: "status", expectedVal: "healthy"},
		{name: "report with storage down", path: "/health", failing: true, expectedCode: http.StatusServiceUnavailable, expectedKey: "status", expectedVal: "unhealthy"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := seededRepository(t)

			var storage interface{ Ping(context.Context) error } = repo
			if tc.failing {
				storage = failingStorage{MemoryRepository: repo}
			}

			router := chi.NewRouter()
			handlers.NewHealthHandler(newTestApp(t, repo, storage), logger.NewTestLogger()).Routes(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			require.Equal(t, tc.expectedCode, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.expectedVal, body[tc.expectedKey])
		})
	}
}
