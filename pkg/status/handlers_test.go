// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
)

type pinger struct {
	err error
}

func (p pinger) Ping(context.Context) error {
	return p.err
}

func TestReady(t *testing.T) {
	down := errors.New("connection refused")

	testCases := []struct {
		name           string
		database       error
		redis          error
		expectedCode   int
		expectedStatus string
	}{
		{name: "all up", expectedCode: http.StatusOK, expectedStatus: StatusHealthy},
		{name: "redis down", redis: down, expectedCode: http.StatusOK, expectedStatus: StatusDegraded},
		{name: "database down", database: down, expectedCode: http.StatusServiceUnavailable, expectedStatus: StatusUnhealthy},
		{name: "both down", database: down, redis: down, expectedCode: http.StatusServiceUnavailable, expectedStatus: StatusUnhealthy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger := logging.NewNoopLogger()
			mux := chi.NewMux()

			NewAPI(tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger).
				WithDependency("database", pinger{tc.database}, true).
				WithDependency("redis", pinger{tc.redis}, false).
				RegisterEndpoints(mux)

			req := httptest.NewRequest(http.MethodGet, "/api/v0/ready", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedCode {
				t.Errorf("expected status code %d, got %d", tc.expectedCode, w.Code)
			}

			s := new(Status)
			if err := json.NewDecoder(w.Body).Decode(s); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}

			if s.Status != tc.expectedStatus {
				t.Errorf("expected %s, got %s", tc.expectedStatus, s.Status)
			}
			if len(s.Dependencies) != 2 {
				t.Errorf("expected 2 dependencies, got %v", s.Dependencies)
			}
		})
	}
}

func TestAlive(t *testing.T) {
	logger := logging.NewNoopLogger()
	mux := chi.NewMux()
	NewAPI(tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger).RegisterEndpoints(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v0/status", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
