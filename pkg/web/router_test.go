// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
	"github.com/canonical/workspace-service/pkg/webhooks"
)

type up struct{}

func (up) Ping(context.Context) error { return nil }

func TestRouterServesOperationalEndpoints(t *testing.T) {
	logger := logging.NewNoopLogger()
	router := NewRouter(nil, up{}, nil, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("workspace-service", logger), logger)

	for _, path := range []string{"/api/v0/status", "/api/v0/ready", "/api/v0/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v0/workspaces", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", w.Code)
	}
}

type provisioner struct{}

func (provisioner) HandleRegistration(context.Context, string, string) (*types.Workspace, error) {
	return &types.Workspace{ID: "ws-1"}, nil
}

func TestRouterMountsRegistrationHook(t *testing.T) {
	logger := logging.NewNoopLogger()
	hooks := webhooks.NewAPI(provisioner{}, "", logger)
	router := NewRouter(hooks, up{}, nil, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("workspace-service", logger), logger)

	body := strings.NewReader(`{"id":"identity-1","traits":{"email":"one@example.com"}}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v0/webhooks/registration", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ws-1") {
		t.Errorf("expected provisioned workspace in response, got %s", w.Body.String())
	}
}
