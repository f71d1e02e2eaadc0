// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
)

func TestNewNoopTracer(t *testing.T) {
	tracer := NewNoopTracer()

	ctx, span := tracer.Start(context.Background(), "tracing.TestNewNoopTracer")
	defer span.End()

	if ctx == nil {
		t.Fatal("expected a context")
	}
	if span.SpanContext().IsValid() {
		t.Error("noop tracer should not produce valid span contexts")
	}
}

func TestNewTracerDisabled(t *testing.T) {
	tracer := NewTracer(NewConfig(false, "", "", logging.NewNoopLogger()))

	if tracer.tracer == nil {
		t.Fatal("expected fallback tracer")
	}
}

func TestMiddlewareOpenTelemetry(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	mdw := NewMiddleware(monitoring.NewNoopMonitor("workspace-service", logging.NewNoopLogger()), logging.NewNoopLogger())

	rr := httptest.NewRecorder()
	mdw.OpenTelemetry(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v0/status", nil))

	if !called {
		t.Error("wrapped handler was not called")
	}
	if rr.Code != http.StatusNoContent {
		t.Errorf("expected %d, got %d", http.StatusNoContent, rr.Code)
	}
}
