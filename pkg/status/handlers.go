// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/version"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"

	readinessTimeout = 5 * time.Second
)

type Status struct {
	Status       string                `json:"status"`
	Version      string                `json:"version"`
	Dependencies map[string]Dependency `json:"dependencies,omitempty"`
}

type Dependency struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type check struct {
	name     string
	pinger   PingerInterface
	required bool
}

// API serves liveness and readiness, a failing required dependency makes the
// service unhealthy while an optional one only degrades it
type API struct {
	checks []check

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/status", a.alive)
	mux.Get("/api/v0/ready", a.ready)
}

// WithDependency adds a readiness check
func (a *API) WithDependency(name string, pinger PingerInterface, required bool) *API {
	a.checks = append(a.checks, check{name: name, pinger: pinger, required: required})
	return a
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	a.write(w, http.StatusOK, Status{Status: StatusHealthy, Version: version.Version})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.ready")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	s := Status{Status: StatusHealthy, Version: version.Version, Dependencies: make(map[string]Dependency)}

	for _, c := range a.checks {
		start := time.Now()
		err := c.pinger.Ping(ctx)

		dep := Dependency{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
		if err != nil {
			a.logger.Warnf("dependency %s is not ready: %v", c.name, err)
			dep.Status = StatusUnhealthy
			dep.Message = err.Error()

			switch {
			case c.required:
				s.Status = StatusUnhealthy
			case s.Status == StatusHealthy:
				s.Status = StatusDegraded
			}
		}

		s.Dependencies[c.name] = dep
	}

	code := http.StatusOK
	if s.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	a.write(w, code, s)
}

func (a *API) write(w http.ResponseWriter, code int, s Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(s); err != nil {
		a.logger.Errorf("failed to encode status: %v", err)
	}
}

func NewAPI(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
