// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/pkg/metrics"
	"github.com/canonical/workspace-service/pkg/status"
	"github.com/canonical/workspace-service/pkg/webhooks"
)

// NewRouter serves the operational endpoints and the Kratos registration hook,
// dependencies are probed by the readiness check
func NewRouter(
	hooks *webhooks.API,
	database status.PingerInterface,
	redis status.PingerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
	)

	router.Use(middlewares...)

	statusAPI := status.NewAPI(tracer, monitor, logger)
	if database != nil {
		statusAPI.WithDependency("database", database, true)
	}
	if redis != nil {
		statusAPI.WithDependency("redis", redis, false)
	}

	metrics.NewAPI(logger).RegisterEndpoints(router)
	statusAPI.RegisterEndpoints(router)
	if hooks != nil {
		hooks.RegisterEndpoints(router)
	}

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}

func middlewareCORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(
		cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		},
	)
}
