// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
)

const DefaultTimeout = 5 * time.Second

// Dispatcher delivers notifications in the background so a slow or failing
// sink never affects the operation that triggered it
type Dispatcher struct {
	sink    SinkInterface
	timeout time.Duration

	wg sync.WaitGroup

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Notify returns immediately. Delivery runs on a context detached from the caller's
// cancellation and unit of work, only the trace is carried over.
func (d *Dispatcher) Notify(ctx context.Context, userID, eventType, message string) {
	detached := trace.ContextWithSpanContext(context.Background(), trace.SpanContextFromContext(ctx))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				d.logger.Errorf("panic delivering %s to %s: %v\n%s", eventType, userID, r, debug.Stack())
			}
		}()

		ctx, span := d.tracer.Start(ctx, "notifications.Dispatcher.Notify")
		defer span.End()

		if err := d.sink.Notify(ctx, userID, eventType, message); err != nil {
			d.logger.Warnf("failed to deliver %s to %s: %v", eventType, userID, err)
		}
	}()
}

// Wait blocks until every notification handed to the dispatcher has been attempted
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func NewDispatcher(sink SinkInterface, timeout time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Dispatcher {
	d := new(Dispatcher)

	d.sink = sink
	d.timeout = timeout
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}

	d.tracer = tracer
	d.monitor = monitor
	d.logger = logger

	return d
}
