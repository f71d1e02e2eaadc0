// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
)

var (
	_ SinkInterface = (*StorageSink)(nil)
	_ SinkInterface = (*MultiSink)(nil)
)

// StorageSink records notifications so users can read them later
type StorageSink struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *StorageSink) Notify(ctx context.Context, userID, eventType, message string) error {
	ctx, span := s.tracer.Start(ctx, "notifications.StorageSink.Notify")
	defer span.End()

	if _, err := s.storage.CreateNotification(ctx, &types.Notification{UserID: userID, Type: eventType, Message: message}); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	return nil
}

func NewStorageSink(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *StorageSink {
	s := new(StorageSink)

	s.storage = storage

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}

// MultiSink fans a notification out to every sink concurrently,
// all sinks are attempted and the first failure is returned
type MultiSink struct {
	sinks []SinkInterface
}

func (m *MultiSink) Notify(ctx context.Context, userID, eventType, message string) error {
	var g errgroup.Group

	for _, sink := range m.sinks {
		g.Go(func() error {
			return sink.Notify(ctx, userID, eventType, message)
		})
	}

	return g.Wait()
}

func NewMultiSink(sinks ...SinkInterface) *MultiSink {
	return &MultiSink{sinks: sinks}
}
