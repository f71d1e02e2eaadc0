// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package notifications -destination ./mock_notifications.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package notifications -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package notifications -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package notifications -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestDispatcher_NotifyIsDetachedFromCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSink := NewMockSinkInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)

	d := NewDispatcher(mockSink, time.Second, mockTracer, mockMonitor, mockLogger)

	traceID := trace.TraceID{1, 2, 3}
	parent := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	}))
	parent, cancel := context.WithCancel(parent)
	cancel()

	mockTracer.EXPECT().Start(gomock.Any(), "notifications.Dispatcher.Notify").DoAndReturn(
		func(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	)
	mockSink.EXPECT().Notify(gomock.Any(), "user-2", EventUserAddedToWorkspace, "hello").DoAndReturn(
		func(ctx context.Context, userID, eventType, message string) error {
			if ctx.Err() != nil {
				t.Errorf("delivery context inherited caller cancellation: %v", ctx.Err())
			}
			if _, ok := ctx.Deadline(); !ok {
				t.Errorf("delivery context has no timeout")
			}
			if got := trace.SpanContextFromContext(ctx).TraceID(); got != traceID {
				t.Errorf("expected trace %s, got %s", traceID, got)
			}
			return nil
		},
	)

	d.Notify(parent, "user-2", EventUserAddedToWorkspace, "hello")
	d.Wait()
}

func TestDispatcher_SinkFailureIsOnlyLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSink := NewMockSinkInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	d := NewDispatcher(mockSink, 0, tracing.NewNoopTracer(), NewMockMonitorInterface(ctrl), mockLogger)

	mockSink.EXPECT().Notify(gomock.Any(), "user-2", gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	mockLogger.EXPECT().Warnf(gomock.Any(), gomock.Any())

	d.Notify(context.Background(), "user-2", EventUserAddedToWorkspace, "hello")
	d.Wait()
}

func TestDispatcher_RecoversFromPanickingSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSink := NewMockSinkInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	d := NewDispatcher(mockSink, time.Second, tracing.NewNoopTracer(), NewMockMonitorInterface(ctrl), mockLogger)

	mockSink.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string, string, string) error {
			panic("boom")
		},
	)
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any())

	d.Notify(context.Background(), "user-2", EventUserAddedToWorkspace, "hello")
	d.Wait()
}

func TestStorageSink_Notify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)

	s := NewStorageSink(mockStorage, mockTracer, NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl))

	mockTracer.EXPECT().Start(gomock.Any(), "notifications.StorageSink.Notify").Return(context.Background(), trace.SpanFromContext(context.Background())).Times(2)
	mockStorage.EXPECT().CreateNotification(gomock.Any(), &types.Notification{UserID: "user-2", Type: EventUserAddedToWorkspace, Message: "hello"}).
		Return(&types.Notification{ID: "n-1"}, nil)
	mockStorage.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

	assert.NoError(t, s.Notify(context.Background(), "user-2", EventUserAddedToWorkspace, "hello"))
	assert.Error(t, s.Notify(context.Background(), "user-2", EventUserAddedToWorkspace, "hello"))
}

func TestMultiSink_AttemptsEverySink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failing := NewMockSinkInterface(ctrl)
	working := NewMockSinkInterface(ctrl)
	sinkErr := errors.New("sink down")

	failing.EXPECT().Notify(gomock.Any(), "user-2", "E", "m").Return(sinkErr)
	working.EXPECT().Notify(gomock.Any(), "user-2", "E", "m").Return(nil)

	err := NewMultiSink(failing, working).Notify(context.Background(), "user-2", "E", "m")

	assert.ErrorIs(t, err, sinkErr)
}

func newRedisSink(t *testing.T) (*RedisSink, *redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := logging.NewNoopLogger()

	return NewRedisSink(client, "", tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger), client, mr
}

func TestRedisSink_PublishesOnUserChannel(t *testing.T) {
	sink, client, _ := newRedisSink(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "notifications:user-2")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, sink.Notify(ctx, "user-2", EventUserAddedToWorkspace, "You have been added to the workspace 'Sprint Planning'."))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "notifications:user-2", msg.Channel)

		n := new(types.Notification)
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), n))
		assert.Equal(t, "user-2", n.UserID)
		assert.Equal(t, EventUserAddedToWorkspace, n.Type)
		assert.Equal(t, "You have been added to the workspace 'Sprint Planning'.", n.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisSink_Ping(t *testing.T) {
	sink, _, mr := newRedisSink(t)

	assert.NoError(t, sink.Ping(context.Background()))

	mr.Close()
	assert.Error(t, sink.Ping(context.Background()))
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, client.Options().DB)

	_, err = NewRedisClient("not a url")
	assert.Error(t, err)
}
