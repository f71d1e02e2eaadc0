// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
)

const DefaultChannelPrefix = "notifications"

var _ SinkInterface = (*RedisSink)(nil)

// RedisSink publishes each notification as JSON on the channel "<prefix>:<userID>"
type RedisSink struct {
	client *redis.Client
	prefix string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (r *RedisSink) Channel(userID string) string {
	return r.prefix + ":" + userID
}

func (r *RedisSink) Notify(ctx context.Context, userID, eventType, message string) error {
	ctx, span := r.tracer.Start(ctx, "notifications.RedisSink.Notify")
	defer span.End()

	payload, err := json.Marshal(
		types.Notification{UserID: userID, Type: eventType, Message: message, CreatedAt: time.Now().UTC()},
	)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	if err := r.client.Publish(ctx, r.Channel(userID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}

	return nil
}

// Ping checks redis is reachable and reports it as a dependency metric
func (r *RedisSink) Ping(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "notifications.RedisSink.Ping")
	defer span.End()

	err := r.client.Ping(ctx).Err()

	availability := 1.0
	if err != nil {
		availability = 0
	}
	if merr := r.monitor.SetDependencyAvailability(map[string]string{"component": "redis"}, availability); merr != nil {
		r.logger.Debugf("failed to set redis availability metric: %v", merr)
	}

	return err
}

func NewRedisSink(client *redis.Client, prefix string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *RedisSink {
	r := new(RedisSink)

	r.client = client
	r.prefix = prefix
	if r.prefix == "" {
		r.prefix = DefaultChannelPrefix
	}

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}

// NewRedisClient builds a client from a redis:// URL, the connection is established lazily
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	return redis.NewClient(opts), nil
}
