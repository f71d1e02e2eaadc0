// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"

	"github.com/canonical/workspace-service/internal/authorization"
	"github.com/canonical/workspace-service/internal/config"
	"github.com/canonical/workspace-service/internal/db"
	"github.com/canonical/workspace-service/internal/kratos"
	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/monitoring/prometheus"
	"github.com/canonical/workspace-service/internal/storage"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/pkg/membership"
	"github.com/canonical/workspace-service/pkg/notifications"
	"github.com/canonical/workspace-service/pkg/projects"
	"github.com/canonical/workspace-service/pkg/resolver"
	"github.com/canonical/workspace-service/pkg/tags"
	"github.com/canonical/workspace-service/pkg/workspace"
)

// core holds the fully wired application, shared by the server and the operator commands
type core struct {
	specs *config.EnvSpec

	logger  *logging.Logger
	monitor monitoring.MonitorInterface
	tracer  tracing.TracingInterface

	db      *db.DBClient
	storage *storage.Storage
	redis   *redis.Client
	sink    *notifications.RedisSink

	dispatcher *notifications.Dispatcher

	workspaces *workspace.Service
	tags       *tags.Service
	projects   *projects.Service
}

func newCore() (*core, error) {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return nil, fmt.Errorf("issues with environment sourcing: %w", err)
	}

	c := new(core)
	c.specs = specs
	c.logger = logging.NewLogger(specs.LogLevel)
	c.logger.Debugf("env vars: %v", specs)

	c.monitor = prometheus.NewMonitor("workspace-service", c.logger)
	c.tracer = tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, c.logger))

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}

	dbClient, err := db.NewDBClient(dbConfig, c.tracer, c.monitor, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database client: %w", err)
	}
	c.db = dbClient
	c.storage = storage.NewStorage(dbClient, c.tracer, c.monitor, c.logger)

	members := membership.NewStore(c.storage, c.tracer, c.monitor, c.logger)
	authorizer := authorization.NewAuthorizer(members, c.tracer, c.monitor, c.logger)
	links := resolver.NewResolver(c.storage, c.tracer, c.monitor, c.logger)
	directory := kratos.NewClient(specs.KratosAdminURL, c.tracer, c.monitor, c.logger)

	var sink notifications.SinkInterface = notifications.NewStorageSink(c.storage, c.tracer, c.monitor, c.logger)
	if specs.RedisURL != "" {
		c.redis, err = notifications.NewRedisClient(specs.RedisURL)
		if err != nil {
			c.db.Close()
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		c.sink = notifications.NewRedisSink(c.redis, specs.RedisChannelPrefix, c.tracer, c.monitor, c.logger)
		sink = notifications.NewMultiSink(sink, c.sink)
		c.logger.Info("Publishing notifications on redis")
	}
	c.dispatcher = notifications.NewDispatcher(sink, specs.NotificationTimeout, c.tracer, c.monitor, c.logger)

	c.workspaces = workspace.NewService(
		c.storage,
		members,
		authorizer,
		links,
		directory,
		c.dispatcher,
		dbClient,
		c.tracer,
		c.monitor,
		c.logger,
	)
	c.tags = tags.NewService(c.storage, authorizer, links, c.tracer, c.monitor, c.logger)
	c.projects = projects.NewService(c.storage, authorizer, links, c.tracer, c.monitor, c.logger)

	return c, nil
}

// Close waits for pending notifications before releasing connections
func (c *core) Close() {
	c.dispatcher.Wait()

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.logger.Warnf("failed to close redis client: %v", err)
		}
	}
	c.db.Close()
	_ = c.logger.Sync()
}
