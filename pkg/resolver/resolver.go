// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/storage"
	"github.com/canonical/workspace-service/internal/tracing"
)

var ErrNotFound = errors.New("resource not found")

var _ ResolverInterface = (*Resolver)(nil)

// Resolver maps content resources to the workspace that owns them,
// every call goes to storage so moved or deleted resources are never stale
type Resolver struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (r *Resolver) WorkspaceOfTask(ctx context.Context, taskID string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "resolver.Resolver.WorkspaceOfTask")
	defer span.End()

	workspaceID, err := r.storage.GetTaskWorkspaceID(ctx, taskID)
	if err != nil {
		return "", r.translate(err, "task", taskID)
	}

	return workspaceID, nil
}

func (r *Resolver) WorkspaceOfTag(ctx context.Context, tagID string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "resolver.Resolver.WorkspaceOfTag")
	defer span.End()

	tag, err := r.storage.GetTag(ctx, tagID)
	if err != nil {
		return "", r.translate(err, "tag", tagID)
	}

	return tag.WorkspaceID, nil
}

func (r *Resolver) WorkspaceOfProject(ctx context.Context, projectID string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "resolver.Resolver.WorkspaceOfProject")
	defer span.End()

	project, err := r.storage.GetProject(ctx, projectID)
	if err != nil {
		return "", r.translate(err, "project", projectID)
	}

	return project.WorkspaceID, nil
}

func (r *Resolver) translate(err error, kind, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		r.logger.Debugf("%s %s not found", kind, id)
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("failed to resolve %s %s: %w", kind, id, err)
}

func NewResolver(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Resolver {
	r := new(Resolver)

	r.storage = storage

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
