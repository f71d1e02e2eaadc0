// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/workspace-service/internal/authorization"
	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
	"github.com/canonical/workspace-service/pkg/resolver"
)

var ErrInvalidContent = errors.New("invalid content")

var _ ServiceInterface = (*Service)(nil)

type newContent struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
}

// Service populates the workspace hierarchy, every write is gated on the
// requester's role in the workspace that owns the parent resource
type Service struct {
	storage  StorageInterface
	authz    AuthorizerInterface
	resolver ResolverInterface

	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) CreateProject(ctx context.Context, requesterID, workspaceID, name, description string) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.CreateProject")
	defer span.End()

	if ok, err := s.authorize(ctx, requesterID, workspaceID, authorization.WriteContent); !ok {
		return nil, err
	}

	if err := s.validate.Struct(newContent{Title: name, Description: description}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}

	return s.storage.CreateProject(ctx, &types.Project{WorkspaceID: workspaceID, Name: name, Description: description})
}

func (s *Service) ListProjects(ctx context.Context, requesterID, workspaceID string) ([]*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.ListProjects")
	defer span.End()

	if ok, err := s.authorize(ctx, requesterID, workspaceID, authorization.ReadWorkspace); !ok {
		return nil, err
	}

	return s.storage.ListProjects(ctx, workspaceID)
}

// CreateTask returns nil when the project does not exist or the requester may not write to its workspace
func (s *Service) CreateTask(ctx context.Context, requesterID, projectID, title, description string) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.CreateTask")
	defer span.End()

	workspaceID, err := s.resolver.WorkspaceOfProject(ctx, projectID)
	if errors.Is(err, resolver.ErrNotFound) {
		s.logger.Debugf("project %s not found", projectID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if ok, err := s.authorize(ctx, requesterID, workspaceID, authorization.WriteContent); !ok {
		return nil, err
	}

	if err := s.validate.Struct(newContent{Title: title, Description: description}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}

	return s.storage.CreateTask(ctx, &types.Task{ProjectID: projectID, Title: title, Description: description})
}

func (s *Service) ListTasks(ctx context.Context, requesterID, projectID string) ([]*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.ListTasks")
	defer span.End()

	workspaceID, err := s.resolver.WorkspaceOfProject(ctx, projectID)
	if errors.Is(err, resolver.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if ok, err := s.authorize(ctx, requesterID, workspaceID, authorization.ReadWorkspace); !ok {
		return nil, err
	}

	return s.storage.ListTasks(ctx, projectID)
}

func (s *Service) authorize(ctx context.Context, userID, workspaceID string, action authorization.Action) (bool, error) {
	allowed, err := s.authz.Check(ctx, userID, workspaceID, action)
	if err != nil {
		return false, err
	}

	if !allowed {
		s.logger.Debugf("user %s denied %s on workspace %s", userID, action, workspaceID)
	}

	return allowed, nil
}

func NewService(
	storage StorageInterface,
	authz AuthorizerInterface,
	resolver ResolverInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		authz:    authz,
		resolver: resolver,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
