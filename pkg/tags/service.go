// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tags

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/workspace-service/internal/authorization"
	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/storage"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
	"github.com/canonical/workspace-service/pkg/resolver"
)

var ErrInvalidTag = errors.New("invalid tag")

var _ ServiceInterface = (*Service)(nil)

type newTag struct {
	Name  string `validate:"required,max=50"`
	Color string `validate:"omitempty,hexcolor"`
}

type Service struct {
	storage  StorageInterface
	authz    AuthorizerInterface
	resolver ResolverInterface

	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// CreateTag returns nil when the requester may not create tags in the workspace
func (s *Service) CreateTag(ctx context.Context, requesterID, workspaceID, name, color string) (*types.Tag, error) {
	ctx, span := s.tracer.Start(ctx, "tags.Service.CreateTag")
	defer span.End()

	allowed, err := s.authz.Check(ctx, requesterID, workspaceID, authorization.CreateTag)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.logger.Debugf("user %s denied tag creation in workspace %s", requesterID, workspaceID)
		return nil, nil
	}

	if err := s.validate.Struct(newTag{Name: name, Color: color}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTag, err)
	}

	return s.storage.CreateTag(ctx, &types.Tag{WorkspaceID: workspaceID, Name: name, Color: color, CreatedBy: requesterID})
}

// AssignTag links a tag to a task when both live in the same workspace and the requester
// may write there. Assigning an already assigned tag succeeds without a second edge.
func (s *Service) AssignTag(ctx context.Context, requesterID, taskID, tagID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "tags.Service.AssignTag")
	defer span.End()

	workspaceID, err := s.resolver.WorkspaceOfTask(ctx, taskID)
	if errors.Is(err, resolver.ErrNotFound) {
		s.logger.Debugf("task %s not found", taskID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	allowed, err := s.authz.Check(ctx, requesterID, workspaceID, authorization.AssignTag)
	if err != nil {
		return false, err
	}
	if !allowed {
		s.logger.Debugf("user %s denied tag assignment in workspace %s", requesterID, workspaceID)
		return false, nil
	}

	tag, err := s.storage.GetTag(ctx, tagID)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debugf("tag %s not found", tagID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if tag.WorkspaceID != workspaceID {
		s.logger.Security().AuthzFailure(authorization.UserTuple(requesterID), "tag:"+tagID, string(authorization.AssignTag))
		s.logger.Warnf("tag %s of workspace %s cannot be assigned to task %s of workspace %s", tagID, tag.WorkspaceID, taskID, workspaceID)
		return false, nil
	}

	inserted, err := s.storage.AssignTag(ctx, taskID, tagID)
	if err != nil {
		return false, err
	}
	if !inserted {
		s.logger.Debugf("tag %s already assigned to task %s", tagID, taskID)
	}

	return true, nil
}

func (s *Service) ListTags(ctx context.Context, requesterID, workspaceID string) ([]*types.Tag, error) {
	ctx, span := s.tracer.Start(ctx, "tags.Service.ListTags")
	defer span.End()

	allowed, err := s.authz.Check(ctx, requesterID, workspaceID, authorization.ReadTags)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, nil
	}

	return s.storage.ListTagsByWorkspaceID(ctx, workspaceID)
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
