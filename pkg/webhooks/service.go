// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
)

var ErrInvalidIdentity = errors.New("identity ID or email is empty")

var _ ServiceInterface = (*Service)(nil)

// Service provisions a personal workspace for identities registering on Kratos
type Service struct {
	workspaces WorkspaceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// HandleRegistration creates "<name>'s Workspace" with the new identity as its admin.
// Redelivered hooks are ignored once the identity belongs to any workspace.
func (s *Service) HandleRegistration(ctx context.Context, identityID, email string) (*types.Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleRegistration")
	defer span.End()

	s.logger.Debugf("Handling registration for identity %s with email %s", identityID, email)

	if identityID == "" || email == "" {
		return nil, ErrInvalidIdentity
	}

	existing, err := s.workspaces.ListWorkspaces(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	if len(existing) > 0 {
		s.logger.Debugf("identity %s already belongs to %d workspaces, skipping provisioning", identityID, len(existing))
		return nil, nil
	}

	w, err := s.workspaces.CreateWorkspace(ctx, identityID, personalWorkspaceName(email), "")
	if err != nil {
		return nil, fmt.Errorf("failed to provision workspace: %w", err)
	}

	s.logger.Infof("Successfully provisioned workspace %s for user %s", w.ID, identityID)
	return w, nil
}

func personalWorkspaceName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return fmt.Sprintf("%s's Workspace", local)
}

func NewService(
	workspaces WorkspaceInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		workspaces: workspaces,
		tracer:     tracer,
		monitor:    monitor,
		logger:     logger,
	}
}
