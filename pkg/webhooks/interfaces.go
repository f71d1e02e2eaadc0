// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"

	"github.com/canonical/workspace-service/internal/types"
)

type WorkspaceInterface interface {
	CreateWorkspace(ctx context.Context, creatorID, name, description string) (*types.Workspace, error)
	ListWorkspaces(ctx context.Context, userID string) ([]*types.WorkspaceWithRole, error)
}

type ServiceInterface interface {
	HandleRegistration(ctx context.Context, identityID, email string) (*types.Workspace, error)
}
