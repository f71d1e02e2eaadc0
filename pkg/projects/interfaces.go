// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

import (
	"context"

	"github.com/canonical/workspace-service/internal/authorization"
	"github.com/canonical/workspace-service/internal/types"
)

type ServiceInterface interface {
	CreateProject(ctx context.Context, requesterID, workspaceID, name, description string) (*types.Project, error)
	ListProjects(ctx context.Context, requesterID, workspaceID string) ([]*types.Project, error)
	CreateTask(ctx context.Context, requesterID, projectID, title, description string) (*types.Task, error)
	ListTasks(ctx context.Context, requesterID, projectID string) ([]*types.Task, error)
}

type StorageInterface interface {
	CreateProject(ctx context.Context, p *types.Project) (*types.Project, error)
	ListProjects(ctx context.Context, workspaceID string) ([]*types.Project, error)
	CreateTask(ctx context.Context, t *types.Task) (*types.Task, error)
	ListTasks(ctx context.Context, projectID string) ([]*types.Task, error)
}

type AuthorizerInterface interface {
	Check(ctx context.Context, userID, workspaceID string, action authorization.Action) (bool, error)
}

type ResolverInterface interface {
	WorkspaceOfProject(ctx context.Context, projectID string) (string, error)
}
