// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/canonical/workspace-service/internal/types"
)

type StorageInterface interface {
	CreateWorkspace(ctx context.Context, w *types.Workspace) (*types.Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*types.Workspace, error)
	UpdateWorkspace(ctx context.Context, id string, patch *types.WorkspacePatch) (*types.Workspace, error)
	DeleteWorkspace(ctx context.Context, id string) error
	ListWorkspacesByUserID(ctx context.Context, userID string) ([]*types.WorkspaceWithRole, error)

	AddMembership(ctx context.Context, workspaceID, userID string, role types.Role) (*types.Membership, error)
	GetMembershipRole(ctx context.Context, userID, workspaceID string) (types.Role, error)
	RemoveMembership(ctx context.Context, workspaceID, userID string) error
	ListMemberships(ctx context.Context, workspaceID string) ([]*types.Membership, error)
	CountMembershipsByRole(ctx context.Context, userID string) (map[types.Role]int, error)
	LockAdminIDs(ctx context.Context, workspaceID string) ([]string, error)

	CreateProject(ctx context.Context, p *types.Project) (*types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	ListProjects(ctx context.Context, workspaceID string) ([]*types.Project, error)
	CreateTask(ctx context.Context, t *types.Task) (*types.Task, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
	ListTasks(ctx context.Context, projectID string) ([]*types.Task, error)
	GetTaskWorkspaceID(ctx context.Context, taskID string) (string, error)

	CreateTag(ctx context.Context, t *types.Tag) (*types.Tag, error)
	GetTag(ctx context.Context, id string) (*types.Tag, error)
	ListTagsByWorkspaceID(ctx context.Context, workspaceID string) ([]*types.Tag, error)
	AssignTag(ctx context.Context, taskID, tagID string) (bool, error)

	CreateNotification(ctx context.Context, n *types.Notification) (*types.Notification, error)
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*types.Notification, error)
}
