// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package workspace

import (
	"context"

	"github.com/canonical/workspace-service/internal/authorization"
	"github.com/canonical/workspace-service/internal/types"
)

type ServiceInterface interface {
	CreateWorkspace(ctx context.Context, creatorID, name, description string) (*types.Workspace, error)
	GetWorkspace(ctx context.Context, requesterID, workspaceID string) (*types.WorkspaceWithRole, error)
	ListWorkspaces(ctx context.Context, userID string) ([]*types.WorkspaceWithRole, error)
	UpdateWorkspace(ctx context.Context, requesterID, workspaceID string, patch *types.WorkspacePatch) (*types.Workspace, error)
	DeleteWorkspace(ctx context.Context, requesterID, workspaceID string) (bool, error)
	AddMember(ctx context.Context, requesterID, workspaceID, targetEmail string, role types.Role) (bool, error)
	RemoveMember(ctx context.Context, requesterID, workspaceID, targetUserID string) (bool, error)
	ListMembers(ctx context.Context, requesterID, workspaceID string) ([]*types.MemberWithRole, error)
	CountWorkspacesByRole(ctx context.Context, userID string) (map[types.Role]int, error)
	IsWorkspaceAdmin(ctx context.Context, userID, workspaceID string) (bool, error)
	HasAccessToTask(ctx context.Context, userID, taskID string) (bool, error)
}

type StorageInterface interface {
	CreateWorkspace(ctx context.Context, w *types.Workspace) (*types.Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*types.Workspace, error)
	UpdateWorkspace(ctx context.Context, id string, patch *types.WorkspacePatch) (*types.Workspace, error)
	DeleteWorkspace(ctx context.Context, id string) error
	ListWorkspacesByUserID(ctx context.Context, userID string) ([]*types.WorkspaceWithRole, error)
}

type MembershipInterface interface {
	GetRole(ctx context.Context, userID, workspaceID string) (types.Role, error)
	AddMember(ctx context.Context, workspaceID, userID string, role types.Role) (*types.Membership, error)
	RemoveMember(ctx context.Context, workspaceID, userID string) (bool, error)
	ListMembers(ctx context.Context, workspaceID string) ([]*types.Membership, error)
	CountByRole(ctx context.Context, userID string) (map[types.Role]int, error)
	LockAdmins(ctx context.Context, workspaceID string) ([]string, error)
}

type AuthorizerInterface interface {
	Check(ctx context.Context, userID, workspaceID string, action authorization.Action) (bool, error)
}

type ResolverInterface interface {
	WorkspaceOfTask(ctx context.Context, taskID string) (string, error)
}

// DirectoryInterface looks users up in the identity provider, absent users are returned as nil
type DirectoryInterface interface {
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

// NotifierInterface delivers notifications without reporting back to the caller
type NotifierInterface interface {
	Notify(ctx context.Context, userID, eventType, message string)
}

type TxInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}
