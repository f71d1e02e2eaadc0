// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package membership

import (
	"context"

	"github.com/canonical/workspace-service/internal/types"
)

type StoreInterface interface {
	GetRole(ctx context.Context, userID, workspaceID string) (types.Role, error)
	AddMember(ctx context.Context, workspaceID, userID string, role types.Role) (*types.Membership, error)
	RemoveMember(ctx context.Context, workspaceID, userID string) (bool, error)
	ListMembers(ctx context.Context, workspaceID string) ([]*types.Membership, error)
	CountAdmins(ctx context.Context, workspaceID string) (int, error)
	CountByRole(ctx context.Context, userID string) (map[types.Role]int, error)
	LockAdmins(ctx context.Context, workspaceID string) ([]string, error)
}

type StorageInterface interface {
	AddMembership(ctx context.Context, workspaceID, userID string, role types.Role) (*types.Membership, error)
	GetMembershipRole(ctx context.Context, userID, workspaceID string) (types.Role, error)
	RemoveMembership(ctx context.Context, workspaceID, userID string) error
	ListMemberships(ctx context.Context, workspaceID string) ([]*types.Membership, error)
	CountMembershipsByRole(ctx context.Context, userID string) (map[types.Role]int, error)
	LockAdminIDs(ctx context.Context, workspaceID string) ([]string, error)
}
