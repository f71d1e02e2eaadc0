// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tags

import (
	"context"

	"github.com/canonical/workspace-service/internal/authorization"
	"github.com/canonical/workspace-service/internal/types"
)

type ServiceInterface interface {
	CreateTag(ctx context.Context, requesterID, workspaceID, name, color string) (*types.Tag, error)
	AssignTag(ctx context.Context, requesterID, taskID, tagID string) (bool, error)
	ListTags(ctx context.Context, requesterID, workspaceID string) ([]*types.Tag, error)
}

type StorageInterface interface {
	CreateTag(ctx context.Context, t *types.Tag) (*types.Tag, error)
	GetTag(ctx context.Context, id string) (*types.Tag, error)
	ListTagsByWorkspaceID(ctx context.Context, workspaceID string) ([]*types.Tag, error)
	AssignTag(ctx context.Context, taskID, tagID string) (bool, error)
}

type AuthorizerInterface interface {
	Check(ctx context.Context, userID, workspaceID string, action authorization.Action) (bool, error)
}

type ResolverInterface interface {
	WorkspaceOfTask(ctx context.Context, taskID string) (string, error)
}
