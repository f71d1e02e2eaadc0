// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"context"

	"github.com/canonical/workspace-service/internal/types"
)

type ResolverInterface interface {
	WorkspaceOfTask(ctx context.Context, taskID string) (string, error)
	WorkspaceOfTag(ctx context.Context, tagID string) (string, error)
	WorkspaceOfProject(ctx context.Context, projectID string) (string, error)
}

type StorageInterface interface {
	GetTaskWorkspaceID(ctx context.Context, taskID string) (string, error)
	GetTag(ctx context.Context, id string) (*types.Tag, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
}
