// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/canonical/workspace-service/internal/types"
)

type AuthorizerInterface interface {
	Check(ctx context.Context, userID, workspaceID string, action Action) (bool, error)
}

// RoleReaderInterface returns types.RoleNone when the user holds no membership
type RoleReaderInterface interface {
	GetRole(ctx context.Context, userID, workspaceID string) (types.Role, error)
}
