// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

import (
	"context"

	"github.com/canonical/workspace-service/internal/types"
)

// SinkInterface delivers a single notification to one backend
type SinkInterface interface {
	Notify(ctx context.Context, userID, eventType, message string) error
}

type StorageInterface interface {
	CreateNotification(ctx context.Context, n *types.Notification) (*types.Notification, error)
}
