// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/workspace-service/internal/types"
)

func (s *Storage) CreateNotification(ctx context.Context, n *types.Notification) (*types.Notification, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateNotification")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate notification ID: %w", err)
	}

	created := new(types.Notification)
	err = s.db.Statement(ctx).
		Insert("notifications").
		Columns("id", "user_id", "type", "message").
		Values(id, n.UserID, n.Type, n.Message).
		Suffix("RETURNING id, user_id, type, message, read, created_at").
		QueryRowContext(ctx).
		Scan(&created.ID, &created.UserID, &created.Type, &created.Message, &created.Read, &created.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	return created, nil
}

func (s *Storage) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*types.Notification, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListNotifications")
	defer span.End()

	query := s.db.Statement(ctx).
		Select("id", "user_id", "type", "message", "read", "created_at").
		From("notifications").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	if unreadOnly {
		query = query.Where(sq.Eq{"read": false})
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*types.Notification, 0)
	for rows.Next() {
		n := new(types.Notification)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return notifications, nil
}
