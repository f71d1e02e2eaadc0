// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/workspace-service/internal/types"
)

func (s *Storage) CreateTag(ctx context.Context, t *types.Tag) (*types.Tag, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTag")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tag ID: %w", err)
	}

	created := new(types.Tag)
	err = s.db.Statement(ctx).
		Insert("tags").
		Columns("id", "workspace_id", "name", "color", "created_by").
		Values(id, t.WorkspaceID, t.Name, t.Color, t.CreatedBy).
		Suffix("RETURNING id, workspace_id, name, color, created_by, created_at").
		QueryRowContext(ctx).
		Scan(&created.ID, &created.WorkspaceID, &created.Name, &created.Color, &created.CreatedBy, &created.CreatedAt)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, WrapForeignKeyError(err, "workspace does not exist")
		}
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}

	return created, nil
}

func (s *Storage) GetTag(ctx context.Context, id string) (*types.Tag, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTag")
	defer span.End()

	t := new(types.Tag)
	err := s.db.Statement(ctx).
		Select("id", "workspace_id", "name", "color", "created_by", "created_at").
		From("tags").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.WorkspaceID, &t.Name, &t.Color, &t.CreatedBy, &t.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return t, nil
}

func (s *Storage) ListTagsByWorkspaceID(ctx context.Context, workspaceID string) ([]*types.Tag, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTagsByWorkspaceID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "workspace_id", "name", "color", "created_by", "created_at").
		From("tags").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("name").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]*types.Tag, 0)
	for rows.Next() {
		t := new(types.Tag)
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &t.Name, &t.Color, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tags, nil
}

// AssignTag links a tag to a task, it reports false when the link already existed
func (s *Storage) AssignTag(ctx context.Context, taskID, tagID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AssignTag")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Insert("task_tags").
		Columns("task_id", "tag_id").
		Values(taskID, tagID).
		Suffix("ON CONFLICT (task_id, tag_id) DO NOTHING").
		ExecContext(ctx)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return false, WrapForeignKeyError(err, "task or tag does not exist")
		}
		return false, fmt.Errorf("failed to assign tag: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows > 0, nil
}
