// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonical/workspace-service/internal/db"
	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

var workspaceColumns = []string{"id", "name", "description", "created_by", "created_at", "updated_at"}

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

// isNoRows matches both database/sql and native pgx empty results
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func scanWorkspace(row sq.RowScanner, w *types.Workspace, extra ...any) error {
	dest := append([]any{&w.ID, &w.Name, &w.Description, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt}, extra...)
	return row.Scan(dest...)
}

func (s *Storage) CreateWorkspace(ctx context.Context, w *types.Workspace) (*types.Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateWorkspace")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workspace ID: %w", err)
	}

	created := new(types.Workspace)
	err = scanWorkspace(
		s.db.Statement(ctx).
			Insert("workspaces").
			Columns("id", "name", "description", "created_by").
			Values(id, w.Name, w.Description, w.CreatedBy).
			Suffix("RETURNING id, name, description, created_by, created_at, updated_at").
			QueryRowContext(ctx),
		created,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to insert workspace: %w", err)
	}

	return created, nil
}

func (s *Storage) GetWorkspace(ctx context.Context, id string) (*types.Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetWorkspace")
	defer span.End()

	w := new(types.Workspace)
	err := scanWorkspace(
		s.db.Statement(ctx).
			Select(workspaceColumns...).
			From("workspaces").
			Where(sq.Eq{"id": id}).
			QueryRowContext(ctx),
		w,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	return w, nil
}

// UpdateWorkspace applies the non-nil fields of patch, an empty patch only reads the row back
func (s *Storage) UpdateWorkspace(ctx context.Context, id string, patch *types.WorkspacePatch) (*types.Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateWorkspace")
	defer span.End()

	if patch.IsEmpty() {
		return s.GetWorkspace(ctx, id)
	}

	query := s.db.Statement(ctx).
		Update("workspaces").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, name, description, created_by, created_at, updated_at")

	if patch.Name != nil {
		query = query.Set("name", *patch.Name)
	}
	if patch.Description != nil {
		query = query.Set("description", *patch.Description)
	}

	w := new(types.Workspace)
	if err := scanWorkspace(query.QueryRowContext(ctx), w); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	return w, nil
}

// DeleteWorkspace removes the workspace, memberships and content go with it through ON DELETE CASCADE
func (s *Storage) DeleteWorkspace(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteWorkspace")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("workspaces").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) ListWorkspacesByUserID(ctx context.Context, userID string) ([]*types.WorkspaceWithRole, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListWorkspacesByUserID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("w.id", "w.name", "w.description", "w.created_by", "w.created_at", "w.updated_at", "m.role").
		From("workspaces w").
		Join("memberships m ON w.id = m.workspace_id").
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("w.created_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := make([]*types.WorkspaceWithRole, 0)
	for rows.Next() {
		w := new(types.WorkspaceWithRole)
		if err := scanWorkspace(rows, &w.Workspace, &w.Role); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return workspaces, nil
}
