// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/workspace-service/internal/types"
)

func (s *Storage) AddMembership(ctx context.Context, workspaceID, userID string, role types.Role) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AddMembership")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate membership ID: %w", err)
	}

	m := new(types.Membership)
	err = s.db.Statement(ctx).
		Insert("memberships").
		Columns("id", "workspace_id", "user_id", "role").
		Values(id, workspaceID, userID, role).
		Suffix("RETURNING id, workspace_id, user_id, role, joined_at").
		QueryRowContext(ctx).
		Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateKeyError(err, "membership already exists")
		}
		if IsForeignKeyViolation(err) {
			return nil, WrapForeignKeyError(err, "workspace does not exist")
		}
		return nil, fmt.Errorf("failed to add membership: %w", err)
	}

	return m, nil
}

// GetMembershipRole returns ErrNotFound when the user holds no membership in the workspace
func (s *Storage) GetMembershipRole(ctx context.Context, userID, workspaceID string) (types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetMembershipRole")
	defer span.End()

	var role types.Role
	err := s.db.Statement(ctx).
		Select("role").
		From("memberships").
		Where(sq.Eq{"user_id": userID, "workspace_id": workspaceID}).
		QueryRowContext(ctx).
		Scan(&role)

	if err != nil {
		if isNoRows(err) {
			return types.RoleNone, ErrNotFound
		}
		return types.RoleNone, fmt.Errorf("failed to get membership role: %w", err)
	}

	return role, nil
}

func (s *Storage) RemoveMembership(ctx context.Context, workspaceID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.RemoveMembership")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("memberships").
		Where(sq.Eq{"workspace_id": workspaceID, "user_id": userID}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
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

func (s *Storage) ListMemberships(ctx context.Context, workspaceID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListMemberships")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "workspace_id", "user_id", "role", "joined_at").
		From("memberships").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("joined_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	members := make([]*types.Membership, 0)
	for rows.Next() {
		m := new(types.Membership)
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}

func (s *Storage) CountMembershipsByRole(ctx context.Context, userID string) (map[types.Role]int, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CountMembershipsByRole")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("role", "COUNT(*)").
		From("memberships").
		Where(sq.Eq{"user_id": userID}).
		GroupBy("role").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count memberships: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Role]int)
	for rows.Next() {
		var role types.Role
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("failed to scan membership count: %w", err)
		}
		counts[role] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return counts, nil
}

// LockAdminIDs returns the admins of a workspace holding row locks on them,
// it only serializes concurrent removals when called inside a unit of work
func (s *Storage) LockAdminIDs(ctx context.Context, workspaceID string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.LockAdminIDs")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("user_id").
		From("memberships").
		Where(sq.Eq{"workspace_id": workspaceID, "role": types.RoleAdmin}).
		Suffix("FOR UPDATE").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock admins: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return ids, nil
}
