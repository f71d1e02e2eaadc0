// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/workspace-service/internal/db"
	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
)

func newTestStorage(t *testing.T) (*Storage, *db.DBClient, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	client := db.NewDBClientWithDB(sqlDB, tracer, monitor, logger)

	return NewStorage(client, tracer, monitor, logger), client, mock
}

var workspaceRowColumns = []string{"id", "name", "description", "created_by", "created_at", "updated_at"}

func TestStorage_CreateWorkspace(t *testing.T) {
	s, _, mock := newTestStorage(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO workspaces (id,name,description,created_by) VALUES ($1,$2,$3,$4) RETURNING")).
		WithArgs(sqlmock.AnyArg(), "Sprint Planning", "Q3", "user-1").
		WillReturnRows(sqlmock.NewRows(workspaceRowColumns).AddRow("ws-1", "Sprint Planning", "Q3", "user-1", now, now))

	w, err := s.CreateWorkspace(context.Background(), &types.Workspace{Name: "Sprint Planning", Description: "Q3", CreatedBy: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, "ws-1", w.ID)
	assert.Equal(t, "user-1", w.CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetWorkspaceNotFound(t *testing.T) {
	s, _, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT id, name, description, created_by, created_at, updated_at FROM workspaces WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(workspaceRowColumns))

	w, err := s.GetWorkspace(context.Background(), "missing")

	assert.Nil(t, w)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_UpdateWorkspacePartial(t *testing.T) {
	s, _, mock := newTestStorage(t)
	now := time.Now()
	name := "Renamed"

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE workspaces SET updated_at = NOW(), name = $1 WHERE id = $2 RETURNING")).
		WithArgs("Renamed", "ws-1").
		WillReturnRows(sqlmock.NewRows(workspaceRowColumns).AddRow("ws-1", "Renamed", "kept", "user-1", now, now))

	w, err := s.UpdateWorkspace(context.Background(), "ws-1", &types.WorkspacePatch{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", w.Name)
	assert.Equal(t, "kept", w.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_UpdateWorkspaceEmptyPatchReads(t *testing.T) {
	s, _, mock := newTestStorage(t)
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM workspaces WHERE id = \\$1").
		WithArgs("ws-1").
		WillReturnRows(sqlmock.NewRows(workspaceRowColumns).AddRow("ws-1", "Name", "", "user-1", now, now))

	w, err := s.UpdateWorkspace(context.Background(), "ws-1", &types.WorkspacePatch{})

	require.NoError(t, err)
	assert.Equal(t, "Name", w.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_DeleteWorkspace(t *testing.T) {
	testCases := []struct {
		name        string
		affected    int64
		execErr     error
		expectedErr error
	}{
		{name: "deleted", affected: 1},
		{name: "not found", affected: 0, expectedErr: ErrNotFound},
		{name: "db error", execErr: errors.New("boom")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, _, mock := newTestStorage(t)

			exp := mock.ExpectExec("DELETE FROM workspaces WHERE id = \\$1").WithArgs("ws-1")
			if tc.execErr != nil {
				exp.WillReturnError(tc.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tc.affected))
			}

			err := s.DeleteWorkspace(context.Background(), "ws-1")

			switch {
			case tc.expectedErr != nil:
				assert.ErrorIs(t, err, tc.expectedErr)
			case tc.execErr != nil:
				assert.ErrorIs(t, err, tc.execErr)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStorage_ListWorkspacesByUserID(t *testing.T) {
	s, _, mock := newTestStorage(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM workspaces w JOIN memberships m ON w.id = m.workspace_id WHERE m.user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(
			sqlmock.NewRows(append(workspaceRowColumns, "role")).
				AddRow("ws-1", "A", "", "user-1", now, now, "admin").
				AddRow("ws-2", "B", "", "user-2", now, now, "viewer"),
		)

	workspaces, err := s.ListWorkspacesByUserID(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, workspaces, 2)
	assert.Equal(t, types.RoleAdmin, workspaces[0].Role)
	assert.Equal(t, types.RoleViewer, workspaces[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_AddMembershipDuplicate(t *testing.T) {
	s, _, mock := newTestStorage(t)

	mock.ExpectQuery("INSERT INTO memberships").
		WithArgs(sqlmock.AnyArg(), "ws-1", "user-2", "member").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	m, err := s.AddMembership(context.Background(), "ws-1", "user-2", types.RoleMember)

	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_AddMembershipMissingWorkspace(t *testing.T) {
	s, _, mock := newTestStorage(t)

	mock.ExpectQuery("INSERT INTO memberships").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := s.AddMembership(context.Background(), "ws-404", "user-2", types.RoleMember)

	assert.ErrorIs(t, err, ErrForeignKeyViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetMembershipRole(t *testing.T) {
	s, _, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT role FROM memberships WHERE user_id = \\$1 AND workspace_id = \\$2").
		WithArgs("user-1", "ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("viewer"))
	mock.ExpectQuery("SELECT role FROM memberships").
		WithArgs("user-9", "ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, err := s.GetMembershipRole(context.Background(), "user-1", "ws-1")
	require.NoError(t, err)
	assert.Equal(t, types.RoleViewer, role)

	role, err = s.GetMembershipRole(context.Background(), "user-9", "ws-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, types.RoleNone, role)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_RemoveMembershipNotFound(t *testing.T) {
	s, _, mock := newTestStorage(t)

	mock.ExpectExec("DELETE FROM memberships WHERE user_id = \\$1 AND workspace_id = \\$2").
		WithArgs("user-2", "ws-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.RemoveMembership(context.Background(), "ws-1", "user-2")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_CountMembershipsByRole(t *testing.T) {
	s, _, mock := newTestStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT role, COUNT(*) FROM memberships WHERE user_id = $1 GROUP BY role")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "count"}).AddRow("admin", 2).AddRow("viewer", 1))

	counts, err := s.CountMembershipsByRole(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, map[types.Role]int{types.RoleAdmin: 2, types.RoleViewer: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_LockAdminIDs(t *testing.T) {
	s, _, mock := newTestStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM memberships WHERE role = $1 AND workspace_id = $2 FOR UPDATE")).
		WithArgs("admin", "ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-1"))

	ids, err := s.LockAdminIDs(context.Background(), "ws-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetTaskWorkspaceID(t *testing.T) {
	s, _, mock := newTestStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT p.workspace_id FROM tasks t JOIN projects p ON t.project_id = p.id WHERE t.id = $1")).
		WithArgs("task-1").
		WillReturnRows(sqlmock.NewRows([]string{"workspace_id"}).AddRow("ws-1"))
	mock.ExpectQuery("SELECT p.workspace_id FROM tasks t").
		WithArgs("task-404").
		WillReturnRows(sqlmock.NewRows([]string{"workspace_id"}))

	id, err := s.GetTaskWorkspaceID(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, "ws-1", id)

	_, err = s.GetTaskWorkspaceID(context.Background(), "task-404")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_AssignTagIsIdempotent(t *testing.T) {
	s, _, mock := newTestStorage(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO task_tags (task_id,tag_id) VALUES ($1,$2) ON CONFLICT (task_id, tag_id) DO NOTHING")).
		WithArgs("task-1", "tag-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO task_tags").
		WithArgs("task-1", "tag-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := s.AssignTag(context.Background(), "task-1", "tag-1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.AssignTag(context.Background(), "task-1", "tag-1")
	require.NoError(t, err)
	assert.False(t, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ListNotificationsUnread(t *testing.T) {
	s, _, mock := newTestStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE user_id = $1 AND read = $2 ORDER BY created_at DESC")).
		WithArgs("user-2", false).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "user_id", "type", "message", "read", "created_at"}).
				AddRow("n-1", "user-2", "USER_ADDED_TO_WORKSPACE", "hi", false, time.Now()),
		)

	ns, err := s.ListNotifications(context.Background(), "user-2", true)

	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "USER_ADDED_TO_WORKSPACE", ns[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_CreateWorkspaceWithAdminRollsBack(t *testing.T) {
	s, client, mock := newTestStorage(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO workspaces").
		WillReturnRows(sqlmock.NewRows(workspaceRowColumns).AddRow("ws-1", "Sprint Planning", "", "user-1", now, now))
	mock.ExpectQuery("INSERT INTO memberships").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := client.WithTx(context.Background(), func(ctx context.Context) error {
		w, err := s.CreateWorkspace(ctx, &types.Workspace{Name: "Sprint Planning", CreatedBy: "user-1"})
		if err != nil {
			return err
		}
		_, err = s.AddMembership(ctx, w.ID, "user-1", types.RoleAdmin)
		return err
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
