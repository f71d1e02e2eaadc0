// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
)

func newTestClient(t *testing.T) (*DBClient, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := logging.NewNoopLogger()
	return NewDBClientWithDB(sqlDB, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger), mock
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	client, mock := newTestClient(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO workspaces").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO memberships").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := client.WithTx(context.Background(), func(ctx context.Context) error {
		if _, err := client.Statement(ctx).Insert("workspaces").Columns("id").Values("ws-1").ExecContext(ctx); err != nil {
			return err
		}
		_, err := client.Statement(ctx).Insert("memberships").Columns("id").Values("m-1").ExecContext(ctx)
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client, mock := newTestClient(t)
	failure := errors.New("membership insert failed")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO workspaces").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO memberships").WillReturnError(failure)
	mock.ExpectRollback()

	err := client.WithTx(context.Background(), func(ctx context.Context) error {
		if _, err := client.Statement(ctx).Insert("workspaces").Columns("id").Values("ws-1").ExecContext(ctx); err != nil {
			return err
		}
		_, err := client.Statement(ctx).Insert("memberships").Columns("id").Values("m-1").ExecContext(ctx)
		return err
	})

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxWithoutStatementsDoesNotBegin(t *testing.T) {
	client, mock := newTestClient(t)

	err := client.WithTx(context.Background(), func(ctx context.Context) error {
		return nil
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxNestedJoinsOuterUnit(t *testing.T) {
	client, mock := newTestClient(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM memberships").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := client.WithTx(context.Background(), func(ctx context.Context) error {
		return client.WithTx(ctx, func(inner context.Context) error {
			_, err := client.Statement(inner).Delete("memberships").Where("id = ?", "m-1").ExecContext(inner)
			return err
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementFailsWhenBeginFails(t *testing.T) {
	client, mock := newTestClient(t)
	failure := errors.New("too many connections")

	mock.ExpectBegin().WillReturnError(failure)

	err := client.WithTx(context.Background(), func(ctx context.Context) error {
		var id string
		return client.Statement(ctx).
			Select("id").
			From("workspaces").
			QueryRowContext(ctx).
			Scan(&id)
	})

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementOutsideTx(t *testing.T) {
	client, mock := newTestClient(t)

	mock.ExpectQuery("SELECT name FROM workspaces WHERE id = \\$1").
		WithArgs("ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Sprint Planning"))

	var name string
	err := client.Statement(context.Background()).
		Select("name").
		From("workspaces").
		Where("id = ?", "ws-1").
		QueryRowContext(context.Background()).
		Scan(&name)

	require.NoError(t, err)
	assert.Equal(t, "Sprint Planning", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	client, mock := newTestClient(t)

	mock.ExpectPing()
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, client.Ping(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
