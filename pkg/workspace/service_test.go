// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/workspace-service/internal/authorization"
	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/storage"
	"github.com/canonical/workspace-service/internal/types"
	"github.com/canonical/workspace-service/pkg/membership"
	"github.com/canonical/workspace-service/pkg/notifications"
	"github.com/canonical/workspace-service/pkg/resolver"
)

//go:generate mockgen -build_flags=--mod=mod -package workspace -destination ./mock_workspace.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package workspace -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package workspace -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package workspace -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

type mocks struct {
	storage   *MockStorageInterface
	members   *MockMembershipInterface
	authz     *MockAuthorizerInterface
	resolver  *MockResolverInterface
	directory *MockDirectoryInterface
	notifier  *MockNotifierInterface
	tx        *MockTxInterface
	tracer    *MockTracingInterface
	monitor   *MockMonitorInterface
	logger    *MockLoggerInterface
}

func newMocks(ctrl *gomock.Controller, span string) *mocks {
	m := &mocks{
		storage:   NewMockStorageInterface(ctrl),
		members:   NewMockMembershipInterface(ctrl),
		authz:     NewMockAuthorizerInterface(ctrl),
		resolver:  NewMockResolverInterface(ctrl),
		directory: NewMockDirectoryInterface(ctrl),
		notifier:  NewMockNotifierInterface(ctrl),
		tx:        NewMockTxInterface(ctrl),
		tracer:    NewMockTracingInterface(ctrl),
		monitor:   NewMockMonitorInterface(ctrl),
		logger:    NewMockLoggerInterface(ctrl),
	}

	m.tracer.EXPECT().Start(gomock.Any(), span).Return(context.Background(), trace.SpanFromContext(context.Background()))
	m.logger.EXPECT().Security().Return(logging.NewNoopLogger().Security()).AnyTimes()
	m.logger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	m.logger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()
	m.logger.EXPECT().Warnf(gomock.Any(), gomock.Any()).AnyTimes()
	m.logger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

	return m
}

func (m *mocks) service() *Service {
	return NewService(m.storage, m.members, m.authz, m.resolver, m.directory, m.notifier, m.tx, m.tracer, m.monitor, m.logger)
}

func (m *mocks) runTx() {
	m.tx.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	)
}

func checkErr(t *testing.T, expected, err error) {
	t.Helper()

	if expected != nil {
		if !errors.Is(err, expected) {
			t.Errorf("expected error %v, got %v", expected, err)
		}
	} else if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_CreateWorkspace(t *testing.T) {
	creator := &types.User{ID: "user-1", Email: "one@example.com", Name: "One"}
	workspace := &types.Workspace{ID: "ws-1", Name: "Sprint Planning", CreatedBy: "user-1"}
	dbErr := errors.New("db error")

	testCases := []struct {
		name        string
		wsName      string
		setupMocks  func(*mocks)
		expected    *types.Workspace
		expectedErr error
	}{
		{
			name:   "creator becomes admin",
			wsName: "Sprint Planning",
			setupMocks: func(m *mocks) {
				m.directory.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(creator, nil)
				m.runTx()
				m.storage.EXPECT().CreateWorkspace(gomock.Any(), &types.Workspace{Name: "Sprint Planning", Description: "Q3", CreatedBy: "user-1"}).Return(workspace, nil)
				m.members.EXPECT().AddMember(gomock.Any(), "ws-1", "user-1", types.RoleAdmin).Return(&types.Membership{Role: types.RoleAdmin}, nil)
			},
			expected: workspace,
		},
		{
			name:        "empty name",
			wsName:      "",
			setupMocks:  func(m *mocks) {},
			expectedErr: ErrInvalidWorkspace,
		},
		{
			name:        "name too long",
			wsName:      strings.Repeat("x", 101),
			setupMocks:  func(m *mocks) {},
			expectedErr: ErrInvalidWorkspace,
		},
		{
			name:   "unknown creator",
			wsName: "Sprint Planning",
			setupMocks: func(m *mocks) {
				m.directory.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(nil, nil)
			},
			expectedErr: ErrUserNotFound,
		},
		{
			name:   "directory failure",
			wsName: "Sprint Planning",
			setupMocks: func(m *mocks) {
				m.directory.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(nil, dbErr)
			},
			expectedErr: dbErr,
		},
		{
			name:   "workspace insert fails",
			wsName: "Sprint Planning",
			setupMocks: func(m *mocks) {
				m.directory.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(creator, nil)
				m.runTx()
				m.storage.EXPECT().CreateWorkspace(gomock.Any(), gomock.Any()).Return(nil, dbErr)
			},
			expectedErr: ErrCreateWorkspace,
		},
		{
			name:   "admin membership insert fails",
			wsName: "Sprint Planning",
			setupMocks: func(m *mocks) {
				m.directory.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(creator, nil)
				m.runTx()
				m.storage.EXPECT().CreateWorkspace(gomock.Any(), gomock.Any()).Return(workspace, nil)
				m.members.EXPECT().AddMember(gomock.Any(), "ws-1", "user-1", types.RoleAdmin).Return(nil, dbErr)
			},
			expectedErr: ErrCreateWorkspace,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl, "workspace.Service.CreateWorkspace")
			tc.setupMocks(m)

			w, err := m.service().CreateWorkspace(context.Background(), "user-1", tc.wsName, "Q3")

			checkErr(t, tc.expectedErr, err)

			if w != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, w)
			}
		})
	}
}

func TestService_GetWorkspace(t *testing.T) {
	workspace := &types.Workspace{ID: "ws-1", Name: "Sprint Planning"}

	testCases := []struct {
		name         string
		setupMocks   func(*mocks)
		expectedRole types.Role
		expectNil    bool
	}{
		{
			name: "member sees workspace with role",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-2", "ws-1", authorization.ReadWorkspace).Return(true, nil)
				m.members.EXPECT().GetRole(gomock.Any(), "user-2", "ws-1").Return(types.RoleViewer, nil)
				m.storage.EXPECT().GetWorkspace(gomock.Any(), "ws-1").Return(workspace, nil)
			},
			expectedRole: types.RoleViewer,
		},
		{
			name: "non member",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-2", "ws-1", authorization.ReadWorkspace).Return(false, nil)
			},
			expectNil: true,
		},
		{
			name: "missing workspace",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-2", "ws-1", authorization.ReadWorkspace).Return(true, nil)
				m.members.EXPECT().GetRole(gomock.Any(), "user-2", "ws-1").Return(types.RoleAdmin, nil)
				m.storage.EXPECT().GetWorkspace(gomock.Any(), "ws-1").Return(nil, storage.ErrNotFound)
			},
			expectNil: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl, "workspace.Service.GetWorkspace")
			tc.setupMocks(m)

			w, err := m.service().GetWorkspace(context.Background(), "user-2", "ws-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tc.expectNil {
				if w != nil {
					t.Errorf("expected nil, got %v", w)
				}
				return
			}

			if w == nil || w.Role != tc.expectedRole || w.Name != "Sprint Planning" {
				t.Errorf("unexpected workspace %+v", w)
			}
		})
	}
}

func TestService_UpdateWorkspace(t *testing.T) {
	name := "Renamed"
	empty := ""
	updated := &types.Workspace{ID: "ws-1", Name: name}

	testCases := []struct {
		name        string
		patch       *types.WorkspacePatch
		setupMocks  func(*mocks)
		expected    *types.Workspace
		expectedErr error
	}{
		{
			name:  "admin renames",
			patch: &types.WorkspacePatch{Name: &name},
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.UpdateWorkspace).Return(true, nil)
				m.storage.EXPECT().UpdateWorkspace(gomock.Any(), "ws-1", &types.WorkspacePatch{Name: &name}).Return(updated, nil)
			},
			expected: updated,
		},
		{
			name:  "member is denied",
			patch: &types.WorkspacePatch{Name: &name},
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.UpdateWorkspace).Return(false, nil)
			},
		},
		{
			name:  "blank name is rejected",
			patch: &types.WorkspacePatch{Name: &empty},
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.UpdateWorkspace).Return(true, nil)
			},
			expectedErr: ErrInvalidWorkspace,
		},
		{
			name:  "missing workspace",
			patch: &types.WorkspacePatch{Name: &name},
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.UpdateWorkspace).Return(true, nil)
				m.storage.EXPECT().UpdateWorkspace(gomock.Any(), "ws-1", gomock.Any()).Return(nil, storage.ErrNotFound)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl, "workspace.Service.UpdateWorkspace")
			tc.setupMocks(m)

			w, err := m.service().UpdateWorkspace(context.Background(), "user-1", "ws-1", tc.patch)

			checkErr(t, tc.expectedErr, err)

			if w != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, w)
			}
		})
	}
}

func TestService_DeleteWorkspace(t *testing.T) {
	dbErr := errors.New("db error")

	testCases := []struct {
		name        string
		setupMocks  func(*mocks)
		expected    bool
		expectedErr error
	}{
		{
			name: "admin deletes",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.DeleteWorkspace).Return(true, nil)
				m.storage.EXPECT().DeleteWorkspace(gomock.Any(), "ws-1").Return(nil)
			},
			expected: true,
		},
		{
			name: "member is denied",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.DeleteWorkspace).Return(false, nil)
			},
		},
		{
			name: "already gone",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.DeleteWorkspace).Return(true, nil)
				m.storage.EXPECT().DeleteWorkspace(gomock.Any(), "ws-1").Return(storage.ErrNotFound)
			},
		},
		{
			name: "authorization failure",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.DeleteWorkspace).Return(false, dbErr)
			},
			expectedErr: dbErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl, "workspace.Service.DeleteWorkspace")
			tc.setupMocks(m)

			deleted, err := m.service().DeleteWorkspace(context.Background(), "user-1", "ws-1")

			checkErr(t, tc.expectedErr, err)

			if deleted != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, deleted)
			}
		})
	}
}

func TestService_AddMember(t *testing.T) {
	target := &types.User{ID: "user-2", Email: "two@example.com"}
	workspace := &types.Workspace{ID: "ws-1", Name: "Sprint Planning"}
	dbErr := errors.New("db error")

	testCases := []struct {
		name        string
		role        types.Role
		setupMocks  func(*mocks)
		expected    bool
		expectedErr error
	}{
		{
			name: "admin adds member and target is notified",
			role: types.RoleMember,
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.AddMember).Return(true, nil)
				m.directory.EXPECT().GetUserByEmail(gomock.Any(), "two@example.com").Return(target, nil)
				m.members.EXPECT().GetRole(gomock.Any(), "user-2", "ws-1").Return(types.RoleNone, nil)
				m.storage.EXPECT().GetWorkspace(gomock.Any(), "ws-1").Return(workspace, nil)
				m.members.EXPECT().AddMember(gomock.Any(), "ws-1", "user-2", types.RoleMember).Return(&types.Membership{}, nil)
				m.notifier.EXPECT().Notify(
					gomock.Any(),
					"user-2",
					notifications.EventUserAddedToWorkspace,
					"You have been added to the workspace 'Sprint Planning'.",
				)
			},
			expected: true,
		},
		{
			name: "viewer is denied",
			role: types.RoleMember,
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.AddMember).Return(false, nil)
			},
		},
		{
			name:       "role must be assignable",
			role:       types.RoleNone,
			setupMocks: func(m *mocks) {},
		},
		{
			name: "unknown email",
			role: types.RoleMember,
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.AddMember).Return(true, nil)
				m.directory.EXPECT().GetUserByEmail(gomock.Any(), "two@example.com").Return(nil, nil)
			},
		},
		{
			name: "already a member",
			role: types.RoleAdmin,
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.AddMember).Return(true, nil)
				m.directory.EXPECT().GetUserByEmail(gomock.Any(), "two@example.com").Return(target, nil)
				m.members.EXPECT().GetRole(gomock.Any(), "user-2", "ws-1").Return(types.RoleViewer, nil)
			},
		},
		{
			name: "concurrent add loses the race",
			role: types.RoleMember,
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.AddMember).Return(true, nil)
				m.directory.EXPECT().GetUserByEmail(gomock.Any(), "two@example.com").Return(target, nil)
				m.members.EXPECT().GetRole(gomock.Any(), "user-2", "ws-1").Return(types.RoleNone, nil)
				m.storage.EXPECT().GetWorkspace(gomock.Any(), "ws-1").Return(workspace, nil)
				m.members.EXPECT().AddMember(gomock.Any(), "ws-1", "user-2", types.RoleMember).
					Return(nil, fmt.Errorf("user-2: %w", membership.ErrConflict))
			},
		},
		{
			name: "membership write fails",
			role: types.RoleMember,
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.AddMember).Return(true, nil)
				m.directory.EXPECT().GetUserByEmail(gomock.Any(), "two@example.com").Return(target, nil)
				m.members.EXPECT().GetRole(gomock.Any(), "user-2", "ws-1").Return(types.RoleNone, nil)
				m.storage.EXPECT().GetWorkspace(gomock.Any(), "ws-1").Return(workspace, nil)
				m.members.EXPECT().AddMember(gomock.Any(), "ws-1", "user-2", types.RoleMember).Return(nil, dbErr)
			},
			expectedErr: dbErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl, "workspace.Service.AddMember")
			tc.setupMocks(m)

			added, err := m.service().AddMember(context.Background(), "user-1", "ws-1", "two@example.com", tc.role)

			checkErr(t, tc.expectedErr, err)

			if added != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, added)
			}
		})
	}
}

func TestService_RemoveMember(t *testing.T) {
	dbErr := errors.New("db error")

	testCases := []struct {
		name        string
		target      string
		setupMocks  func(*mocks)
		expected    bool
		expectedErr error
	}{
		{
			name:   "admin removes member",
			target: "user-2",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.RemoveMember).Return(true, nil)
				m.runTx()
				m.members.EXPECT().GetRole(gomock.Any(), "user-2", "ws-1").Return(types.RoleMember, nil)
				m.members.EXPECT().RemoveMember(gomock.Any(), "ws-1", "user-2").Return(true, nil)
			},
			expected: true,
		},
		{
			name:   "non existent membership",
			target: "user-9",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.RemoveMember).Return(true, nil)
				m.runTx()
				m.members.EXPECT().GetRole(gomock.Any(), "user-9", "ws-1").Return(types.RoleNone, nil)
			},
		},
		{
			name:   "last admin stays",
			target: "user-1",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.RemoveMember).Return(true, nil)
				m.runTx()
				m.members.EXPECT().GetRole(gomock.Any(), "user-1", "ws-1").Return(types.RoleAdmin, nil)
				m.members.EXPECT().LockAdmins(gomock.Any(), "ws-1").Return([]string{"user-1"}, nil)
			},
		},
		{
			name:   "one of several admins",
			target: "user-3",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.RemoveMember).Return(true, nil)
				m.runTx()
				m.members.EXPECT().GetRole(gomock.Any(), "user-3", "ws-1").Return(types.RoleAdmin, nil)
				m.members.EXPECT().LockAdmins(gomock.Any(), "ws-1").Return([]string{"user-1", "user-3"}, nil)
				m.members.EXPECT().RemoveMember(gomock.Any(), "ws-1", "user-3").Return(true, nil)
			},
			expected: true,
		},
		{
			name:   "member is denied",
			target: "user-2",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.RemoveMember).Return(false, nil)
			},
		},
		{
			name:   "storage failure",
			target: "user-2",
			setupMocks: func(m *mocks) {
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.RemoveMember).Return(true, nil)
				m.runTx()
				m.members.EXPECT().GetRole(gomock.Any(), "user-2", "ws-1").Return(types.RoleMember, nil)
				m.members.EXPECT().RemoveMember(gomock.Any(), "ws-1", "user-2").Return(false, dbErr)
			},
			expectedErr: dbErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl, "workspace.Service.RemoveMember")
			tc.setupMocks(m)

			removed, err := m.service().RemoveMember(context.Background(), "user-1", "ws-1", tc.target)

			checkErr(t, tc.expectedErr, err)

			if removed != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, removed)
			}
		})
	}
}

func TestService_ListMembers(t *testing.T) {
	joined := time.Now()

	t.Run("members are enriched from the directory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newMocks(ctrl, "workspace.Service.ListMembers")
		m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.ReadMembers).Return(true, nil)
		m.members.EXPECT().ListMembers(gomock.Any(), "ws-1").Return([]*types.Membership{
			{UserID: "user-1", Role: types.RoleAdmin, JoinedAt: joined},
			{UserID: "user-2", Role: types.RoleViewer, JoinedAt: joined},
			{UserID: "user-3", Role: types.RoleMember, JoinedAt: joined},
		}, nil)
		m.directory.EXPECT().GetUserByID(gomock.Any(), "user-1").Return(&types.User{ID: "user-1", Name: "One", Email: "one@example.com"}, nil)
		m.directory.EXPECT().GetUserByID(gomock.Any(), "user-2").Return(nil, nil)
		m.directory.EXPECT().GetUserByID(gomock.Any(), "user-3").Return(nil, errors.New("timeout"))

		members, err := m.service().ListMembers(context.Background(), "user-1", "ws-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(members) != 3 {
			t.Fatalf("expected 3 members, got %d", len(members))
		}
		if members[0].Email != "one@example.com" || members[0].Role != types.RoleAdmin {
			t.Errorf("unexpected first member %+v", members[0])
		}
		if members[1].UserID != "user-2" || members[1].Email != "" {
			t.Errorf("unexpected second member %+v", members[1])
		}
	})

	t.Run("non member gets nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newMocks(ctrl, "workspace.Service.ListMembers")
		m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.ReadMembers).Return(false, nil)

		members, err := m.service().ListMembers(context.Background(), "user-1", "ws-1")
		if err != nil || members != nil {
			t.Errorf("expected nil, got %v, %v", members, err)
		}
	})
}

func TestService_IsWorkspaceAdmin(t *testing.T) {
	for role, expected := range map[types.Role]bool{
		types.RoleAdmin:  true,
		types.RoleMember: false,
		types.RoleViewer: false,
		types.RoleNone:   false,
	} {
		t.Run(role.String(), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl, "workspace.Service.IsWorkspaceAdmin")
			m.members.EXPECT().GetRole(gomock.Any(), "user-1", "ws-1").Return(role, nil)

			isAdmin, err := m.service().IsWorkspaceAdmin(context.Background(), "user-1", "ws-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if isAdmin != expected {
				t.Errorf("expected %v, got %v", expected, isAdmin)
			}
		})
	}
}

func TestService_HasAccessToTask(t *testing.T) {
	testCases := []struct {
		name       string
		setupMocks func(*mocks)
		expected   bool
	}{
		{
			name: "member of the owning workspace",
			setupMocks: func(m *mocks) {
				m.resolver.EXPECT().WorkspaceOfTask(gomock.Any(), "task-1").Return("ws-1", nil)
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.ReadWorkspace).Return(true, nil)
			},
			expected: true,
		},
		{
			name: "outsider",
			setupMocks: func(m *mocks) {
				m.resolver.EXPECT().WorkspaceOfTask(gomock.Any(), "task-1").Return("ws-1", nil)
				m.authz.EXPECT().Check(gomock.Any(), "user-1", "ws-1", authorization.ReadWorkspace).Return(false, nil)
			},
		},
		{
			name: "missing task",
			setupMocks: func(m *mocks) {
				m.resolver.EXPECT().WorkspaceOfTask(gomock.Any(), "task-1").Return("", fmt.Errorf("task task-1: %w", resolver.ErrNotFound))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl, "workspace.Service.HasAccessToTask")
			tc.setupMocks(m)

			ok, err := m.service().HasAccessToTask(context.Background(), "user-1", "task-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, ok)
			}
		})
	}
}

func TestService_CountWorkspacesByRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl, "workspace.Service.CountWorkspacesByRole")
	m.members.EXPECT().CountByRole(gomock.Any(), "user-1").Return(map[types.Role]int{types.RoleAdmin: 2, types.RoleViewer: 1}, nil)

	counts, err := m.service().CountWorkspacesByRole(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts[types.RoleAdmin] != 2 || counts[types.RoleViewer] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}
