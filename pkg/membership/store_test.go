// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package membership

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/workspace-service/internal/storage"
	"github.com/canonical/workspace-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package membership -destination ./mock_membership.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package membership -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package membership -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package membership -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func setupStore(t *testing.T, span string) (*Store, *MockStorageInterface) {
	ctrl := gomock.NewController(t)

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), span).Return(context.Background(), trace.SpanFromContext(context.Background()))

	return NewStore(mockStorage, mockTracer, mockMonitor, mockLogger), mockStorage
}

func TestStore_GetRole(t *testing.T) {
	dbErr := errors.New("db error")

	testCases := []struct {
		name         string
		setupMocks   func(*MockStorageInterface)
		expectedRole types.Role
		expectedErr  error
	}{
		{
			name: "member",
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().GetMembershipRole(gomock.Any(), "user-1", "ws-1").Return(types.RoleMember, nil)
			},
			expectedRole: types.RoleMember,
		},
		{
			name: "not a member",
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().GetMembershipRole(gomock.Any(), "user-1", "ws-1").Return(types.RoleNone, storage.ErrNotFound)
			},
			expectedRole: types.RoleNone,
		},
		{
			name: "storage error",
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().GetMembershipRole(gomock.Any(), "user-1", "ws-1").Return(types.RoleNone, dbErr)
			},
			expectedRole: types.RoleNone,
			expectedErr:  dbErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage := setupStore(t, "membership.Store.GetRole")
			tc.setupMocks(mockStorage)

			role, err := s.GetRole(context.Background(), "user-1", "ws-1")

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if role != tc.expectedRole {
				t.Errorf("expected role %s, got %s", tc.expectedRole, role)
			}
		})
	}
}

func TestStore_AddMember(t *testing.T) {
	membership := &types.Membership{ID: "m-1", WorkspaceID: "ws-1", UserID: "user-1", Role: types.RoleViewer}

	testCases := []struct {
		name        string
		role        types.Role
		setupMocks  func(*MockStorageInterface)
		expected    *types.Membership
		expectedErr error
	}{
		{
			name: "success",
			role: types.RoleViewer,
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().AddMembership(gomock.Any(), "ws-1", "user-1", types.RoleViewer).Return(membership, nil)
			},
			expected: membership,
		},
		{
			name: "already a member",
			role: types.RoleViewer,
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().AddMembership(gomock.Any(), "ws-1", "user-1", types.RoleViewer).
					Return(nil, fmt.Errorf("membership already exists: %w", storage.ErrDuplicateKey))
			},
			expectedErr: ErrConflict,
		},
		{
			name:        "no role",
			role:        types.RoleNone,
			setupMocks:  func(s *MockStorageInterface) {},
			expectedErr: ErrInvalidRole,
		},
		{
			name: "missing workspace",
			role: types.RoleAdmin,
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().AddMembership(gomock.Any(), "ws-1", "user-1", types.RoleAdmin).
					Return(nil, fmt.Errorf("workspace does not exist: %w", storage.ErrForeignKeyViolation))
			},
			expectedErr: storage.ErrForeignKeyViolation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage := setupStore(t, "membership.Store.AddMember")
			tc.setupMocks(mockStorage)

			m, err := s.AddMember(context.Background(), "ws-1", "user-1", tc.role)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if m != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, m)
			}
		})
	}
}

func TestStore_RemoveMember(t *testing.T) {
	dbErr := errors.New("db error")

	testCases := []struct {
		name        string
		storageErr  error
		expected    bool
		expectedErr error
	}{
		{name: "removed", expected: true},
		{name: "no such membership", storageErr: storage.ErrNotFound, expected: false},
		{name: "storage error", storageErr: dbErr, expected: false, expectedErr: dbErr},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage := setupStore(t, "membership.Store.RemoveMember")
			mockStorage.EXPECT().RemoveMembership(gomock.Any(), "ws-1", "user-1").Return(tc.storageErr)

			removed, err := s.RemoveMember(context.Background(), "ws-1", "user-1")

			if !errors.Is(err, tc.expectedErr) {
				t.Errorf("expected error %v, got %v", tc.expectedErr, err)
			}
			if removed != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, removed)
			}
		})
	}
}

func TestStore_CountAdmins(t *testing.T) {
	s, mockStorage := setupStore(t, "membership.Store.CountAdmins")
	mockStorage.EXPECT().ListMemberships(gomock.Any(), "ws-1").Return([]*types.Membership{
		{UserID: "a", Role: types.RoleAdmin},
		{UserID: "b", Role: types.RoleMember},
		{UserID: "c", Role: types.RoleAdmin},
		{UserID: "d", Role: types.RoleViewer},
	}, nil)

	count, err := s.CountAdmins(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 admins, got %d", count)
	}
}

func TestStore_CountByRole(t *testing.T) {
	s, mockStorage := setupStore(t, "membership.Store.CountByRole")
	mockStorage.EXPECT().CountMembershipsByRole(gomock.Any(), "user-1").Return(map[types.Role]int{types.RoleAdmin: 3}, nil)

	counts, err := s.CountByRole(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := map[types.Role]int{types.RoleAdmin: 3, types.RoleMember: 0, types.RoleViewer: 0}
	for role, n := range expected {
		if counts[role] != n {
			t.Errorf("expected %d for %s, got %d", n, role, counts[role])
		}
	}
}

func TestStore_LockAdmins(t *testing.T) {
	s, mockStorage := setupStore(t, "membership.Store.LockAdmins")
	mockStorage.EXPECT().LockAdminIDs(gomock.Any(), "ws-1").Return([]string{"a"}, nil)

	ids, err := s.LockAdmins(context.Background(), "ws-1")
	if err != nil || len(ids) != 1 || ids[0] != "a" {
		t.Errorf("unexpected result %v, %v", ids, err)
	}
}
