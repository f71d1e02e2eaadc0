// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/workspace-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_webhooks.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestService_HandleRegistration(t *testing.T) {
	identityID := "identity-123"
	email := "user@example.com"
	created := &types.Workspace{ID: "ws-123", Name: "user's Workspace", CreatedBy: identityID}

	testCases := []struct {
		name       string
		identityID string
		email      string
		setupMocks func(*MockWorkspaceInterface, *MockLoggerInterface)
		expected   *types.Workspace
		expectErr  error
		anyErr     bool
	}{
		{
			name:       "success",
			identityID: identityID,
			email:      email,
			setupMocks: func(mockWorkspaces *MockWorkspaceInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
				mockWorkspaces.EXPECT().ListWorkspaces(gomock.Any(), identityID).Return([]*types.WorkspaceWithRole{}, nil)
				mockWorkspaces.EXPECT().CreateWorkspace(gomock.Any(), identityID, "user's Workspace", "").Return(created, nil)
				mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expected: created,
		},
		{
			name:       "empty email",
			identityID: identityID,
			setupMocks: func(mockWorkspaces *MockWorkspaceInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectErr: ErrInvalidIdentity,
		},
		{
			name:  "empty identity",
			email: email,
			setupMocks: func(mockWorkspaces *MockWorkspaceInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectErr: ErrInvalidIdentity,
		},
		{
			name:       "redelivered hook is skipped",
			identityID: identityID,
			email:      email,
			setupMocks: func(mockWorkspaces *MockWorkspaceInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
				mockWorkspaces.EXPECT().ListWorkspaces(gomock.Any(), identityID).Return(
					[]*types.WorkspaceWithRole{{Workspace: *created, Role: types.RoleAdmin}}, nil,
				)
			},
		},
		{
			name:       "list error",
			identityID: identityID,
			email:      email,
			setupMocks: func(mockWorkspaces *MockWorkspaceInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
				mockWorkspaces.EXPECT().ListWorkspaces(gomock.Any(), identityID).Return(nil, errors.New("db error"))
			},
			anyErr: true,
		},
		{
			name:       "create error",
			identityID: identityID,
			email:      email,
			setupMocks: func(mockWorkspaces *MockWorkspaceInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
				mockWorkspaces.EXPECT().ListWorkspaces(gomock.Any(), identityID).Return(nil, nil)
				mockWorkspaces.EXPECT().CreateWorkspace(gomock.Any(), identityID, gomock.Any(), "").Return(nil, errors.New("create failed"))
			},
			anyErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockWorkspaces := NewMockWorkspaceInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "webhooks.Service.HandleRegistration").Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockWorkspaces, mockLogger)

			s := NewService(mockWorkspaces, mockTracer, mockMonitor, mockLogger)
			w, err := s.HandleRegistration(context.Background(), tc.identityID, tc.email)

			switch {
			case tc.expectErr != nil:
				if !errors.Is(err, tc.expectErr) {
					t.Fatalf("expected error %v, got %v", tc.expectErr, err)
				}
			case tc.anyErr:
				if err == nil {
					t.Fatal("expected error, got nil")
				}
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			}

			if w != tc.expected {
				t.Errorf("expected workspace %v, got %v", tc.expected, w)
			}
		})
	}
}

func TestPersonalWorkspaceName(t *testing.T) {
	for email, expected := range map[string]string{
		"jane@example.com": "jane's Workspace",
		"no-domain":        "no-domain's Workspace",
	} {
		if got := personalWorkspaceName(email); got != expected {
			t.Errorf("%s: expected %q, got %q", email, expected, got)
		}
	}
}
