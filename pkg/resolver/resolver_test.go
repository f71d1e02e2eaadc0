// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/workspace-service/internal/storage"
	"github.com/canonical/workspace-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package resolver -destination ./mock_resolver.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package resolver -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package resolver -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package resolver -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestResolver(t *testing.T) {
	dbErr := errors.New("db error")

	testCases := []struct {
		name        string
		span        string
		setupMocks  func(*MockStorageInterface, *MockLoggerInterface)
		call        func(*Resolver) (string, error)
		expected    string
		expectedErr error
	}{
		{
			name: "task resolves through its project",
			span: "resolver.Resolver.WorkspaceOfTask",
			setupMocks: func(s *MockStorageInterface, l *MockLoggerInterface) {
				s.EXPECT().GetTaskWorkspaceID(gomock.Any(), "task-1").Return("ws-1", nil)
			},
			call:     func(r *Resolver) (string, error) { return r.WorkspaceOfTask(context.Background(), "task-1") },
			expected: "ws-1",
		},
		{
			name: "missing task",
			span: "resolver.Resolver.WorkspaceOfTask",
			setupMocks: func(s *MockStorageInterface, l *MockLoggerInterface) {
				s.EXPECT().GetTaskWorkspaceID(gomock.Any(), "task-1").Return("", storage.ErrNotFound)
				l.EXPECT().Debugf(gomock.Any(), gomock.Any())
			},
			call:        func(r *Resolver) (string, error) { return r.WorkspaceOfTask(context.Background(), "task-1") },
			expectedErr: ErrNotFound,
		},
		{
			name: "task lookup failure",
			span: "resolver.Resolver.WorkspaceOfTask",
			setupMocks: func(s *MockStorageInterface, l *MockLoggerInterface) {
				s.EXPECT().GetTaskWorkspaceID(gomock.Any(), "task-1").Return("", dbErr)
			},
			call:        func(r *Resolver) (string, error) { return r.WorkspaceOfTask(context.Background(), "task-1") },
			expectedErr: dbErr,
		},
		{
			name: "tag",
			span: "resolver.Resolver.WorkspaceOfTag",
			setupMocks: func(s *MockStorageInterface, l *MockLoggerInterface) {
				s.EXPECT().GetTag(gomock.Any(), "tag-1").Return(&types.Tag{ID: "tag-1", WorkspaceID: "ws-2"}, nil)
			},
			call:     func(r *Resolver) (string, error) { return r.WorkspaceOfTag(context.Background(), "tag-1") },
			expected: "ws-2",
		},
		{
			name: "missing tag",
			span: "resolver.Resolver.WorkspaceOfTag",
			setupMocks: func(s *MockStorageInterface, l *MockLoggerInterface) {
				s.EXPECT().GetTag(gomock.Any(), "tag-1").Return(nil, storage.ErrNotFound)
				l.EXPECT().Debugf(gomock.Any(), gomock.Any())
			},
			call:        func(r *Resolver) (string, error) { return r.WorkspaceOfTag(context.Background(), "tag-1") },
			expectedErr: ErrNotFound,
		},
		{
			name: "project",
			span: "resolver.Resolver.WorkspaceOfProject",
			setupMocks: func(s *MockStorageInterface, l *MockLoggerInterface) {
				s.EXPECT().GetProject(gomock.Any(), "p-1").Return(&types.Project{ID: "p-1", WorkspaceID: "ws-3"}, nil)
			},
			call:     func(r *Resolver) (string, error) { return r.WorkspaceOfProject(context.Background(), "p-1") },
			expected: "ws-3",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)

			r := NewResolver(mockStorage, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), tc.span).Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockStorage, mockLogger)

			workspaceID, err := tc.call(r)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected error %v, got %v", tc.expectedErr, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if workspaceID != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, workspaceID)
			}
		})
	}
}
