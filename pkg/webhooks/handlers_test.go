// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/types"
	"github.com/canonical/workspace-service/pkg/workspace"
)

func TestAPI_Registration(t *testing.T) {
	identity := KratosIdentity{ID: "identity-123", Traits: KratosTraits{Email: "user@example.com"}}

	tests := []struct {
		name           string
		requestBody    interface{}
		authorization  string
		setupMocks     func(*MockServiceInterface, *MockLoggerInterface)
		expectedStatus int
		expectedID     string
	}{
		{
			name:          "success",
			requestBody:   identity,
			authorization: "secret",
			setupMocks: func(mockSvc *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockSvc.EXPECT().HandleRegistration(gomock.Any(), "identity-123", "user@example.com").Return(&types.Workspace{ID: "ws-1"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedID:     "ws-1",
		},
		{
			name:          "already provisioned",
			requestBody:   identity,
			authorization: "secret",
			setupMocks: func(mockSvc *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockSvc.EXPECT().HandleRegistration(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "wrong api key",
			requestBody:   identity,
			authorization: "guess",
			setupMocks: func(mockSvc *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Security().Return(logging.NewNoopLogger().Security())
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:          "invalid request body",
			requestBody:   "not-json",
			authorization: "secret",
			setupMocks: func(mockSvc *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:          "missing identity fields",
			requestBody:   KratosIdentity{ID: "identity-123"},
			authorization: "secret",
			setupMocks: func(mockSvc *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockSvc.EXPECT().HandleRegistration(gomock.Any(), "identity-123", "").Return(nil, ErrInvalidIdentity)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:          "identity unknown to the directory",
			requestBody:   identity,
			authorization: "secret",
			setupMocks: func(mockSvc *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockSvc.EXPECT().HandleRegistration(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("failed to provision workspace: %w", workspace.ErrUserNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:          "service error",
			requestBody:   identity,
			authorization: "secret",
			setupMocks: func(mockSvc *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockSvc.EXPECT().HandleRegistration(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("service error"))
				mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSvc := NewMockServiceInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			tt.setupMocks(mockSvc, mockLogger)

			router := chi.NewMux()
			NewAPI(mockSvc, "secret", mockLogger).RegisterEndpoints(router)

			var body []byte
			if s, ok := tt.requestBody.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v0/webhooks/registration", bytes.NewReader(body))
			req.Header.Set("Authorization", tt.authorization)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp RegistrationResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.WorkspaceID != tt.expectedID {
				t.Errorf("expected workspace %q, got %q", tt.expectedID, resp.WorkspaceID)
			}
		})
	}
}

func TestAPI_RegistrationWithoutAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockServiceInterface(ctrl)
	mockSvc.EXPECT().HandleRegistration(gomock.Any(), "identity-123", "user@example.com").Return(nil, nil)

	router := chi.NewMux()
	NewAPI(mockSvc, "", NewMockLoggerInterface(ctrl)).RegisterEndpoints(router)

	body, _ := json.Marshal(KratosIdentity{ID: "identity-123", Traits: KratosTraits{Email: "user@example.com"}})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v0/webhooks/registration", bytes.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
