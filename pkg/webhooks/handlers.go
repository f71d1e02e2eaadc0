// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/pkg/workspace"
)

type API struct {
	service ServiceInterface
	apiKey  string

	logger logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Post("/api/v0/webhooks/registration", a.registration)
}

func (a *API) registration(w http.ResponseWriter, r *http.Request) {
	if a.apiKey != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte(a.apiKey)) != 1 {
		a.logger.Security().AuthzFailure("webhook", "registration", "provision_workspace")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var identity KratosIdentity
	if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
		a.logger.Errorf("failed to decode registration hook: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ws, err := a.service.HandleRegistration(r.Context(), identity.ID, identity.Traits.Email)

	switch {
	case errors.Is(err, ErrInvalidIdentity):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, workspace.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		a.logger.Errorf("registration hook failed for identity %s: %v", identity.ID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := RegistrationResponse{}
	if ws != nil {
		resp.WorkspaceID = ws.ID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// NewAPI serves the Kratos registration hook, an empty apiKey disables the Authorization check
func NewAPI(service ServiceInterface, apiKey string, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		apiKey:  apiKey,
		logger:  logger,
	}
}
