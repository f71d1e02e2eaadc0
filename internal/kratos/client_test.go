// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package kratos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
)

func identity(id string, traits map[string]any) map[string]any {
	return map[string]any{
		"id":         id,
		"schema_id":  "default",
		"schema_url": "http://kratos/schemas/default",
		"traits":     traits,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logging.NewNoopLogger()

	return NewClient(srv.URL, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_GetUserByID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/identities/user-1":
			writeJSON(w, http.StatusOK, identity("user-1", map[string]any{
				"email": "one@example.com",
				"name":  map[string]any{"first": "Ada", "last": "Lovelace"},
			}))
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": 404, "message": "not found"}})
		}
	})

	u, err := c.GetUserByID(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "one@example.com", u.Email)
	assert.Equal(t, "Ada Lovelace", u.Name)

	u, err = c.GetUserByID(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestClient_GetUserByEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/identities" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if r.URL.Query().Get("credentials_identifier") == "two@example.com" {
			writeJSON(w, http.StatusOK, []any{identity("user-2", map[string]any{"email": "two@example.com", "name": "Two"})})
			return
		}

		writeJSON(w, http.StatusOK, []any{})
	})

	u, err := c.GetUserByEmail(context.Background(), "two@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "user-2", u.ID)
	assert.Equal(t, "Two", u.Name)

	u, err = c.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestClient_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": map[string]any{"code": 500, "message": "boom"}})
	})

	_, err := c.GetUserByID(context.Background(), "user-1")
	assert.Error(t, err)

	_, err = c.GetUserByEmail(context.Background(), "one@example.com")
	assert.Error(t, err)
}
