// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package kratos

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	ory "github.com/ory/client-go"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
)

// ClientInterface is the user directory backed by the Kratos admin API,
// absent users are reported as nil without an error
type ClientInterface interface {
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

var _ ClientInterface = (*Client)(nil)

type Client struct {
	client  *ory.APIClient
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewClient(kratosAdminURL string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	conf := ory.NewConfiguration()
	conf.Servers = ory.ServerConfigurations{{URL: kratosAdminURL}}
	return &Client{
		client:  ory.NewAPIClient(conf),
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (c *Client) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.GetUserByID")
	defer span.End()

	identity, r, err := c.client.IdentityAPI.GetIdentity(ctx, id).Execute()
	if err != nil {
		if r != nil && r.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return toUser(identity), nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.GetUserByEmail")
	defer span.End()

	// NOTE: we are setting an empty page token because of https://github.com/ory/sdk/issues/461
	ids, r, err := c.client.IdentityAPI.ListIdentities(ctx).CredentialsIdentifier(email).PageToken("").Execute()
	if err != nil {
		if r != nil && r.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	// emails are unique credential identifiers in kratos
	return toUser(&ids[0]), nil
}

func toUser(identity *ory.Identity) *types.User {
	u := &types.User{ID: identity.Id}

	traits, ok := identity.Traits.(map[string]any)
	if !ok {
		return u
	}

	if email, ok := traits["email"].(string); ok {
		u.Email = email
	}

	switch name := traits["name"].(type) {
	case string:
		u.Name = name
	case map[string]any:
		first, _ := name["first"].(string)
		last, _ := name["last"].(string)
		u.Name = strings.TrimSpace(first + " " + last)
	}

	return u
}
