// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"fmt"
	"strconv"

	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/tracing"
)

var _ AuthorizerInterface = (*Authorizer)(nil)

// Authorizer evaluates the policy against the role the user holds right now,
// roles are read on every call and never cached
type Authorizer struct {
	roles RoleReaderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) Check(ctx context.Context, userID, workspaceID string, action Action) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.Check")
	defer span.End()

	if userID == "" || workspaceID == "" {
		a.record(userID, workspaceID, action, false)
		return false, nil
	}

	role, err := a.roles.GetRole(ctx, userID, workspaceID)
	if err != nil {
		return false, fmt.Errorf("failed to read role: %w", err)
	}

	allowed := CanPerform(role, action)
	a.record(userID, workspaceID, action, allowed)

	return allowed, nil
}

func (a *Authorizer) record(userID, workspaceID string, action Action, allowed bool) {
	if allowed {
		a.logger.Security().AuthzGranted(UserTuple(userID), WorkspaceTuple(workspaceID), string(action))
	} else {
		a.logger.Security().AuthzFailure(UserTuple(userID), WorkspaceTuple(workspaceID), string(action))
	}

	tags := map[string]string{"action": string(action), "allowed": strconv.FormatBool(allowed)}
	if err := a.monitor.IncAuthorizationDecision(tags); err != nil {
		a.logger.Debugf("failed to record authorization decision: %v", err)
	}
}

func NewAuthorizer(roles RoleReaderInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	a := new(Authorizer)

	a.roles = roles

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
