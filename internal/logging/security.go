// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

const (
	securityEventKey = "event"

	eventSystemStartup     = "sys_startup"
	eventSystemShutdown    = "sys_shutdown"
	eventAuthzFail         = "authz_fail"
	eventAuthzGranted      = "authz_granted"
	eventMembershipChanged = "membership_change"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

// SecurityLogger emits structured security events on a dedicated named logger
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup() {
	s.l.Info("system startup", zap.String(securityEventKey, eventSystemStartup))
}

func (s *SecurityLogger) SystemShutdown() {
	s.l.Info("system shutdown", zap.String(securityEventKey, eventSystemShutdown))
}

// AuthzFailure records a denied authorization decision
func (s *SecurityLogger) AuthzFailure(userID, resource, action string) {
	s.l.Warn(
		"authorization denied",
		zap.String(securityEventKey, eventAuthzFail+":"+userID+","+action),
		zap.String("user_id", userID),
		zap.String("resource", resource),
		zap.String("action", action),
	)
}

func (s *SecurityLogger) AuthzGranted(userID, resource, action string) {
	s.l.Debug(
		"authorization granted",
		zap.String(securityEventKey, eventAuthzGranted+":"+userID+","+action),
		zap.String("user_id", userID),
		zap.String("resource", resource),
		zap.String("action", action),
	)
}

// MembershipChanged records a privilege change on a workspace
func (s *SecurityLogger) MembershipChanged(actorID, workspaceID, targetID, change string) {
	s.l.Info(
		"workspace membership changed",
		zap.String(securityEventKey, eventMembershipChanged+":"+targetID+","+change),
		zap.String("actor_id", actorID),
		zap.String("workspace_id", workspaceID),
		zap.String("target_id", targetID),
		zap.String("change", change),
	)
}

func newSecurityLogger(base *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: base.Named("security").With(zap.String("type", "security"))}
}
