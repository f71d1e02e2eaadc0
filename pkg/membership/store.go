// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/workspace-service/internal/authorization"
	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/storage"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
)

var (
	ErrConflict    = errors.New("membership already exists")
	ErrInvalidRole = errors.New("invalid membership role")
)

var (
	_ StoreInterface                    = (*Store)(nil)
	_ authorization.RoleReaderInterface = (*Store)(nil)
)

// Store is the source of truth for who belongs to which workspace and with what role
type Store struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// GetRole returns types.RoleNone when the user is not a member
func (s *Store) GetRole(ctx context.Context, userID, workspaceID string) (types.Role, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Store.GetRole")
	defer span.End()

	role, err := s.storage.GetMembershipRole(ctx, userID, workspaceID)
	if errors.Is(err, storage.ErrNotFound) {
		return types.RoleNone, nil
	}
	if err != nil {
		return types.RoleNone, err
	}

	return role, nil
}

func (s *Store) AddMember(ctx context.Context, workspaceID, userID string, role types.Role) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Store.AddMember")
	defer span.End()

	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	m, err := s.storage.AddMembership(ctx, workspaceID, userID, role)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil, fmt.Errorf("user %s in workspace %s: %w", userID, workspaceID, ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RemoveMember returns false when there was no such membership
func (s *Store) RemoveMember(ctx context.Context, workspaceID, userID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Store.RemoveMember")
	defer span.End()

	err := s.storage.RemoveMembership(ctx, workspaceID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Store) ListMembers(ctx context.Context, workspaceID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Store.ListMembers")
	defer span.End()

	return s.storage.ListMemberships(ctx, workspaceID)
}

func (s *Store) CountAdmins(ctx context.Context, workspaceID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Store.CountAdmins")
	defer span.End()

	members, err := s.storage.ListMemberships(ctx, workspaceID)
	if err != nil {
		return 0, err
	}

	admins := 0
	for _, m := range members {
		if m.Role == types.RoleAdmin {
			admins++
		}
	}

	return admins, nil
}

func (s *Store) CountByRole(ctx context.Context, userID string) (map[types.Role]int, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Store.CountByRole")
	defer span.End()

	counts, err := s.storage.CountMembershipsByRole(ctx, userID)
	if err != nil {
		return nil, err
	}

	// every role is reported, zeroes included
	for _, r := range types.Roles {
		if _, ok := counts[r]; !ok {
			counts[r] = 0
		}
	}

	return counts, nil
}

// LockAdmins must run inside a unit of work for the locks to hold
func (s *Store) LockAdmins(ctx context.Context, workspaceID string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Store.LockAdmins")
	defer span.End()

	return s.storage.LockAdminIDs(ctx, workspaceID)
}

func NewStore(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Store {
	s := new(Store)

	s.storage = storage

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
