// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/workspace-service/internal/authorization"
	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/storage"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
	"github.com/canonical/workspace-service/pkg/membership"
	"github.com/canonical/workspace-service/pkg/notifications"
	"github.com/canonical/workspace-service/pkg/resolver"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCreateWorkspace  = errors.New("failed to create workspace")
	ErrInvalidWorkspace = errors.New("invalid workspace")
)

var _ ServiceInterface = (*Service)(nil)

type newWorkspace struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

type Service struct {
	storage   StorageInterface
	members   MembershipInterface
	authz     AuthorizerInterface
	resolver  ResolverInterface
	directory DirectoryInterface
	notifier  NotifierInterface
	tx        TxInterface

	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// CreateWorkspace stores the workspace and the creator's Admin membership as one unit,
// a failure of either leaves nothing behind and is reported as ErrCreateWorkspace
func (s *Service) CreateWorkspace(ctx context.Context, creatorID, name, description string) (*types.Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.CreateWorkspace")
	defer span.End()

	if err := s.validate.Struct(newWorkspace{Name: name, Description: description}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkspace, err)
	}

	creator, err := s.directory.GetUserByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up creator: %w", err)
	}
	if creator == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, creatorID)
	}

	var created *types.Workspace
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		w, err := s.storage.CreateWorkspace(ctx, &types.Workspace{Name: name, Description: description, CreatedBy: creator.ID})
		if err != nil {
			return err
		}

		if _, err := s.members.AddMember(ctx, w.ID, creator.ID, types.RoleAdmin); err != nil {
			return err
		}

		created = w
		return nil
	})

	if err != nil {
		s.logger.Errorf("failed to create workspace %q for %s: %v", name, creatorID, err)
		return nil, fmt.Errorf("%w: %w", ErrCreateWorkspace, err)
	}

	s.logger.Security().MembershipChanged(creator.ID, created.ID, creator.ID, "added:"+types.RoleAdmin.String())

	return created, nil
}

// GetWorkspace returns nil when the requester is not a member or the workspace does not exist
func (s *Service) GetWorkspace(ctx context.Context, requesterID, workspaceID string) (*types.WorkspaceWithRole, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.GetWorkspace")
	defer span.End()

	if ok, err := s.authorize(ctx, requesterID, workspaceID, authorization.ReadWorkspace); !ok {
		return nil, err
	}

	role, err := s.members.GetRole(ctx, requesterID, workspaceID)
	if err != nil {
		return nil, err
	}

	w, err := s.storage.GetWorkspace(ctx, workspaceID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &types.WorkspaceWithRole{Workspace: *w, Role: role}, nil
}

func (s *Service) ListWorkspaces(ctx context.Context, userID string) ([]*types.WorkspaceWithRole, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.ListWorkspaces")
	defer span.End()

	return s.storage.ListWorkspacesByUserID(ctx, userID)
}

// UpdateWorkspace applies the non-nil fields of the patch, nil is returned when the
// requester is not an Admin or the workspace does not exist
func (s *Service) UpdateWorkspace(ctx context.Context, requesterID, workspaceID string, patch *types.WorkspacePatch) (*types.Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.UpdateWorkspace")
	defer span.End()

	if ok, err := s.authorize(ctx, requesterID, workspaceID, authorization.UpdateWorkspace); !ok {
		return nil, err
	}

	if patch == nil {
		patch = new(types.WorkspacePatch)
	}

	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkspace, err)
	}

	w, err := s.storage.UpdateWorkspace(ctx, workspaceID, patch)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debugf("workspace %s not found", workspaceID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (s *Service) DeleteWorkspace(ctx context.Context, requesterID, workspaceID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.DeleteWorkspace")
	defer span.End()

	if ok, err := s.authorize(ctx, requesterID, workspaceID, authorization.DeleteWorkspace); !ok {
		return false, err
	}

	err := s.storage.DeleteWorkspace(ctx, workspaceID)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debugf("workspace %s not found", workspaceID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.logger.Infof("workspace %s deleted by %s", workspaceID, requesterID)

	return true, nil
}

// AddMember grants role to the user registered under targetEmail, false covers a denied
// requester, an unknown email and an existing membership alike
func (s *Service) AddMember(ctx context.Context, requesterID, workspaceID, targetEmail string, role types.Role) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.AddMember")
	defer span.End()

	if !role.IsValid() {
		s.logger.Debugf("refusing to add member with role %s", role)
		return false, nil
	}

	if ok, err := s.authorize(ctx, requesterID, workspaceID, authorization.AddMember); !ok {
		return false, err
	}

	target, err := s.directory.GetUserByEmail(ctx, targetEmail)
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	if target == nil {
		s.logger.Debugf("no user registered with email %s", targetEmail)
		return false, nil
	}

	existing, err := s.members.GetRole(ctx, target.ID, workspaceID)
	if err != nil {
		return false, err
	}
	if existing != types.RoleNone {
		s.logger.Debugf("user %s already holds %s in workspace %s", target.ID, existing, workspaceID)
		return false, nil
	}

	w, err := s.storage.GetWorkspace(ctx, workspaceID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// the unique constraint settles concurrent adds of the same user
	if _, err := s.members.AddMember(ctx, workspaceID, target.ID, role); err != nil {
		if errors.Is(err, membership.ErrConflict) {
			s.logger.Debugf("user %s was added to workspace %s concurrently", target.ID, workspaceID)
			return false, nil
		}
		return false, err
	}

	s.logger.Security().MembershipChanged(requesterID, workspaceID, target.ID, "added:"+role.String())

	s.notifier.Notify(
		ctx,
		target.ID,
		notifications.EventUserAddedToWorkspace,
		fmt.Sprintf("You have been added to the workspace '%s'.", w.Name),
	)

	return true, nil
}

// RemoveMember refuses to remove the only Admin left in the workspace
func (s *Service) RemoveMember(ctx context.Context, requesterID, workspaceID, targetUserID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.RemoveMember")
	defer span.End()

	if ok, err := s.authorize(ctx, requesterID, workspaceID, authorization.RemoveMember); !ok {
		return false, err
	}

	removed := false
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		role, err := s.members.GetRole(ctx, targetUserID, workspaceID)
		if err != nil {
			return err
		}

		if role == types.RoleNone {
			s.logger.Debugf("user %s is not a member of workspace %s", targetUserID, workspaceID)
			return nil
		}

		if role == types.RoleAdmin {
			admins, err := s.members.LockAdmins(ctx, workspaceID)
			if err != nil {
				return err
			}

			if len(admins) <= 1 {
				s.logger.Debugf("user %s is the last admin of workspace %s", targetUserID, workspaceID)
				return nil
			}
		}

		removed, err = s.members.RemoveMember(ctx, workspaceID, targetUserID)
		return err
	})

	if err != nil {
		return false, fmt.Errorf("failed to remove member: %w", err)
	}

	if removed {
		s.logger.Security().MembershipChanged(requesterID, workspaceID, targetUserID, "removed")
	}

	return removed, nil
}

// ListMembers returns nil when the requester is not a member,
// users missing from the directory are listed by id only
func (s *Service) ListMembers(ctx context.Context, requesterID, workspaceID string) ([]*types.MemberWithRole, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.ListMembers")
	defer span.End()

	if ok, err := s.authorize(ctx, requesterID, workspaceID, authorization.ReadMembers); !ok {
		return nil, err
	}

	memberships, err := s.members.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	members := make([]*types.MemberWithRole, 0, len(memberships))
	for _, m := range memberships {
		member := &types.MemberWithRole{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt}

		user, err := s.directory.GetUserByID(ctx, m.UserID)
		if err != nil {
			s.logger.Warnf("failed to look up member %s: %v", m.UserID, err)
		} else if user != nil {
			member.Name = user.Name
			member.Email = user.Email
		}

		members = append(members, member)
	}

	return members, nil
}

func (s *Service) CountWorkspacesByRole(ctx context.Context, userID string) (map[types.Role]int, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.CountWorkspacesByRole")
	defer span.End()

	return s.members.CountByRole(ctx, userID)
}

func (s *Service) IsWorkspaceAdmin(ctx context.Context, userID, workspaceID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.IsWorkspaceAdmin")
	defer span.End()

	role, err := s.members.GetRole(ctx, userID, workspaceID)
	if err != nil {
		return false, err
	}

	return role == types.RoleAdmin, nil
}

// HasAccessToTask reports whether the user is a member of the workspace owning the task
func (s *Service) HasAccessToTask(ctx context.Context, userID, taskID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.HasAccessToTask")
	defer span.End()

	workspaceID, err := s.resolver.WorkspaceOfTask(ctx, taskID)
	if errors.Is(err, resolver.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return s.authorize(ctx, userID, workspaceID, authorization.ReadWorkspace)
}

func (s *Service) authorize(ctx context.Context, userID, workspaceID string, action authorization.Action) (bool, error) {
	allowed, err := s.authz.Check(ctx, userID, workspaceID, action)
	if err != nil {
		return false, err
	}

	if !allowed {
		s.logger.Debugf("user %s denied %s on workspace %s", userID, action, workspaceID)
	}

	return allowed, nil
}

func NewService(
	storage StorageInterface,
	members MembershipInterface,
	authz AuthorizerInterface,
	resolver ResolverInterface,
	directory DirectoryInterface,
	notifier NotifierInterface,
	tx TxInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:   storage,
		members:   members,
		authz:     authz,
		resolver:  resolver,
		directory: directory,
		notifier:  notifier,
		tx:        tx,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		tracer:    tracer,
		monitor:   monitor,
		logger:    logger,
	}
}
