// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package workspace

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/workspace-service/internal/authorization"
	"github.com/canonical/workspace-service/internal/logging"
	"github.com/canonical/workspace-service/internal/monitoring"
	"github.com/canonical/workspace-service/internal/storage"
	"github.com/canonical/workspace-service/internal/tracing"
	"github.com/canonical/workspace-service/internal/types"
	"github.com/canonical/workspace-service/pkg/membership"
)

// memoryStore keeps workspaces and memberships in maps with the same
// error contract as the SQL storage
type memoryStore struct {
	mu          sync.Mutex
	seq         int
	workspaces  map[string]*types.Workspace
	memberships map[[2]string]*types.Membership
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		workspaces:  make(map[string]*types.Workspace),
		memberships: make(map[[2]string]*types.Membership),
	}
}

func (m *memoryStore) CreateWorkspace(_ context.Context, w *types.Workspace) (*types.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	created := *w
	created.ID = fmt.Sprintf("ws-%d", m.seq)
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.workspaces[created.ID] = &created

	return &created, nil
}

func (m *memoryStore) GetWorkspace(_ context.Context, id string) (*types.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.workspaces[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return w, nil
}

func (m *memoryStore) UpdateWorkspace(_ context.Context, id string, patch *types.WorkspacePatch) (*types.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.workspaces[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Description != nil {
		w.Description = *patch.Description
	}
	return w, nil
}

func (m *memoryStore) DeleteWorkspace(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workspaces[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.workspaces, id)
	for key := range m.memberships {
		if key[0] == id {
			delete(m.memberships, key)
		}
	}
	return nil
}

func (m *memoryStore) ListWorkspacesByUserID(_ context.Context, userID string) ([]*types.WorkspaceWithRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.WorkspaceWithRole, 0)
	for key, ms := range m.memberships {
		if key[1] == userID {
			out = append(out, &types.WorkspaceWithRole{Workspace: *m.workspaces[key[0]], Role: ms.Role})
		}
	}
	return out, nil
}

func (m *memoryStore) AddMembership(_ context.Context, workspaceID, userID string, role types.Role) (*types.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workspaces[workspaceID]; !ok {
		return nil, fmt.Errorf("workspace does not exist: %w", storage.ErrForeignKeyViolation)
	}

	key := [2]string{workspaceID, userID}
	if _, ok := m.memberships[key]; ok {
		return nil, fmt.Errorf("membership already exists: %w", storage.ErrDuplicateKey)
	}

	ms := &types.Membership{ID: workspaceID + "/" + userID, WorkspaceID: workspaceID, UserID: userID, Role: role, JoinedAt: time.Now()}
	m.memberships[key] = ms
	return ms, nil
}

func (m *memoryStore) GetMembershipRole(_ context.Context, userID, workspaceID string) (types.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms, ok := m.memberships[[2]string{workspaceID, userID}]
	if !ok {
		return types.RoleNone, storage.ErrNotFound
	}
	return ms.Role, nil
}

func (m *memoryStore) RemoveMembership(_ context.Context, workspaceID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := [2]string{workspaceID, userID}
	if _, ok := m.memberships[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.memberships, key)
	return nil
}

func (m *memoryStore) ListMemberships(_ context.Context, workspaceID string) ([]*types.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Membership, 0)
	for key, ms := range m.memberships {
		if key[0] == workspaceID {
			out = append(out, ms)
		}
	}
	return out, nil
}

func (m *memoryStore) CountMembershipsByRole(_ context.Context, userID string) (map[types.Role]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[types.Role]int)
	for key, ms := range m.memberships {
		if key[1] == userID {
			counts[ms.Role]++
		}
	}
	return counts, nil
}

func (m *memoryStore) LockAdminIDs(ctx context.Context, workspaceID string) ([]string, error) {
	ms, _ := m.ListMemberships(ctx, workspaceID)

	ids := make([]string, 0)
	for _, member := range ms {
		if member.Role == types.RoleAdmin {
			ids = append(ids, member.UserID)
		}
	}
	return ids, nil
}

type memoryDirectory map[string]*types.User

func (d memoryDirectory) GetUserByID(_ context.Context, id string) (*types.User, error) {
	return d[id], nil
}

func (d memoryDirectory) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	for _, u := range d {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type recordedNotification struct {
	userID, eventType, message string
}

type recordingNotifier struct {
	sent []recordedNotification
}

func (r *recordingNotifier) Notify(_ context.Context, userID, eventType, message string) {
	r.sent = append(r.sent, recordedNotification{userID, eventType, message})
}

type inlineTx struct{}

func (inlineTx) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func newScenario(t *testing.T) (*Service, *membership.Store, *recordingNotifier) {
	t.Helper()

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	store := newMemoryStore()
	members := membership.NewStore(store, tracer, monitor, logger)
	authz := authorization.NewAuthorizer(members, tracer, monitor, logger)
	directory := memoryDirectory{
		"user-1": {ID: "user-1", Name: "One", Email: "one@example.com"},
		"user-2": {ID: "user-2", Name: "Two", Email: "two@example.com"},
		"user-3": {ID: "user-3", Name: "Three", Email: "three@example.com"},
	}
	notifier := new(recordingNotifier)

	s := NewService(store, members, authz, nil, directory, notifier, inlineTx{}, tracer, monitor, logger)

	return s, members, notifier
}

func TestScenario_SprintPlanning(t *testing.T) {
	ctx := context.Background()
	s, members, notifier := newScenario(t)

	w, err := s.CreateWorkspace(ctx, "user-1", "Sprint Planning", "")
	require.NoError(t, err)

	role, err := members.GetRole(ctx, "user-1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, role)

	added, err := s.AddMember(ctx, "user-1", w.ID, "two@example.com", types.RoleMember)
	require.NoError(t, err)
	assert.True(t, added)

	list, err := members.ListMembers(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, recordedNotification{"user-2", "USER_ADDED_TO_WORKSPACE", "You have been added to the workspace 'Sprint Planning'."}, notifier.sent[0])

	again, err := s.AddMember(ctx, "user-1", w.ID, "two@example.com", types.RoleViewer)
	require.NoError(t, err)
	assert.False(t, again)

	deleted, err := s.DeleteWorkspace(ctx, "user-2", w.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.DeleteWorkspace(ctx, "user-1", w.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	role, err = members.GetRole(ctx, "user-1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleNone, role)
}

func TestScenario_RemoveNonExistentMembership(t *testing.T) {
	ctx := context.Background()
	s, members, _ := newScenario(t)

	w, err := s.CreateWorkspace(ctx, "user-1", "Sprint Planning", "")
	require.NoError(t, err)

	removed, err := s.RemoveMember(ctx, "user-1", w.ID, "user-3")
	require.NoError(t, err)
	assert.False(t, removed)

	list, err := members.ListMembers(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestScenario_LastAdminCannotLeave(t *testing.T) {
	ctx := context.Background()
	s, members, _ := newScenario(t)

	w, err := s.CreateWorkspace(ctx, "user-1", "Sprint Planning", "")
	require.NoError(t, err)

	removed, err := s.RemoveMember(ctx, "user-1", w.ID, "user-1")
	require.NoError(t, err)
	assert.False(t, removed)

	added, err := s.AddMember(ctx, "user-1", w.ID, "two@example.com", types.RoleAdmin)
	require.NoError(t, err)
	require.True(t, added)

	removed, err = s.RemoveMember(ctx, "user-2", w.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, removed)

	admins, err := members.CountAdmins(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)
}

func TestScenario_UnknownCreator(t *testing.T) {
	s, _, _ := newScenario(t)

	w, err := s.CreateWorkspace(context.Background(), "ghost", "Sprint Planning", "")

	assert.Nil(t, w)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
