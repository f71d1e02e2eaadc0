// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"github.com/canonical/workspace-service/internal/types"
)

// Action is an operation gated by a workspace role
type Action string

const (
	ReadWorkspace Action = "read_workspace"
	ReadMembers   Action = "read_members"
	ReadTags      Action = "read_tags"

	CreateWorkspace Action = "create_workspace"
	UpdateWorkspace Action = "update_workspace"
	DeleteWorkspace Action = "delete_workspace"

	AddMember    Action = "add_member"
	RemoveMember Action = "remove_member"

	CreateTag Action = "create_tag"
	AssignTag Action = "assign_tag"

	// WriteContent covers creating projects and tasks
	WriteContent Action = "write_content"
)

var (
	everyone  = map[types.Role]bool{types.RoleAdmin: true, types.RoleMember: true, types.RoleViewer: true}
	editors   = map[types.Role]bool{types.RoleAdmin: true, types.RoleMember: true}
	adminOnly = map[types.Role]bool{types.RoleAdmin: true}
)

// policy is the single source of truth for role permissions, anything absent is denied
var policy = map[Action]map[types.Role]bool{
	ReadWorkspace: everyone,
	ReadMembers:   everyone,
	ReadTags:      everyone,

	CreateWorkspace: adminOnly,
	UpdateWorkspace: adminOnly,
	DeleteWorkspace: adminOnly,

	AddMember:    adminOnly,
	RemoveMember: adminOnly,

	CreateTag:    editors,
	AssignTag:    editors,
	WriteContent: editors,
}

// Actions lists every action known to the policy
func Actions() []Action {
	return []Action{
		ReadWorkspace, ReadMembers, ReadTags,
		CreateWorkspace, UpdateWorkspace, DeleteWorkspace,
		AddMember, RemoveMember,
		CreateTag, AssignTag, WriteContent,
	}
}

// CanPerform decides whether role may perform action, it denies by default
func CanPerform(role types.Role, action Action) bool {
	roles, ok := policy[action]
	if !ok {
		return false
	}
	return roles[role]
}

func UserTuple(userID string) string {
	return "user:" + userID
}

func WorkspaceTuple(workspaceID string) string {
	return "workspace:" + workspaceID
}
