// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

// User is a read-only projection of an identity held by the user directory.
type User struct {
	ID    string
	Name  string
	Email string
}

type Workspace struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// WorkspacePatch carries a partial update, nil fields are left untouched.
type WorkspacePatch struct {
	Name        *string `validate:"omitempty,min=1,max=100"`
	Description *string `validate:"omitempty,max=500"`
}

// IsEmpty reports whether the patch would change nothing.
func (p *WorkspacePatch) IsEmpty() bool {
	return p == nil || (p.Name == nil && p.Description == nil)
}

type WorkspaceWithRole struct {
	Workspace
	Role Role
}

type Membership struct {
	ID          string    `db:"id"`
	WorkspaceID string    `db:"workspace_id"`
	UserID      string    `db:"user_id"`
	Role        Role      `db:"role"`
	JoinedAt    time.Time `db:"joined_at"`
}

type MemberWithRole struct {
	UserID   string
	Name     string
	Email    string
	Role     Role
	JoinedAt time.Time
}

type Project struct {
	ID          string    `db:"id"`
	WorkspaceID string    `db:"workspace_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type Task struct {
	ID          string    `db:"id"`
	ProjectID   string    `db:"project_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type Tag struct {
	ID          string    `db:"id"`
	WorkspaceID string    `db:"workspace_id"`
	Name        string    `db:"name"`
	Color       string    `db:"color"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}

type TaskTag struct {
	TaskID string `db:"task_id"`
	TagID  string `db:"tag_id"`
}

type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
