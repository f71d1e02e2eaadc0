// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the role a user holds in a workspace.
// The zero value RoleNone means the user holds no membership.
type Role int

const (
	RoleNone Role = iota
	RoleAdmin
	RoleMember
	RoleViewer
)

const (
	roleAdminLabel  = "admin"
	roleMemberLabel = "member"
	roleViewerLabel = "viewer"
)

// Roles lists the assignable roles.
var Roles = []Role{RoleAdmin, RoleMember, RoleViewer}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return roleAdminLabel
	case RoleMember:
		return roleMemberLabel
	case RoleViewer:
		return roleViewerLabel
	default:
		return "none"
	}
}

// IsValid reports whether the role can be assigned to a membership.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember || r == RoleViewer
}

// ParseRole maps a label to a Role, case insensitive.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case roleAdminLabel:
		return RoleAdmin, nil
	case roleMemberLabel:
		return RoleMember, nil
	case roleViewerLabel:
		return RoleViewer, nil
	default:
		return RoleNone, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("cannot marshal role %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Scan implements sql.Scanner, roles are persisted as their text label.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	case nil:
		*r = RoleNone
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return r.String(), nil
}
