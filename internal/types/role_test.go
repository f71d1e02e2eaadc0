// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"testing"
)

func TestParseRole(t *testing.T) {
	testCases := []struct {
		input       string
		expected    Role
		expectedErr bool
	}{
		{input: "admin", expected: RoleAdmin},
		{input: "ADMIN", expected: RoleAdmin},
		{input: " Member ", expected: RoleMember},
		{input: "viewer", expected: RoleViewer},
		{input: "owner", expected: RoleNone, expectedErr: true},
		{input: "", expected: RoleNone, expectedErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			role, err := ParseRole(tc.input)

			if tc.expectedErr && err == nil {
				t.Errorf("expected error for %q", tc.input)
			}
			if !tc.expectedErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if role != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, role)
			}
		})
	}
}

func TestRoleTextRoundTrip(t *testing.T) {
	for _, r := range Roles {
		text, err := r.MarshalText()
		if err != nil {
			t.Fatalf("unexpected error marshalling %v: %v", r, err)
		}

		var parsed Role
		if err := parsed.UnmarshalText(text); err != nil {
			t.Fatalf("unexpected error unmarshalling %q: %v", text, err)
		}
		if parsed != r {
			t.Errorf("expected %v, got %v", r, parsed)
		}
	}

	if _, err := RoleNone.MarshalText(); err == nil {
		t.Error("expected error marshalling RoleNone")
	}
}

func TestRoleScanAndValue(t *testing.T) {
	var r Role
	if err := r.Scan([]byte("viewer")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != RoleViewer {
		t.Errorf("expected viewer, got %v", r)
	}

	if err := r.Scan(nil); err != nil || r != RoleNone {
		t.Errorf("expected RoleNone on nil scan, got %v, %v", r, err)
	}

	if err := r.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}

	v, err := RoleMember.Value()
	if err != nil || v != "member" {
		t.Errorf("expected member, got %v, %v", v, err)
	}

	if _, err := Role(99).Value(); err == nil {
		t.Error("expected error for unknown role value")
	}
}

func TestWorkspacePatchIsEmpty(t *testing.T) {
	name := "n"
	var nilPatch *WorkspacePatch

	if !nilPatch.IsEmpty() {
		t.Error("nil patch should be empty")
	}
	if !(&WorkspacePatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
	if (&WorkspacePatch{Name: &name}).IsEmpty() {
		t.Error("patch with name should not be empty")
	}
}
