// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

const (
	EventUserAddedToWorkspace = "USER_ADDED_TO_WORKSPACE"
)
