// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/workspace-service/internal/types"
)

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage workspace members",
}

var memberAddCmd = &cobra.Command{
	Use:   "add <workspace-id> <email> <role>",
	Short: "Add an existing user to a workspace",
	Args:  cobra.ExactArgs(3),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		role, err := types.ParseRole(args[2])
		if err != nil {
			return err
		}

		added, err := c.workspaces.AddMember(cmd.Context(), userID, args[0], args[1], role)
		if err != nil {
			return err
		}

		return outcome(cmd, added, fmt.Sprintf("%s added as %s", args[1], role), fmt.Sprintf("%s was not added", args[1]))
	}),
}

var memberRemoveCmd = &cobra.Command{
	Use:   "remove <workspace-id> <user-id>",
	Short: "Remove a member from a workspace",
	Args:  cobra.ExactArgs(2),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		removed, err := c.workspaces.RemoveMember(cmd.Context(), userID, args[0], args[1])
		if err != nil {
			return err
		}

		return outcome(cmd, removed, fmt.Sprintf("%s removed", args[1]), fmt.Sprintf("%s was not removed", args[1]))
	}),
}

var memberListCmd = &cobra.Command{
	Use:   "list <workspace-id>",
	Short: "List the members of a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		members, err := c.workspaces.ListMembers(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}

		return table(cmd.OutOrStdout(), "USER ID\tNAME\tEMAIL\tROLE\tJOINED AT", func(out io.Writer) {
			for _, m := range members {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", m.UserID, m.Name, m.Email, m.Role, m.JoinedAt.Format(time.RFC3339))
			}
		})
	}),
}

var memberIsAdminCmd = &cobra.Command{
	Use:   "is-admin <workspace-id>",
	Short: "Check whether --user-id administers a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		admin, err := c.workspaces.IsWorkspaceAdmin(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), admin)
		return nil
	}),
}

func init() {
	memberCmd.AddCommand(memberAddCmd, memberRemoveCmd, memberListCmd, memberIsAdminCmd)
	rootCmd.AddCommand(memberCmd)
}
