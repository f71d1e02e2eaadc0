// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/workspace-service/internal/types"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces",
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a workspace owned by --user-id",
	Args:  cobra.ExactArgs(1),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		description, _ := cmd.Flags().GetString("description")

		w, err := c.workspaces.CreateWorkspace(cmd.Context(), userID, args[0], description)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Workspace %s created: %s\n", w.Name, w.ID)
		return nil
	}),
}

var workspaceGetCmd = &cobra.Command{
	Use:   "get <workspace-id>",
	Short: "Show a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		w, err := c.workspaces.GetWorkspace(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("workspace %s not found", args[0])
		}

		return table(cmd.OutOrStdout(), "ID\tNAME\tROLE\tCREATED BY\tDESCRIPTION", func(out io.Writer) {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", w.ID, w.Name, w.Role, w.CreatedBy, w.Description)
		})
	}),
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the workspaces of --user-id",
	Args:  cobra.NoArgs,
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		workspaces, err := c.workspaces.ListWorkspaces(cmd.Context(), userID)
		if err != nil {
			return err
		}

		return table(cmd.OutOrStdout(), "ID\tNAME\tROLE\tCREATED AT", func(out io.Writer) {
			for _, w := range workspaces {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", w.ID, w.Name, w.Role, w.CreatedAt.Format(time.RFC3339))
			}
		})
	}),
}

var workspaceUpdateCmd = &cobra.Command{
	Use:   "update <workspace-id>",
	Short: "Rename a workspace or change its description",
	Args:  cobra.ExactArgs(1),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		patch := new(types.WorkspacePatch)
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			patch.Name = &name
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			patch.Description = &description
		}
		if patch.IsEmpty() {
			return errors.New("nothing to update, use --name or --description")
		}

		w, err := c.workspaces.UpdateWorkspace(cmd.Context(), userID, args[0], patch)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("workspace %s was not updated", args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Workspace %s updated\n", w.ID)
		return nil
	}),
}

var workspaceDeleteCmd = &cobra.Command{
	Use:   "delete <workspace-id>",
	Short: "Delete a workspace with all its content",
	Args:  cobra.ExactArgs(1),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		deleted, err := c.workspaces.DeleteWorkspace(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}

		return outcome(cmd, deleted, "Workspace deleted", fmt.Sprintf("workspace %s was not deleted", args[0]))
	}),
}

var workspaceRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Count the workspaces of --user-id by role",
	Args:  cobra.NoArgs,
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		counts, err := c.workspaces.CountWorkspacesByRole(cmd.Context(), userID)
		if err != nil {
			return err
		}

		return table(cmd.OutOrStdout(), "ROLE\tWORKSPACES", func(out io.Writer) {
			for _, r := range types.Roles {
				fmt.Fprintf(out, "%s\t%d\n", r, counts[r])
			}
		})
	}),
}

func init() {
	workspaceCreateCmd.Flags().String("description", "", "Workspace description")
	workspaceUpdateCmd.Flags().String("name", "", "New workspace name")
	workspaceUpdateCmd.Flags().String("description", "", "New workspace description")

	workspaceCmd.AddCommand(workspaceCreateCmd, workspaceGetCmd, workspaceListCmd, workspaceUpdateCmd, workspaceDeleteCmd, workspaceRolesCmd)
	rootCmd.AddCommand(workspaceCmd)
}
