// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage workspace tags",
}

var tagCreateCmd = &cobra.Command{
	Use:   "create <workspace-id> <name>",
	Short: "Create a tag in a workspace",
	Args:  cobra.ExactArgs(2),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		color, _ := cmd.Flags().GetString("color")

		tag, err := c.tags.CreateTag(cmd.Context(), userID, args[0], args[1], color)
		if err != nil {
			return err
		}
		if tag == nil {
			return fmt.Errorf("tag %s was not created", args[1])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tag %s created: %s\n", tag.Name, tag.ID)
		return nil
	}),
}

var tagAssignCmd = &cobra.Command{
	Use:   "assign <task-id> <tag-id>",
	Short: "Label a task with a tag of the same workspace",
	Args:  cobra.ExactArgs(2),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		assigned, err := c.tags.AssignTag(cmd.Context(), userID, args[0], args[1])
		if err != nil {
			return err
		}

		return outcome(cmd, assigned, "Tag assigned", fmt.Sprintf("tag %s was not assigned to task %s", args[1], args[0]))
	}),
}

var tagListCmd = &cobra.Command{
	Use:   "list <workspace-id>",
	Short: "List the tags of a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		tags, err := c.tags.ListTags(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}

		return table(cmd.OutOrStdout(), "ID\tNAME\tCOLOR", func(out io.Writer) {
			for _, t := range tags {
				fmt.Fprintf(out, "%s\t%s\t%s\n", t.ID, t.Name, t.Color)
			}
		})
	}),
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage workspace projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <workspace-id> <name>",
	Short: "Create a project in a workspace",
	Args:  cobra.ExactArgs(2),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		description, _ := cmd.Flags().GetString("description")

		p, err := c.projects.CreateProject(cmd.Context(), userID, args[0], args[1], description)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("project %s was not created", args[1])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Project %s created: %s\n", p.Name, p.ID)
		return nil
	}),
}

var projectListCmd = &cobra.Command{
	Use:   "list <workspace-id>",
	Short: "List the projects of a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		projects, err := c.projects.ListProjects(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}

		return table(cmd.OutOrStdout(), "ID\tNAME\tCREATED AT", func(out io.Writer) {
			for _, p := range projects {
				fmt.Fprintf(out, "%s\t%s\t%s\n", p.ID, p.Name, p.CreatedAt.Format(time.RFC3339))
			}
		})
	}),
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage project tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <project-id> <title>",
	Short: "Create a task in a project",
	Args:  cobra.ExactArgs(2),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		description, _ := cmd.Flags().GetString("description")

		t, err := c.projects.CreateTask(cmd.Context(), userID, args[0], args[1], description)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("task %s was not created", args[1])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Task %s created: %s\n", t.Title, t.ID)
		return nil
	}),
}

var taskListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List the tasks of a project",
	Args:  cobra.ExactArgs(1),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		tasks, err := c.projects.ListTasks(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}

		return table(cmd.OutOrStdout(), "ID\tTITLE\tCREATED AT", func(out io.Writer) {
			for _, t := range tasks {
				fmt.Fprintf(out, "%s\t%s\t%s\n", t.ID, t.Title, t.CreatedAt.Format(time.RFC3339))
			}
		})
	}),
}

var taskAccessCmd = &cobra.Command{
	Use:   "access <task-id>",
	Short: "Check whether --user-id can read a task",
	Args:  cobra.ExactArgs(1),
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		allowed, err := c.workspaces.HasAccessToTask(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), allowed)
		return nil
	}),
}

func init() {
	tagCreateCmd.Flags().String("color", "", "Tag color as a hex code, e.g. #ff8800")
	projectCreateCmd.Flags().String("description", "", "Project description")
	taskCreateCmd.Flags().String("description", "", "Task description")

	tagCmd.AddCommand(tagCreateCmd, tagAssignCmd, tagListCmd)
	projectCmd.AddCommand(projectCreateCmd, projectListCmd)
	taskCmd.AddCommand(taskCreateCmd, taskListCmd, taskAccessCmd)
	rootCmd.AddCommand(tagCmd, projectCmd, taskCmd)
}
