// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

var notificationCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List the notifications delivered to --user-id",
	Args:  cobra.NoArgs,
	RunE: withCore(func(cmd *cobra.Command, args []string, c *core) error {
		unread, _ := cmd.Flags().GetBool("unread")

		notifications, err := c.storage.ListNotifications(cmd.Context(), userID, unread)
		if err != nil {
			return err
		}

		return table(cmd.OutOrStdout(), "CREATED AT\tTYPE\tREAD\tMESSAGE", func(out io.Writer) {
			for _, n := range notifications {
				fmt.Fprintf(out, "%s\t%s\t%t\t%s\n", n.CreatedAt.Format(time.RFC3339), n.Type, n.Read, n.Message)
			}
		})
	}),
}

func init() {
	notificationCmd.Flags().Bool("unread", false, "Only show unread notifications")
	rootCmd.AddCommand(notificationCmd)
}
