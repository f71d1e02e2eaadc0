// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var errNoActor = errors.New("--user-id is required to act on workspaces")

// withCore wires the application for a single operator command and tears it down afterwards
func withCore(fn func(cmd *cobra.Command, args []string, c *core) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if userID == "" {
			return errNoActor
		}

		c, err := newCore()
		if err != nil {
			return err
		}
		defer c.Close()

		return fn(cmd, args, c)
	}
}

func table(out io.Writer, header string, rows func(w io.Writer)) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	return w.Flush()
}

func outcome(cmd *cobra.Command, ok bool, done, refused string) error {
	if !ok {
		return errors.New(refused)
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}
