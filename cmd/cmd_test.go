// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateArgs(t *testing.T) {
	validate := customValidArgs()

	tests := []struct {
		args    []string
		wantErr bool
	}{
		{args: nil},
		{args: []string{"up"}},
		{args: []string{"status"}},
		{args: []string{"check"}},
		{args: []string{"down", "3"}},
		{args: []string{"sideways"}, wantErr: true},
		{args: []string{"up", "3"}, wantErr: true},
		{args: []string{"down", "-1"}, wantErr: true},
		{args: []string{"down", "x"}, wantErr: true},
		{args: []string{"down", "1", "2"}, wantErr: true},
	}

	for _, test := range tests {
		t.Run(filepath.Join(test.args...), func(t *testing.T) {
			err := validate(migrateCmd, test.args)
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOperatorCommandsRequireActor(t *testing.T) {
	userID = ""

	called := false
	run := withCore(func(*cobra.Command, []string, *core) error {
		called = true
		return nil
	})

	err := run(workspaceListCmd, nil)

	assert.ErrorIs(t, err, errNoActor)
	assert.False(t, called)
}

func TestOutcome(t *testing.T) {
	out := new(bytes.Buffer)
	c := &cobra.Command{}
	c.SetOut(out)

	require.NoError(t, outcome(c, true, "done", "refused"))
	assert.Equal(t, "done\n", out.String())

	assert.EqualError(t, outcome(c, false, "done", "refused"), "refused")
}

func TestTable(t *testing.T) {
	out := new(bytes.Buffer)

	err := table(out, "ROLE\tWORKSPACES", func(w io.Writer) {
		w.Write([]byte("admin\t2\n"))
	})

	require.NoError(t, err)
	assert.Equal(t, "ROLE   WORKSPACES\nadmin  2\n", out.String())
}

func TestEnvFileIsLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WORKSPACE_TEST_VALUE=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WORKSPACE_TEST_VALUE") })

	envFile = path
	t.Cleanup(func() { envFile = "" })

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.Equal(t, "loaded", os.Getenv("WORKSPACE_TEST_VALUE"))

	envFile = filepath.Join(t.TempDir(), "missing.env")
	assert.Error(t, rootCmd.PersistentPreRunE(rootCmd, nil))
}

func TestVersion(t *testing.T) {
	out := new(bytes.Buffer)
	versionCmd.SetOut(out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), "workspace-service")
}
