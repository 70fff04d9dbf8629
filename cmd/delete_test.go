package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/echo-support/echo-cli/testutil"
)

func TestDeleteCommand(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.CreateStateFixture(t, dir, "customer-1")

	rootCmd.SetArgs([]string{"delete", "fixture-session-1", "--data-dir", dir})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	defer func() { dataDir = "" }()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("rootCmd.Execute() error = %v", err)
	}

	// The deleted session is gone from the list.
	rootCmd.SetArgs([]string{"sessions", "--local", "--data-dir", dir})
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("rootCmd.Execute() error = %v", err)
	}
	if strings.Contains(stdout.String(), "fixture-sess") {
		t.Errorf("deleted session still listed:\n%s", stdout.String())
	}
}

func TestDeleteCommand_UnknownSession(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.CreateStateFixture(t, dir, "customer-1")

	rootCmd.SetArgs([]string{"delete", "no-such-id", "--data-dir", dir})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	defer func() { dataDir = "" }()

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for unknown session id")
	}
}
