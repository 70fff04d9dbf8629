package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/echo-support/echo-cli/testutil"
)

func TestSessionsCommand_ListsLocalSessions(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.CreateStateFixture(t, dir, "customer-1")

	rootCmd.SetArgs([]string{"sessions", "--local", "--data-dir", dir})
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	defer func() { dataDir = "" }()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("rootCmd.Execute() error = %v", err)
	}

	got := stdout.String()
	if !strings.Contains(got, "Billing question") {
		t.Errorf("sessions output missing stored session title, got:\n%s", got)
	}
	if !strings.Contains(got, "fixture-sess") {
		t.Errorf("sessions output missing session id, got:\n%s", got)
	}
}

func TestSessionsCommand_EmptyState(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	rootCmd.SetArgs([]string{"sessions", "--local", "--data-dir", dir})
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	defer func() { dataDir = "" }()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("rootCmd.Execute() error = %v", err)
	}

	if !strings.Contains(stdout.String(), "No conversations found") {
		t.Errorf("expected empty-state message, got:\n%s", stdout.String())
	}
}
