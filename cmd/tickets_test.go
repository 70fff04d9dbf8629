package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/echo-support/echo-cli/testutil"
)

func TestTicketsCommand_RequiresLogin(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "list",
			args: []string{"tickets", "list"},
		},
		{
			name: "resolve",
			args: []string{"tickets", "resolve", "t-1", "--message", "done"},
		},
		{
			name: "profile",
			args: []string{"tickets", "profile", "customer-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.CreateTempDir(t)
			rootCmd.SetArgs(append(tt.args, "--data-dir", dir))
			rootCmd.SetOut(&bytes.Buffer{})
			rootCmd.SetErr(&bytes.Buffer{})
			defer func() { dataDir = "" }()

			err := rootCmd.Execute()
			if err == nil {
				t.Fatal("expected error without a signed-in user")
			}
			if !strings.Contains(err.Error(), "not logged in") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
