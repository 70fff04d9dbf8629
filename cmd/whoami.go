package cmd

import (
	"fmt"

	"github.com/echo-support/echo-cli/internal"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		kv, err := openKV(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = kv.Close() }()

		user, err := requireUser(kv)
		if err != nil {
			return err
		}

		client := internal.NewClient(cfg.APIBase)
		profile, err := client.Me(cmd.Context(), user.AccessToken)
		if err != nil {
			// The cached profile is still worth showing when the
			// backend is unreachable.
			internal.LogWarn("Could not refresh profile: %v", err)
			profile = user
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:  %s\n", profile.Name)
		fmt.Fprintf(out, "Email: %s\n", profile.Email)
		fmt.Fprintf(out, "Role:  %s\n", profile.Role)
		fmt.Fprintf(out, "Identity: %s\n", internal.ResolveIdentity(user, kv))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
