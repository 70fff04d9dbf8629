package cmd

import (
	"fmt"

	"github.com/echo-support/echo-cli/internal"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	loginGoogle   bool
	loginGithub   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the support backend",
	Long: `Sign in with email and password, or print the OAuth entry point for a
browser-based Google or GitHub login. The OAuth exchange happens entirely
between your browser and the backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := internal.NewClient(cfg.APIBase)

		if loginGoogle || loginGithub {
			url := client.GoogleLoginURL()
			if loginGithub {
				url = client.GithubLoginURL()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in your browser to sign in:\n\n  %s\n", url)
			return nil
		}

		if loginEmail == "" || loginPassword == "" {
			return fmt.Errorf("both --email and --password are required (or use --google/--github)")
		}

		kv, err := openKV(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = kv.Close() }()

		resp, err := client.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		role := resp.Role
		if role == "" {
			role = "user"
		}
		user := &internal.UserProfile{
			Name:         resp.Name,
			Email:        resp.Email,
			Role:         role,
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
		}
		if err := internal.SaveCachedUser(kv, user); err != nil {
			return fmt.Errorf("failed to cache session: %w", err)
		}

		internal.PrintSuccess(fmt.Sprintf("Signed in as %s (%s)", resp.Name, role))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the cached session",
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

		if err := internal.ClearCachedUser(kv); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		internal.PrintSuccess("Signed out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password")
	loginCmd.Flags().BoolVar(&loginGoogle, "google", false, "Print the Google OAuth login URL")
	loginCmd.Flags().BoolVar(&loginGithub, "github", false, "Print the GitHub OAuth login URL")
}
