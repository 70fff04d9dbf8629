package cmd

import (
	"fmt"

	"github.com/echo-support/echo-cli/internal"
	"github.com/spf13/cobra"
)

var (
	registerName     string
	registerEmail    string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new customer account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if registerName == "" || registerEmail == "" {
			return fmt.Errorf("both --name and --email are required")
		}
		if len(registerPassword) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		kv, err := openKV(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = kv.Close() }()

		client := internal.NewClient(cfg.APIBase)
		resp, err := client.Register(cmd.Context(), internal.RegisterRequest{
			Name:     registerName,
			Email:    registerEmail,
			Password: registerPassword,
		})
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		role := resp.Role
		if role == "" {
			role = "user"
		}
		if err := internal.SaveCachedUser(kv, &internal.UserProfile{
			ID:    resp.CustomerID,
			Name:  registerName,
			Email: registerEmail,
			Role:  role,
		}); err != nil {
			internal.LogWarn("Failed to cache profile: %v", err)
		}

		internal.PrintSuccess(fmt.Sprintf("Account created (customer id: %s)", resp.CustomerID))
		internal.PrintInfo("Run 'echo-cli login' to sign in")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (minimum 8 characters)")
}
