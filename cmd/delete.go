package cmd

import (
	"fmt"

	"github.com/echo-support/echo-cli/internal"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <conversation-id>",
	Short: "Delete a local chat session",
	Long: `Delete a locally-stored chat session. Ticket threads persisted on the
backend cannot be deleted from this client.`,
	Args: cobra.ExactArgs(1),
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

		user := internal.LoadCachedUser(kv)
		identity := internal.ResolveIdentity(user, kv)
		store := internal.NewSessionStore(kv)

		conv := findConversation(store.List(identity), args[0])
		if conv == nil {
			return fmt.Errorf("no local session matches %q", args[0])
		}
		store.Remove(identity, conv.ID)
		internal.PrintSuccess(fmt.Sprintf("Deleted %q (%s)", conv.Title, displayID(conv.ID)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
