package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/echo-support/echo-cli/internal"
	"github.com/spf13/cobra"
)

var (
	userMsgStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	botMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	agentMsgStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	systemMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var showCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Print the transcript of a conversation",
	Long: `Print every message of a conversation, local or remote. Partial ids
are accepted as long as they match exactly one conversation; remote
ticket threads are searched when no local session matches.`,
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
		if conv == nil && user != nil && user.AccessToken != "" {
			client := internal.NewClient(cfg.APIBase)
			records, err := client.History(cmd.Context(), user.AccessToken)
			if err != nil {
				return fmt.Errorf("conversation %q not found locally and ticket lookup failed: %w", args[0], err)
			}
			conv = findConversation(internal.GroupHistory(records), args[0])
		}
		if conv == nil {
			return fmt.Errorf("no conversation matches %q", args[0])
		}

		printTranscript(cmd, conv)
		return nil
	},
}

// findConversation matches id exactly, then by unique prefix.
func findConversation(convs []*internal.Conversation, id string) *internal.Conversation {
	for _, c := range convs {
		if c.ID == id {
			return c
		}
	}
	var match *internal.Conversation
	for _, c := range convs {
		if strings.HasPrefix(c.ID, id) {
			if match != nil {
				return nil // ambiguous
			}
			match = c
		}
	}
	return match
}

func printTranscript(cmd *cobra.Command, conv *internal.Conversation) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(conv.Title))
	fmt.Fprintln(out, idStyle.Render(conv.ID))
	fmt.Fprintln(out)

	for _, msg := range conv.Messages {
		label, style := senderLabel(msg.Sender)
		stamp := ""
		if t := internal.ParseTimestamp(msg.Timestamp); !t.IsZero() {
			stamp = timestampStyle.Render(t.Format("15:04"))
		}
		fmt.Fprintf(out, "%s %s\n%s\n\n", style.Render(label), stamp, msg.Text)
	}
}

func senderLabel(sender internal.Sender) (string, lipgloss.Style) {
	switch sender {
	case internal.SenderUser:
		return "You", userMsgStyle
	case internal.SenderAgent:
		return "Agent", agentMsgStyle
	case internal.SenderSystem:
		return "--", systemMsgStyle
	default:
		return "Echo", botMsgStyle
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
