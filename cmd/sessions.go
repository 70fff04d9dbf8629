package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/echo-support/echo-cli/internal"
	"github.com/spf13/cobra"
)

var sessionsLocalOnly bool

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	readonlyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List local chats and persistent ticket threads",
	Long: `List every conversation known to this client: locally-authored chat
sessions (writable) followed by ticket threads persisted on the backend
(read-only). Ticket threads require being signed in; without a session
only the local list is shown.`,
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

		local := store.List(identity)

		var remote []*internal.Conversation
		if !sessionsLocalOnly && user != nil && user.AccessToken != "" {
			client := internal.NewClient(cfg.APIBase)
			err := internal.ShowProgress(cmd.Context(), "Loading ticket history...", func() error {
				records, err := client.History(cmd.Context(), user.AccessToken)
				if err != nil {
					return err
				}
				remote = internal.GroupHistory(records)
				return nil
			})
			if err != nil {
				// History failure degrades to the local list, it
				// never takes the command down.
				internal.LogWarn("Failed to load ticket history: %v", err)
			}
		}

		out := cmd.OutOrStdout()
		if len(local) == 0 && len(remote) == 0 {
			fmt.Fprintln(out, "No conversations found. Start one with 'echo-cli chat'.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("TITLE")+"\t"+headerStyle.Render("MSGS")+"\t"+headerStyle.Render("UPDATED")+"\t")

		for _, conv := range local {
			printSessionRow(w, conv, "")
		}
		for _, conv := range remote {
			printSessionRow(w, conv, readonlyStyle.Render(" [read-only]"))
		}
		return w.Flush()
	},
}

func printSessionRow(w *tabwriter.Writer, conv *internal.Conversation, marker string) {
	updated := conv.Timestamp
	if t := internal.ParseTimestamp(conv.Timestamp); !t.IsZero() {
		updated = t.Format("2006-01-02 15:04")
	}
	fmt.Fprintf(w, "%s\t%s%s\t%s\t%s\t\n",
		idStyle.Render(displayID(conv.ID)),
		titleStyle.Render(conv.Title),
		marker,
		countStyle.Render(fmt.Sprintf("%d", len(conv.Messages))),
		dateStyle.Render(updated),
	)
}

// displayID abbreviates a conversation id for table output.
func displayID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().BoolVar(&sessionsLocalOnly, "local", false, "Skip the backend and list only local sessions")
}
