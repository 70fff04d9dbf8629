package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/echo-support/echo-cli/internal"
	"github.com/spf13/cobra"
)

var (
	ticketStatusFilter string
	resolveMessage     string
)

var statusStyles = map[string]lipgloss.Style{
	"open":        lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	"escalated":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	"in_progress": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	"resolved":    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Agent-side ticket operations",
	Long: `Work the support queue: list tickets, resolve or re-status them, and
look up customer profiles. These operations require an agent or admin
account; the backend rejects customer tokens.`,
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List support tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, user, cleanup, err := agentClient()
		if err != nil {
			return err
		}
		defer cleanup()

		var tickets []internal.Ticket
		err = internal.ShowProgress(cmd.Context(), "Loading tickets...", func() error {
			var err error
			tickets, err = client.Tickets(cmd.Context(), user.AccessToken)
			return err
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(tickets) == 0 {
			fmt.Fprintln(out, "No tickets in the queue.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("SUBJECT")+"\t"+headerStyle.Render("DOMAIN")+"\t"+headerStyle.Render("STATUS")+"\t"+headerStyle.Render("UPDATED")+"\t")
		for _, t := range tickets {
			if ticketStatusFilter != "" && t.Status != ticketStatusFilter {
				continue
			}
			style, ok := statusStyles[t.Status]
			if !ok {
				style = dateStyle
			}
			updated := t.UpdatedAt
			if ts := internal.ParseTimestamp(t.UpdatedAt); !ts.IsZero() {
				updated = ts.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
				idStyle.Render(displayID(t.ID)),
				titleStyle.Render(internal.TruncateTitle(t.Subject, 40)),
				internal.DomainLabel(t.Domain),
				style.Render(t.Status),
				dateStyle.Render(updated),
			)
		}
		return w.Flush()
	},
}

var ticketsStatusCmd = &cobra.Command{
	Use:   "status <ticket-id> <status>",
	Short: "Change a ticket's status",
	Long: `Change a ticket's status. Resolving requires --message: the backend
appends it to the customer's conversation before closing the thread.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, user, cleanup, err := agentClient()
		if err != nil {
			return err
		}
		defer cleanup()

		ticketID, status := args[0], args[1]
		if err := client.UpdateTicketStatus(cmd.Context(), user.AccessToken, ticketID, status, resolveMessage); err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Ticket %s is now %s", displayID(ticketID), status))
		return nil
	},
}

var ticketsResolveCmd = &cobra.Command{
	Use:   "resolve <ticket-id>",
	Short: "Resolve a ticket with a closing message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, user, cleanup, err := agentClient()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := client.UpdateTicketStatus(cmd.Context(), user.AccessToken, args[0], "resolved", resolveMessage); err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Resolved ticket %s", displayID(args[0])))
		return nil
	},
}

var ticketsProfileCmd = &cobra.Command{
	Use:   "profile <customer-id>",
	Short: "Show the support-facing profile of a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, user, cleanup, err := agentClient()
		if err != nil {
			return err
		}
		defer cleanup()

		detail, err := client.CustomerProfile(cmd.Context(), user.AccessToken, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:           %s\n", detail.Name)
		fmt.Fprintf(out, "Email:          %s\n", detail.Email)
		fmt.Fprintf(out, "Tier:           %s\n", detail.Tier)
		fmt.Fprintf(out, "Last sentiment: %s\n", detail.LastSentiment)
		return nil
	},
}

// agentClient opens the KV store, requires a signed-in user and hands back
// a backend client. The returned cleanup closes the store.
func agentClient() (*internal.Client, *internal.UserProfile, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	kv, err := openKV(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	user, err := requireUser(kv)
	if err != nil {
		_ = kv.Close()
		return nil, nil, nil, err
	}
	return internal.NewClient(cfg.APIBase), user, func() { _ = kv.Close() }, nil
}

func init() {
	rootCmd.AddCommand(ticketsCmd)
	ticketsCmd.AddCommand(ticketsListCmd)
	ticketsCmd.AddCommand(ticketsStatusCmd)
	ticketsCmd.AddCommand(ticketsResolveCmd)
	ticketsCmd.AddCommand(ticketsProfileCmd)

	ticketsListCmd.Flags().StringVar(&ticketStatusFilter, "status", "", "Only show tickets with this status")
	ticketsStatusCmd.Flags().StringVarP(&resolveMessage, "message", "m", "", "Resolution message (required for resolved)")
	ticketsResolveCmd.Flags().StringVarP(&resolveMessage, "message", "m", "", "Resolution message sent to the customer")
}
