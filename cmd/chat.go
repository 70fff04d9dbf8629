package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/echo-support/echo-cli/internal"
	"github.com/spf13/cobra"
)

var chatResume string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive support chat",
	Long: `Start an interactive support chat. Local sessions are loaded first so
you can type immediately; your persistent ticket history merges in as it
arrives from the backend. Commands inside the chat:

  /new              start a fresh session
  /list             list all conversations
  /switch <id>      activate another conversation
  /delete <id>      delete a local session
  /escalate         request a human agent
  /export <format>  export the active transcript
  /quit             leave the chat`,
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
		client := internal.NewClient(cfg.APIBase)

		token := ""
		if user != nil {
			token = user.AccessToken
		}

		mgr := internal.NewSessionManager(store, client, identity, cfg.Domain, token)
		active := mgr.Initialize()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("Echo Support")+" "+dateStyle.Render("("+internal.DomainLabel(cfg.Domain)+")"))
		fmt.Fprintln(out, systemMsgStyle.Render("Type a message, or /help for commands."))
		fmt.Fprintln(out)
		printTail(cmd, active)

		// Ticket history arrives in the background; local chat never
		// waits on it.
		merged := make(chan []*internal.Conversation, 1)
		if token != "" {
			go func() {
				records, err := client.History(cmd.Context(), token)
				if err != nil {
					internal.LogWarn("Failed to load ticket history: %v", err)
					merged <- nil
					return
				}
				merged <- internal.GroupHistory(records)
			}()
		} else {
			merged <- nil
		}

		// The realtime channel is best effort. Chat works over HTTP
		// alone when the dial fails.
		var socket *internal.Socket
		if token != "" {
			if s, err := internal.DialSocket(cmd.Context(), cfg.WSBase, identity); err != nil {
				internal.LogDebug("Realtime channel unavailable: %v", err)
			} else {
				socket = s
				defer func() { _ = socket.Close() }()
			}
		}

		if chatResume != "" {
			// Resuming may target a ticket thread, so wait for the
			// history load instead of draining opportunistically.
			if convs := <-merged; len(convs) > 0 {
				mgr.MergeRemote(convs)
			}
			if conv := findConversation(append(mgr.Local(), mgr.Remote()...), chatResume); conv != nil {
				if err := mgr.Activate(conv.ID); err != nil {
					return err
				}
				fmt.Fprintln(out)
				printTranscript(cmd, mgr.Active())
			} else {
				return fmt.Errorf("no conversation matches %q", chatResume)
			}
		}

		scanner := bufio.NewScanner(os.Stdin)
		for {
			drainMerge(mgr, merged)
			drainSocket(cmd, mgr, socket)
			printPrompt(cmd, mgr)

			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "/") {
				quit, err := runChatCommand(cmd, mgr, line)
				if err != nil {
					internal.PrintError(err.Error())
				}
				if quit {
					return nil
				}
				continue
			}

			// Submitting a line means the user just stopped typing.
			if socket != nil {
				_ = socket.SendTyping(identity, true)
			}
			err := sendAndRender(cmd, mgr, line)
			if socket != nil {
				// Mirror the message so a live agent on an escalated
				// case sees it without polling.
				if err == nil {
					if conv := mgr.Active(); conv != nil && mgr.Escalated(conv.ID) {
						_ = socket.SendMessage(internal.NewMessage(internal.SenderUser, line), cfg.Domain)
					}
				}
			}
			if err != nil {
				internal.LogDebug("Send failed: %v", err)
			}
		}
	},
}

// drainMerge folds any completed background history load into the
// manager without blocking.
func drainMerge(mgr *internal.SessionManager, merged chan []*internal.Conversation) {
	select {
	case convs := <-merged:
		if len(convs) > 0 {
			mgr.MergeRemote(convs)
			internal.PrintInfo(fmt.Sprintf("Loaded %d ticket thread(s) from your history.", len(convs)))
		}
	default:
	}
}

// drainSocket applies any queued realtime events without blocking.
func drainSocket(cmd *cobra.Command, mgr *internal.SessionManager, socket *internal.Socket) {
	if socket == nil {
		return
	}
	out := cmd.OutOrStdout()
	for {
		select {
		case event, ok := <-socket.Events():
			if !ok {
				return
			}
			switch event.Type {
			case internal.EventTyping:
				fmt.Fprintln(out, systemMsgStyle.Render("An agent is typing..."))
			case internal.EventStopTyping:
				// No rendering for stop; the next output replaces it.
			case internal.EventAgentConnected:
				name := event.AgentName
				if name == "" {
					name = "A support agent"
				}
				fmt.Fprintln(out, agentMsgStyle.Render(name+" joined the conversation."))
			default:
				if event.Message != nil {
					renderMessage(cmd, *event.Message)
				}
			}
		default:
			return
		}
	}
}

func printPrompt(cmd *cobra.Command, mgr *internal.SessionManager) {
	out := cmd.OutOrStdout()
	conv := mgr.Active()
	label := "?"
	if conv != nil {
		label = displayID(conv.ID)
	}
	state := ""
	if !mgr.Connected() {
		state = readonlyStyle.Render(" offline")
	}
	if conv != nil && mgr.Escalated(conv.ID) {
		state += readonlyStyle.Render(" escalated")
	}
	if !mgr.IsWritable() {
		state += systemMsgStyle.Render(" read-only")
	}
	fmt.Fprintf(out, "%s%s> ", idStyle.Render(label), state)
}

// runChatCommand handles a slash command. The bool return requests exit.
func runChatCommand(cmd *cobra.Command, mgr *internal.SessionManager, line string) (bool, error) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	out := cmd.OutOrStdout()

	switch name {
	case "/quit", "/exit", "/q":
		return true, nil

	case "/help":
		fmt.Fprintln(out, cmd.Long)
		return false, nil

	case "/new":
		conv := mgr.NewChat()
		fmt.Fprintln(out)
		printTail(cmd, conv)
		return false, nil

	case "/list":
		for _, conv := range mgr.Local() {
			marker := ""
			if active := mgr.Active(); active != nil && active.ID == conv.ID {
				marker = countStyle.Render(" *")
			}
			fmt.Fprintf(out, "  %s  %s%s\n", idStyle.Render(displayID(conv.ID)), conv.Title, marker)
		}
		for _, conv := range mgr.Remote() {
			fmt.Fprintf(out, "  %s  %s%s\n", idStyle.Render(displayID(conv.ID)), conv.Title, readonlyStyle.Render(" [read-only]"))
		}
		return false, nil

	case "/switch":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /switch <id>")
		}
		conv := findConversation(append(mgr.Local(), mgr.Remote()...), args[0])
		if conv == nil {
			return false, fmt.Errorf("no conversation matches %q", args[0])
		}
		if err := mgr.Activate(conv.ID); err != nil {
			return false, err
		}
		fmt.Fprintln(out)
		printTranscript(cmd, mgr.Active())
		return false, nil

	case "/delete":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /delete <id>")
		}
		conv := findConversation(mgr.Local(), args[0])
		if conv == nil {
			return false, fmt.Errorf("no local session matches %q", args[0])
		}
		if err := mgr.Remove(conv.ID); err != nil {
			return false, err
		}
		internal.PrintSuccess(fmt.Sprintf("Deleted %q", conv.Title))
		printTail(cmd, mgr.Active())
		return false, nil

	case "/escalate":
		before := len(activeMessages(mgr))
		if err := mgr.Escalate(cmd.Context()); err != nil {
			return false, err
		}
		renderNew(cmd, mgr, before)
		return false, nil

	case "/export":
		format := "markdown"
		if len(args) > 0 {
			format = args[0]
		}
		return false, exportActive(mgr, format)

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", name)
	}
}

// sendAndRender runs the send round-trip and prints whatever the exchange
// appended, including failure notices.
func sendAndRender(cmd *cobra.Command, mgr *internal.SessionManager, text string) error {
	if !mgr.IsWritable() {
		internal.PrintWarning("This conversation is read-only. Use /new to start a chat.")
		return internal.ErrNotWritable
	}

	before := len(activeMessages(mgr))
	err := internal.ShowProgress(cmd.Context(), "Echo is thinking...", func() error {
		return mgr.Send(cmd.Context(), text)
	})
	renderNew(cmd, mgr, before+1) // skip echoing the user's own line
	return err
}

func activeMessages(mgr *internal.SessionManager) []internal.Message {
	if conv := mgr.Active(); conv != nil {
		return conv.Messages
	}
	return nil
}

// renderNew prints the messages appended past a known high-water mark.
func renderNew(cmd *cobra.Command, mgr *internal.SessionManager, from int) {
	msgs := activeMessages(mgr)
	if from < 0 || from > len(msgs) {
		return
	}
	for _, msg := range msgs[from:] {
		renderMessage(cmd, msg)
	}
}

func renderMessage(cmd *cobra.Command, msg internal.Message) {
	label, style := senderLabel(msg.Sender)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", style.Render(label+":"), msg.Text)
}

// printTail shows the last few messages of a conversation as orientation
// when it becomes active.
func printTail(cmd *cobra.Command, conv *internal.Conversation) {
	if conv == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(conv.Title)+" "+idStyle.Render(displayID(conv.ID)))
	msgs := conv.Messages
	if len(msgs) > 6 {
		fmt.Fprintln(out, systemMsgStyle.Render(fmt.Sprintf("  ... %d earlier messages", len(msgs)-6)))
		msgs = msgs[len(msgs)-6:]
	}
	for _, msg := range msgs {
		renderMessage(cmd, msg)
	}
}

// exportActive writes the active transcript next to the working directory.
func exportActive(mgr *internal.SessionManager, format string) error {
	conv := mgr.Active()
	if conv == nil {
		return fmt.Errorf("no active conversation")
	}
	return writeExport(conv, format, "")
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatResume, "resume", "", "Conversation id to resume")
}
