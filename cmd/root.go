package cmd

import (
	"fmt"
	"os"

	"github.com/echo-support/echo-cli/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	apiBase string
	dataDir string
	domain  string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "echo-cli",
	Short: "Terminal client for the Echo customer-support platform",
	Long: `A terminal client for the Echo customer-support platform.

Chat with the support bot, browse your local sessions alongside your
persistent ticket history, escalate a case to a human agent, and (for
agents) work the ticket queue, all from the command line.

Features:
  • Interactive support chat with local session history
  • Persistent ticket threads merged in read-only alongside local chats
  • Escalation to a human agent with ticket tracking
  • Export transcripts in multiple formats (JSONL, Markdown, YAML, JSON)
  • Agent workspace: list, inspect, and resolve tickets

Quick Start:
  echo-cli login --email you@example.com   # Sign in
  echo-cli chat                            # Start chatting
  echo-cli sessions                        # List all conversations
  echo-cli export <conversation-id>        # Export a transcript`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "", "Backend base URL (overrides config and environment)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for local state (default ~/.echo-cli)")
	rootCmd.PersistentFlags().StringVar(&domain, "domain", "", "Support domain: general, technical, finance, travel, admin")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig assembles the effective configuration with flag overrides
// applied on top.
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if apiBase != "" {
		cfg.APIBase = apiBase
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if domain != "" {
		if !internal.ValidDomain(domain) {
			return nil, fmt.Errorf("unknown support domain %q", domain)
		}
		cfg.Domain = domain
	}
	return cfg, nil
}

// openKV opens the local state database, creating the data directory on
// first use.
func openKV(cfg *internal.Config) (*internal.KV, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	kv, err := internal.OpenKV(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}
	return kv, nil
}

// requireUser returns the cached authenticated user or an actionable error.
func requireUser(kv *internal.KV) (*internal.UserProfile, error) {
	user := internal.LoadCachedUser(kv)
	if user == nil || user.AccessToken == "" {
		return nil, fmt.Errorf("not logged in: run 'echo-cli login' first")
	}
	return user, nil
}
