package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/echo-support/echo-cli/internal"
	"github.com/echo-support/echo-cli/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <conversation-id>",
	Short: "Export a conversation transcript to a file",
	Long: `Export a conversation, local or remote, in one of the supported
formats: json, jsonl, yaml, or markdown. Without --output the file is
written next to the current directory named after the conversation id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Reject a bad format before touching storage or the network.
		if _, err := export.NewExporter(exportFormat); err != nil {
			return err
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

		user := internal.LoadCachedUser(kv)
		identity := internal.ResolveIdentity(user, kv)
		store := internal.NewSessionStore(kv)

		conv := findConversation(store.List(identity), args[0])
		if conv == nil && user != nil && user.AccessToken != "" {
			client := internal.NewClient(cfg.APIBase)
			records, err := client.History(cmd.Context(), user.AccessToken)
			if err == nil {
				conv = findConversation(internal.GroupHistory(records), args[0])
			}
		}
		if conv == nil {
			return fmt.Errorf("no conversation matches %q", args[0])
		}

		return writeExport(conv, exportFormat, exportOutput)
	},
}

// writeExport renders a conversation to a file, deriving the path from
// the conversation id when none is given.
func writeExport(conv *internal.Conversation, format, path string) error {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}
	if path == "" {
		path = displayID(conv.ID) + "." + exporter.Extension()
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := exporter.Export(conv, f); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	internal.PrintSuccess(fmt.Sprintf("Exported %q to %s", conv.Title, path))
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown",
		fmt.Sprintf("Output format (%s)", strings.Join(export.Formats(), ", ")))
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
}
