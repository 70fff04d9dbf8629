package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/echo-support/echo-cli/internal"
)

// MarkdownExporter exports conversations in Markdown format
type MarkdownExporter struct{}

// Export exports a conversation to Markdown format
func (e *MarkdownExporter) Export(conv *internal.Conversation, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", conv.Title)

	_, _ = fmt.Fprintf(w, "**ID:** %s  \n", conv.ID)
	_, _ = fmt.Fprintf(w, "**Origin:** %s  \n", conv.Origin)
	if conv.Domain != "" {
		_, _ = fmt.Fprintf(w, "**Domain:** %s  \n", conv.Domain)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(conv.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range conv.Messages {
		timestamp := ""
		if msg.Timestamp != "" {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp)
		}

		text := escapeMarkdown(msg.Text)

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Sender, timestamp, text)

		if i < len(conv.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes markdown special characters outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
