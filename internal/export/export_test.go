package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/echo-support/echo-cli/internal"
	"gopkg.in/yaml.v3"
)

func sampleConversation() *internal.Conversation {
	return &internal.Conversation{
		ID:        "conv-1",
		Origin:    internal.OriginLocal,
		Title:     "Login trouble",
		Domain:    internal.DomainTechnical,
		Timestamp: "2024-03-01T10:02:00Z",
		Messages: []internal.Message{
			{ID: "m1", Text: "I can't log in", Sender: internal.SenderUser, Timestamp: "2024-03-01T10:00:00Z"},
			{ID: "m2", Text: "Let's reset your password.", Sender: internal.SenderBot, Timestamp: "2024-03-01T10:01:00Z"},
		},
	}
}

func TestJSONExporter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleConversation(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got internal.Conversation
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if got.ID != "conv-1" || len(got.Messages) != 2 {
		t.Errorf("round-tripped conversation = %+v", got)
	}
}

func TestJSONLExporter_OneMessagePerLine(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(sampleConversation(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("exported %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Errorf("line %d does not parse: %v", i, err)
		}
	}
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleConversation(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("exported YAML does not parse: %v", err)
	}
	if got["id"] != "conv-1" {
		t.Errorf("exported id = %v", got["id"])
	}
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleConversation(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"# Login trouble", "**user:**", "**bot:**", "I can't log in"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestMarkdownExporter_PreservesCodeBlocks(t *testing.T) {
	conv := sampleConversation()
	conv.Messages[0].Text = "error:\n```\npanic: **boom**\n```"

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(conv, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), "panic: **boom**") {
		t.Error("code block content was escaped")
	}
}
