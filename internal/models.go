package internal

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
	SenderAgent  Sender = "agent"
	SenderSystem Sender = "system"
)

// Origin says where a conversation came from. Local conversations are
// authored on this machine and accept new messages; remote ones are
// server-persisted ticket threads and are read-only.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// DefaultChatTitle is the placeholder title given to a new conversation
// until the first real user message replaces it.
const DefaultChatTitle = "New Chat"

// Message represents a single chat message. Immutable once created.
// System messages are synthetic, display-only, and never sent back to
// the backend.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    Sender `json:"sender"`
	Timestamp string `json:"timestamp"` // RFC 3339
}

// Conversation represents a titled, ordered sequence of messages.
type Conversation struct {
	ID        string    `json:"id"`
	Origin    Origin    `json:"origin"`
	Title     string    `json:"title"`
	Domain    string    `json:"domain,omitempty"`
	Timestamp string    `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// Writable reports whether new messages may be appended from this client.
func (c *Conversation) Writable() bool {
	return c.Origin == OriginLocal
}

// UserMessageCount counts the user-authored messages in the transcript.
func (c *Conversation) UserMessageCount() int {
	count := 0
	for _, msg := range c.Messages {
		if msg.Sender == SenderUser {
			count++
		}
	}
	return count
}

// NewMessage creates a message with a fresh id and the current time.
func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// HistoryRecord is one raw entry from the backend /history feed. Records
// arrive flat and unordered; the session id ties them to a ticket thread.
type HistoryRecord struct {
	SessionID string            `json:"session_id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp string            `json:"timestamp"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// SenderFromRole maps a backend history role onto a display sender.
func SenderFromRole(role string) Sender {
	switch role {
	case "user", "customer":
		return SenderUser
	case "agent":
		return SenderAgent
	default:
		return SenderBot
	}
}

// ParseTimestamp parses an RFC 3339 timestamp, returning the zero time
// on failure so malformed records sort first instead of failing the load.
func ParseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}
	}
	return t
}

// TruncateTitle shortens a title to at most max runes, marking the cut
// with an ellipsis the way the chat sidebar displays it.
func TruncateTitle(title string, max int) string {
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max]) + "..."
}
