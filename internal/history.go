package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/google/uuid"
)

// DefaultTicketTitle labels ticket threads whose records carry no subject.
const DefaultTicketTitle = "Ticket Conversation"

// GroupHistory folds the flat /history feed into per-ticket conversations.
// Records are grouped by session id, deduplicated by content, and sorted
// into non-decreasing timestamp order regardless of arrival order. The
// returned threads are read-only snapshots, most recent activity first.
func GroupHistory(records []HistoryRecord) []*Conversation {
	groups := make(map[string]*Conversation)
	seen := make(map[string]bool)

	for _, record := range records {
		if record.SessionID == "" {
			LogDebug("Skipping history record without session id")
			continue
		}

		// The backend may replay a record under the same ticket; a
		// content hash keeps the merged timeline free of duplicates.
		hash := hashRecord(record)
		if seen[hash] {
			continue
		}
		seen[hash] = true

		conv, ok := groups[record.SessionID]
		if !ok {
			conv = &Conversation{
				ID:     record.SessionID,
				Origin: OriginRemote,
				Title:  DefaultTicketTitle,
			}
			groups[record.SessionID] = conv
		}

		if conv.Title == DefaultTicketTitle {
			if subject := record.Meta["subject"]; subject != "" {
				conv.Title = subject
			}
		}

		conv.Messages = append(conv.Messages, Message{
			ID:        uuid.NewString(),
			Text:      record.Content,
			Sender:    SenderFromRole(record.Role),
			Timestamp: record.Timestamp,
		})
	}

	conversations := make([]*Conversation, 0, len(groups))
	for _, conv := range groups {
		sort.SliceStable(conv.Messages, func(i, j int) bool {
			return ParseTimestamp(conv.Messages[i].Timestamp).Before(ParseTimestamp(conv.Messages[j].Timestamp))
		})
		// The group timestamp reflects the earliest record, not
		// whichever record happened to arrive first.
		if len(conv.Messages) > 0 {
			conv.Timestamp = conv.Messages[0].Timestamp
		}
		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return ParseTimestamp(conversations[j].Timestamp).Before(ParseTimestamp(conversations[i].Timestamp))
	})

	return conversations
}

// hashRecord creates a content-based hash for a history record.
func hashRecord(record HistoryRecord) string {
	h := sha256.New()
	h.Write([]byte(record.SessionID))
	h.Write([]byte(record.Role))
	h.Write([]byte(record.Content))
	h.Write([]byte(record.Timestamp))
	return hex.EncodeToString(h.Sum(nil))
}
