package internal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const titleLimit = 30

// SessionStore persists locally-authored conversations. Each identity owns
// one localKV entry holding its full serialized conversation list, rewritten
// on every mutation. Remote ticket threads never pass through here.
type SessionStore struct {
	kv *KV
}

// NewSessionStore creates a session store over the given key-value database.
func NewSessionStore(kv *KV) *SessionStore {
	return &SessionStore{kv: kv}
}

func historyKey(identity string) string {
	return "chatHistory:" + identity
}

// List returns the stored conversations for an identity, most recently
// created first. Missing or corrupt data yields an empty list, never an
// error: a broken cache must not take the chat down with it.
func (s *SessionStore) List(identity string) []*Conversation {
	value, ok, err := s.kv.Get(historyKey(identity))
	if err != nil {
		LogWarn("Failed to read chat history for %s: %v", identity, err)
		return nil
	}
	if !ok {
		return nil
	}

	var conversations []*Conversation
	if err := json.Unmarshal([]byte(value), &conversations); err != nil {
		LogWarn("Corrupt chat history for %s, treating as empty: %v", identity, err)
		return nil
	}

	for _, conv := range conversations {
		conv.Origin = OriginLocal
	}
	return conversations
}

// save writes the full conversation list back, synchronously with the
// mutation that triggered it.
func (s *SessionStore) save(identity string, conversations []*Conversation) {
	data, err := json.Marshal(conversations)
	if err != nil {
		LogError("Failed to serialize chat history for %s: %v", identity, err)
		return
	}
	if err := s.kv.Set(historyKey(identity), string(data)); err != nil {
		LogError("Failed to persist chat history for %s: %v", identity, err)
	}
}

// Create produces a new empty conversation with the placeholder title,
// prepends it to the stored list, and persists immediately.
func (s *SessionStore) Create(identity, domain string) *Conversation {
	conv := &Conversation{
		ID:        uuid.NewString(),
		Origin:    OriginLocal,
		Title:     DefaultChatTitle,
		Domain:    domain,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}

	updated := append([]*Conversation{conv}, s.List(identity)...)
	s.save(identity, updated)
	return conv
}

// Append adds a message to the named conversation and persists. Unknown
// conversation ids are logged and ignored; synthetic system messages are
// display-only and never written to storage.
func (s *SessionStore) Append(identity, conversationID string, msg Message) {
	if msg.Sender == SenderSystem {
		LogDebug("Skipping persistence of system message for %s", conversationID)
		return
	}

	conversations := s.List(identity)
	for _, conv := range conversations {
		if conv.ID == conversationID {
			conv.Messages = append(conv.Messages, msg)
			conv.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
			s.save(identity, conversations)
			return
		}
	}
	LogWarn("Append to unknown conversation %s for %s", conversationID, identity)
}

// Rename sets the conversation title from its first real user message.
// Only the placeholder title is ever replaced, so repeat calls are no-ops.
func (s *SessionStore) Rename(identity, conversationID, title string) {
	conversations := s.List(identity)
	for _, conv := range conversations {
		if conv.ID == conversationID && conv.Title == DefaultChatTitle {
			conv.Title = TruncateTitle(title, titleLimit)
			s.save(identity, conversations)
			return
		}
	}
}

// Remove deletes a conversation and persists. The caller is responsible
// for selecting a replacement if the removed conversation was active.
func (s *SessionStore) Remove(identity, conversationID string) {
	conversations := s.List(identity)
	updated := conversations[:0]
	for _, conv := range conversations {
		if conv.ID != conversationID {
			updated = append(updated, conv)
		}
	}
	s.save(identity, updated)
}

// Rekey renames a conversation's id to the canonical ticket id issued by
// the backend, preserving its message history. Later sends and status
// lookups address the conversation by the new id.
func (s *SessionStore) Rekey(identity, oldID, newID string) {
	conversations := s.List(identity)
	for _, conv := range conversations {
		if conv.ID == oldID {
			conv.ID = newID
			s.save(identity, conversations)
			return
		}
	}
	LogWarn("Rekey of unknown conversation %s for %s", oldID, identity)
}
