package internal

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// contextWindow caps the trailing conversation context sent with a chat
// request.
const contextWindow = 20

// ChatBackend is the slice of the backend API the session manager needs.
// *Client satisfies it.
type ChatBackend interface {
	SendChat(ctx context.Context, token string, req *ChatRequest) (*ChatResponse, error)
}

// SessionManager unifies locally-authored sessions and server-persisted
// ticket threads into one addressable collection, tracks the active
// conversation, gates input on derived read-only state, and mediates the
// send round-trip. It is driven from a single goroutine; the concurrency
// it manages is overlapping network calls, not parallel callers.
type SessionManager struct {
	store    *SessionStore
	backend  ChatBackend
	identity string
	domain   string
	token    string

	conversations map[string]*Conversation
	localOrder    []string // local ids, most recently created first
	activeID      string
	pending       bool
	connected     bool
	escalated     map[string]bool
	noticed       map[string]bool // remote threads already given their read-only notice
}

// NewSessionManager creates a manager bound to one identity and support
// domain.
func NewSessionManager(store *SessionStore, backend ChatBackend, identity, domain, token string) *SessionManager {
	return &SessionManager{
		store:         store,
		backend:       backend,
		identity:      identity,
		domain:        domain,
		token:         token,
		conversations: make(map[string]*Conversation),
		connected:     true,
		escalated:     make(map[string]bool),
		noticed:       make(map[string]bool),
	}
}

// Initialize loads the stored local sessions and guarantees an active,
// writable conversation: the most recent stored one, or a freshly created
// chat when none exist. Remote threads merge in later without disturbing
// the result.
func (m *SessionManager) Initialize() *Conversation {
	for _, conv := range m.store.List(m.identity) {
		m.conversations[conv.ID] = conv
		m.localOrder = append(m.localOrder, conv.ID)
	}

	if len(m.localOrder) == 0 {
		return m.NewChat()
	}
	m.activeID = m.localOrder[0]
	return m.conversations[m.activeID]
}

// NewChat creates, activates, and greets a fresh local conversation.
func (m *SessionManager) NewChat() *Conversation {
	conv := m.store.Create(m.identity, m.domain)
	m.conversations[conv.ID] = conv
	m.localOrder = append([]string{conv.ID}, m.localOrder...)
	m.activeID = conv.ID

	welcome := NewMessage(SenderBot, fmt.Sprintf("Welcome to %s! How can I help you today?", DomainLabel(m.domain)))
	conv.Messages = append(conv.Messages, welcome)
	m.store.Append(m.identity, conv.ID, welcome)
	return conv
}

// MergeRemote folds loaded ticket threads into the collection. The merge
// is a union keyed by id: existing entries are never overwritten, so local
// and remote loads may complete in either order. The active conversation
// is left untouched.
func (m *SessionManager) MergeRemote(conversations []*Conversation) {
	for _, conv := range conversations {
		if _, exists := m.conversations[conv.ID]; exists {
			LogDebug("Skipping remote thread %s, id already known", conv.ID)
			continue
		}
		m.conversations[conv.ID] = conv
	}
}

// Active returns the active conversation, or nil when none is selected.
func (m *SessionManager) Active() *Conversation {
	if m.activeID == "" {
		return nil
	}
	return m.conversations[m.activeID]
}

// Activate switches the active conversation. Entering a remote thread
// injects a single read-only notice at the head of the displayed
// transcript; the notice is display-only, never persisted, and never
// duplicated by repeat activations.
func (m *SessionManager) Activate(id string) error {
	conv, ok := m.conversations[id]
	if !ok {
		return fmt.Errorf("unknown conversation: %s", id)
	}
	m.activeID = id

	if conv.Origin == OriginRemote && !m.noticed[id] {
		m.noticed[id] = true
		notice := NewMessage(SenderSystem, fmt.Sprintf(
			"Loaded ticket %q (%s). This is a read-only history of the ticket conversation. Start a new chat to interact.",
			conv.Title, shortID(id)))
		conv.Messages = append([]Message{notice}, conv.Messages...)
	}
	return nil
}

// IsWritable reports whether the active conversation accepts input: it
// must be locally owned and no send may be in flight.
func (m *SessionManager) IsWritable() bool {
	conv := m.Active()
	return conv != nil && conv.Writable() && !m.pending
}

// Pending reports whether a send round-trip is outstanding.
func (m *SessionManager) Pending() bool {
	return m.pending
}

// Connected reports the connectivity indicator for the active session.
func (m *SessionManager) Connected() bool {
	return m.connected
}

// Escalated reports whether a conversation has been escalated. The flag
// is set once by a backend signal and never cleared client-side.
func (m *SessionManager) Escalated(id string) bool {
	return m.escalated[id]
}

// Local returns the locally-authored conversations, most recent first.
func (m *SessionManager) Local() []*Conversation {
	out := make([]*Conversation, 0, len(m.localOrder))
	for _, id := range m.localOrder {
		if conv, ok := m.conversations[id]; ok {
			out = append(out, conv)
		}
	}
	return out
}

// Remote returns the loaded ticket threads, most recent activity first.
func (m *SessionManager) Remote() []*Conversation {
	var out []*Conversation
	for _, conv := range m.conversations {
		if conv.Origin == OriginRemote {
			out = append(out, conv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return ParseTimestamp(out[j].Timestamp).Before(ParseTimestamp(out[i].Timestamp))
	})
	return out
}

// Find returns a conversation by id.
func (m *SessionManager) Find(id string) (*Conversation, bool) {
	conv, ok := m.conversations[id]
	return conv, ok
}

// Send runs the full send flow: gate, optimistic append, persist, title
// from first message, backend round-trip, bot reply, escalation check,
// re-key to the canonical ticket id. The pending flag is cleared on every
// path out. Failures are repaired in place: a display-only system message
// lands in the transcript and the returned error is for logging only.
func (m *SessionManager) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if !m.IsWritable() {
		return ErrNotWritable
	}

	conv := m.Active()

	userMsg := NewMessage(SenderUser, text)
	conv.Messages = append(conv.Messages, userMsg)
	m.store.Append(m.identity, conv.ID, userMsg)

	firstUserMessage := conv.UserMessageCount() == 1
	if firstUserMessage && conv.Title == DefaultChatTitle {
		m.store.Rename(m.identity, conv.ID, text)
		conv.Title = TruncateTitle(text, titleLimit)
	}

	m.pending = true
	defer func() { m.pending = false }()

	resp, err := m.backend.SendChat(ctx, m.token, m.buildRequest(conv, text))
	if err != nil {
		m.connected = false
		failure := NewMessage(SenderSystem, fmt.Sprintf("Could not reach support: %v", err))
		conv.Messages = append(conv.Messages, failure)
		return err
	}
	m.connected = true

	if resp.BotResponse != "" {
		botMsg := NewMessage(SenderBot, resp.BotResponse)
		conv.Messages = append(conv.Messages, botMsg)
		m.store.Append(m.identity, conv.ID, botMsg)
	}

	if escalated, caseID := DetectEscalation(resp); escalated {
		m.escalated[conv.ID] = true
		notice := NewMessage(SenderSystem, fmt.Sprintf("Your request has been escalated (Ticket ID: %s).", caseID))
		conv.Messages = append(conv.Messages, notice)
	}

	// A brand-new session gets its canonical ticket id on the first
	// exchange; adopt it so later replies and status lookups line up.
	if firstUserMessage && resp.CaseID != "" && resp.CaseID != conv.ID {
		m.rekey(conv, resp.CaseID)
	}

	return nil
}

// Escalate sends the canonical escalation request, subject to the same
// writability gating as any send. Repeat requests while one is pending,
// or after the conversation is already escalated, are ignored.
func (m *SessionManager) Escalate(ctx context.Context) error {
	if m.pending {
		LogDebug("Ignoring escalation request while a send is pending")
		return nil
	}
	if conv := m.Active(); conv != nil && m.escalated[conv.ID] {
		LogDebug("Conversation %s already escalated", conv.ID)
		return nil
	}
	return m.Send(ctx, EscalationRequestMessage)
}

// Remove deletes a local conversation. If it was active, the oldest
// remaining local conversation takes over, or a fresh chat is created
// when none remain. Remote threads cannot be removed from this client.
func (m *SessionManager) Remove(id string) error {
	conv, ok := m.conversations[id]
	if !ok {
		return fmt.Errorf("unknown conversation: %s", id)
	}
	if conv.Origin == OriginRemote {
		return fmt.Errorf("ticket threads are managed by the backend and cannot be deleted here")
	}

	m.store.Remove(m.identity, id)
	delete(m.conversations, id)
	delete(m.escalated, id)
	order := m.localOrder[:0]
	for _, localID := range m.localOrder {
		if localID != id {
			order = append(order, localID)
		}
	}
	m.localOrder = order

	if m.activeID == id {
		if len(m.localOrder) > 0 {
			m.activeID = m.localOrder[len(m.localOrder)-1]
		} else {
			m.NewChat()
		}
	}
	return nil
}

// buildRequest assembles the chat payload, carrying the trailing context
// window with system messages stripped out.
func (m *SessionManager) buildRequest(conv *Conversation, text string) *ChatRequest {
	var history []HistoryTurn
	for _, msg := range conv.Messages {
		if msg.Sender == SenderSystem {
			continue
		}
		role := "bot"
		if msg.Sender == SenderUser {
			role = "customer"
		}
		history = append(history, HistoryTurn{
			Role:      role,
			Content:   msg.Text,
			Timestamp: msg.Timestamp,
		})
	}
	if len(history) > contextWindow {
		history = history[len(history)-contextWindow:]
	}

	return &ChatRequest{
		UserQuery: text,
		SessionID: conv.ID,
		CustomerProfile: CustomerProfilePayload{
			CustomerID:           m.identity,
			PreviousInteractions: []string{},
			PurchaseHistory:      []string{},
			PreferenceSettings:   map[string]string{},
			SentimentHistory:     []string{},
			ActiveCaseID:         conv.ID,
		},
		ConversationHistory: history,
		Domain:              m.domain,
	}
}

// rekey adopts the backend's canonical ticket id for a conversation while
// preserving its message history and flags.
func (m *SessionManager) rekey(conv *Conversation, newID string) {
	oldID := conv.ID
	m.store.Rekey(m.identity, oldID, newID)
	conv.ID = newID

	// The ticket may already be loaded as a remote snapshot when the
	// history fetch won the race. The live local session supersedes it.
	if _, exists := m.conversations[newID]; exists {
		LogWarn("Ticket %s already loaded from history, replacing with the live session", shortID(newID))
		delete(m.noticed, newID)
	}

	delete(m.conversations, oldID)
	m.conversations[newID] = conv
	for i, id := range m.localOrder {
		if id == oldID {
			m.localOrder[i] = newID
		}
	}
	if m.escalated[oldID] {
		delete(m.escalated, oldID)
		m.escalated[newID] = true
	}
	if m.activeID == oldID {
		m.activeID = newID
	}
	LogInfo("Conversation %s re-keyed to ticket %s", shortID(oldID), shortID(newID))
}

// shortID abbreviates ids for display and logs.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
