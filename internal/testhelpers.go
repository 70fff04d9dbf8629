package internal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// OpenTestKV opens a throwaway key-value database for a test.
func OpenTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := OpenKV(filepath.Join(t.TempDir(), "echo.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

// CreateTestConversation creates a local conversation with sample messages
func CreateTestConversation(id string) *Conversation {
	return &Conversation{
		ID:        id,
		Origin:    OriginLocal,
		Title:     "Test Conversation",
		Domain:    DomainGeneral,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Messages: []Message{
			{ID: id + "-1", Text: "Hello, I need help", Sender: SenderUser, Timestamp: time.Now().UTC().Format(time.RFC3339)},
			{ID: id + "-2", Text: "Happy to help!", Sender: SenderBot, Timestamp: time.Now().UTC().Format(time.RFC3339)},
		},
	}
}

// CreateTestHistoryRecord creates a raw history record for grouping tests
func CreateTestHistoryRecord(sessionID, role, content, timestamp string) HistoryRecord {
	return HistoryRecord{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: timestamp,
	}
}

// FakeBackend is a scripted ChatBackend for session manager tests. Each
// send consumes the next scripted response, or the scripted error.
type FakeBackend struct {
	Responses []*ChatResponse
	Err       error
	Requests  []*ChatRequest
}

// SendChat records the request and replays the script.
func (f *FakeBackend) SendChat(_ context.Context, _ string, req *ChatRequest) (*ChatResponse, error) {
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Responses) == 0 {
		return &ChatResponse{BotResponse: "ok"}, nil
	}
	resp := f.Responses[0]
	f.Responses = f.Responses[1:]
	return resp, nil
}
