package testutil

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/echo-support/echo-cli/internal"
)

// CreateStateFixture creates a local state database seeded with one cached
// user and one stored chat session, and returns its path.
func CreateStateFixture(t *testing.T, dir, identity string) string {
	t.Helper()
	dbPath := filepath.Join(dir, "echo.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS localKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	conversations := []internal.Conversation{
		{
			ID:        "fixture-session-1",
			Title:     "Billing question",
			Domain:    internal.DomainGeneral,
			Timestamp: now,
			Messages: []internal.Message{
				{ID: "m1", Text: "Welcome to Support Chat! How can I help you today?", Sender: internal.SenderBot, Timestamp: now},
				{ID: "m2", Text: "Billing question", Sender: internal.SenderUser, Timestamp: now},
			},
		},
	}
	historyJSON, err := json.Marshal(conversations)
	if err != nil {
		t.Fatalf("Failed to marshal fixture history: %v", err)
	}

	user := internal.UserProfile{
		ID:    identity,
		Name:  "Fixture User",
		Email: identity + "@example.com",
		Role:  "customer",
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("Failed to marshal fixture user: %v", err)
	}

	insertSQL := "INSERT INTO localKV (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, "chatHistory:"+identity, string(historyJSON)); err != nil {
		t.Fatalf("Failed to insert chat history: %v", err)
	}
	if _, err := db.Exec(insertSQL, "user", string(userJSON)); err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	return dbPath
}
