package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// KV is the client's persistent key-value store, a single sqlite table
// that plays the role browser local storage plays for the web client:
// flat string keys, serialized JSON values, last write wins.
type KV struct {
	db *sql.DB
}

// OpenKV opens the local key-value database, creating it if needed.
func OpenKV(path string) (*KV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Key: path, Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Key: path, Op: "open", Err: err}
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS localKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, &StorageError{Key: path, Op: "open", Err: fmt.Errorf("failed to create table: %w", err)}
	}

	return &KV{db: db}, nil
}

// Get returns the value stored under key and whether it exists.
func (kv *KV) Get(key string) (string, bool, error) {
	var value sql.NullString
	err := kv.db.QueryRow("SELECT value FROM localKV WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Key: key, Op: "get", Err: err}
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// Set stores value under key, replacing any previous value.
func (kv *KV) Set(key, value string) error {
	_, err := kv.db.Exec(
		"INSERT INTO localKV (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete removes key from the store. Deleting a missing key is a no-op.
func (kv *KV) Delete(key string) error {
	if _, err := kv.db.Exec("DELETE FROM localKV WHERE key = ?", key); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Close closes the underlying database.
func (kv *KV) Close() error {
	return kv.db.Close()
}
