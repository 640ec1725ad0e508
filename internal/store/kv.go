package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Fixed keys for persisted client-local state. These mirror the keys the web
// client used, so the namespace stays recognizable across clients. Absent or
// garbled values are treated as "no session" by consumers.
const (
	KeyUserID    = "chatUserId"
	KeySessionID = "chatSessionId"
	KeyExpiresAt = "chatExpiresAt"
)

// SQLiteKV persists small string values under fixed keys.
// It implements convo.Storage.
type SQLiteKV struct {
	db *DB
}

// NewSQLiteKV creates a key/value store using the given database.
func NewSQLiteKV(db *DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

// Read returns the value for a key, or "" when the key is absent.
func (s *SQLiteKV) Read(key string) (string, error) {
	var value string
	err := s.db.sql.QueryRow(
		`SELECT value FROM client_state WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

// Write stores a value under a key, replacing any previous value.
func (s *SQLiteKV) Write(key, value string) error {
	_, err := s.db.sql.Exec(
		`INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *SQLiteKV) Delete(key string) error {
	if _, err := s.db.sql.Exec(`DELETE FROM client_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}
