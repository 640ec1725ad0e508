package store

import (
	"fmt"
	"time"

	"github.com/nianverse/storechat/internal/domain"
)

// SQLiteMessageLog persists the conversation log per session.
// The log is append-only; entries are returned in insertion order.
type SQLiteMessageLog struct {
	db *DB
}

// NewSQLiteMessageLog creates a message log using the given database.
func NewSQLiteMessageLog(db *DB) *SQLiteMessageLog {
	return &SQLiteMessageLog{db: db}
}

// Append adds a message to a session's log.
func (s *SQLiteMessageLog) Append(sessionID string, msg domain.Message) error {
	ts := msg.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO messages (session_id, msg_id, role, content, origin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, msg.ID, string(msg.Role), msg.Content, string(msg.Origin),
		ts.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// BySession returns all messages for a session in insertion order.
func (s *SQLiteMessageLog) BySession(sessionID string) ([]domain.Message, error) {
	rows, err := s.db.sql.Query(
		`SELECT msg_id, role, content, origin, created_at
		 FROM messages WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var msg domain.Message
		var role, origin, ts string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &origin, &ts); err != nil {
			continue
		}
		msg.Role = domain.Role(role)
		msg.Origin = domain.Origin(origin)
		msg.CreatedAt, _ = time.Parse(time.RFC3339, ts)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// Replace overwrites a session's log with the given messages. Used when a
// remote history fetch supersedes the local copy.
func (s *SQLiteMessageLog) Replace(sessionID string, msgs []domain.Message) error {
	tx, err := s.db.sql.Begin()
	if err != nil {
		return fmt.Errorf("replacing log: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing log: %w", err)
	}

	for _, msg := range msgs {
		ts := msg.CreatedAt
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := tx.Exec(
			`INSERT INTO messages (session_id, msg_id, role, content, origin, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID, msg.ID, string(msg.Role), msg.Content, string(msg.Origin),
			ts.Format(time.RFC3339),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("replacing log: %w", err)
		}
	}

	return tx.Commit()
}

// Clear removes all messages for a session.
func (s *SQLiteMessageLog) Clear(sessionID string) error {
	if _, err := s.db.sql.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clearing log: %w", err)
	}
	return nil
}
