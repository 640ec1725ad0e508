package domain

import "time"

// Session is a server-issued, time-bounded identifier scoping one conversation.
type Session struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the session is usable at the given instant.
// A zero ExpiresAt is always invalid.
func (s Session) Valid(now time.Time) bool {
	return s.ID != "" && now.Before(s.ExpiresAt)
}
