package convo

import "fmt"

// SessionCreationError means the remote service could not produce a usable
// session. Terminal for the current action; the user retries manually.
type SessionCreationError struct {
	Err error
}

func (e *SessionCreationError) Error() string {
	return fmt.Sprintf("session creation failed: %v", e.Err)
}

func (e *SessionCreationError) Unwrap() error { return e.Err }

// NoActiveSessionError means an action needing a session ran without a valid
// one. The remote service is never contacted in this case.
type NoActiveSessionError struct{}

func (e *NoActiveSessionError) Error() string { return "no active session" }

// MessageSendError wraps a failed message exchange.
type MessageSendError struct {
	Err error
}

func (e *MessageSendError) Error() string {
	return fmt.Sprintf("message send failed: %v", e.Err)
}

func (e *MessageSendError) Unwrap() error { return e.Err }

// ValidationError wraps a failed validation call. The previously stored
// result, if any, stays in place.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("session validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// HistoryLoadError wraps a failed remote history fetch. Non-fatal: callers
// still receive the local copy of the log alongside this error.
type HistoryLoadError struct {
	Err error
}

func (e *HistoryLoadError) Error() string {
	return fmt.Sprintf("history load failed: %v", e.Err)
}

func (e *HistoryLoadError) Unwrap() error { return e.Err }
