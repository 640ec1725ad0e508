package convo

import (
	"sync"

	"github.com/nianverse/storechat/internal/domain"
)

// StateTracker holds the latest server-reported conversation state and the
// latest validation result. Both are replaced wholesale, never merged; the
// remote service is the single source of truth for progress.
type StateTracker struct {
	mu         sync.RWMutex
	state      *domain.ConversationState
	validation *domain.ValidationResult
}

// NewStateTracker creates an empty tracker. State is absent until the first
// successful message exchange that carries one.
func NewStateTracker() *StateTracker {
	return &StateTracker{}
}

// Replace overwrites the tracked state with the given snapshot. A field the
// snapshot omits is cleared, not carried over from the previous state.
func (t *StateTracker) Replace(state domain.ConversationState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = &state
}

// Snapshot returns a copy of the current state, or nil when none has been
// reported yet.
func (t *StateTracker) Snapshot() *domain.ConversationState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state == nil {
		return nil
	}
	cp := *t.state
	return &cp
}

// SetValidation overwrites the stored validation result, latest wins.
func (t *StateTracker) SetValidation(result *domain.ValidationResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.validation = result
}

// Validation returns a copy of the latest validation result, or nil when no
// validation has succeeded yet.
func (t *StateTracker) Validation() *domain.ValidationResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.validation == nil {
		return nil
	}
	cp := *t.validation
	return &cp
}

// Reset drops both the state and the validation result. Used when a session
// is cleared.
func (t *StateTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = nil
	t.validation = nil
}
