package convo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nianverse/storechat/internal/domain"
	"github.com/nianverse/storechat/internal/logging"
	"github.com/nianverse/storechat/internal/store"
)

// SessionManager owns session identity and expiry. A session is created at
// most once per device identity while the persisted one remains unexpired;
// identity itself is a uuid generated on first use and kept forever.
type SessionManager struct {
	storage Storage
	service ChatService
	hint    string
	log     *logging.Logger
	now     func() time.Time
}

// NewSessionManager creates a session manager. businessTypeHint is forwarded
// to the service on session creation and may be empty.
func NewSessionManager(storage Storage, service ChatService, businessTypeHint string, log *logging.Logger) *SessionManager {
	return &SessionManager{
		storage: storage,
		service: service,
		hint:    businessTypeHint,
		log:     log.Sub("session"),
		now:     time.Now,
	}
}

// EnsureSession returns the persisted session when it is still valid, and
// otherwise requests a new one and persists it before returning. A failed
// remote call surfaces as SessionCreationError with nothing persisted.
func (m *SessionManager) EnsureSession(ctx context.Context) (domain.Session, error) {
	userID, err := m.userID()
	if err != nil {
		return domain.Session{}, &SessionCreationError{Err: err}
	}

	if sess, ok := m.Current(); ok {
		m.log.Debug().Str("session_id", sess.ID).Msg("reusing persisted session")
		return sess, nil
	}

	sess, err := m.service.CreateSession(ctx, userID, m.hint)
	if err != nil {
		return domain.Session{}, &SessionCreationError{Err: err}
	}

	if err := m.storage.Write(store.KeySessionID, sess.ID); err != nil {
		return domain.Session{}, &SessionCreationError{Err: err}
	}
	if err := m.storage.Write(store.KeyExpiresAt, sess.ExpiresAt.Format(time.RFC3339)); err != nil {
		return domain.Session{}, &SessionCreationError{Err: err}
	}

	m.log.Info().Str("session_id", sess.ID).Time("expires_at", sess.ExpiresAt).Msg("session created")
	return sess, nil
}

// Current returns the persisted session when one exists and is unexpired.
// Absent or garbled values read as "no session".
func (m *SessionManager) Current() (domain.Session, bool) {
	id, err := m.storage.Read(store.KeySessionID)
	if err != nil || id == "" {
		return domain.Session{}, false
	}
	raw, err := m.storage.Read(store.KeyExpiresAt)
	if err != nil || raw == "" {
		return domain.Session{}, false
	}
	expiresAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return domain.Session{}, false
	}

	sess := domain.Session{ID: id, ExpiresAt: expiresAt}
	if !sess.Valid(m.now()) {
		return domain.Session{}, false
	}
	return sess, true
}

// IsValid reports whether a persisted, unexpired session exists. Purely
// local; the remote service is not contacted.
func (m *SessionManager) IsValid() bool {
	_, ok := m.Current()
	return ok
}

// Clear removes the persisted session id and expiry. The device identity is
// kept so the next session is created for the same user.
func (m *SessionManager) Clear() error {
	if err := m.storage.Delete(store.KeySessionID); err != nil {
		return err
	}
	return m.storage.Delete(store.KeyExpiresAt)
}

// userID returns the stable per-device identifier, generating and persisting
// one on first use.
func (m *SessionManager) userID() (string, error) {
	id, err := m.storage.Read(store.KeyUserID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := m.storage.Write(store.KeyUserID, id); err != nil {
		return "", err
	}
	m.log.Debug().Str("user_id", id).Msg("generated device identity")
	return id, nil
}
