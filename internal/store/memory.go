package store

import (
	"sync"

	"github.com/nianverse/storechat/internal/domain"
)

// MemoryKV is an in-memory key/value store for tests.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV creates an in-memory key/value store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Read(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryKV) Write(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MemoryMessageLog is an in-memory message log for tests.
type MemoryMessageLog struct {
	mu   sync.RWMutex
	logs map[string][]domain.Message
}

// NewMemoryMessageLog creates an in-memory message log.
func NewMemoryMessageLog() *MemoryMessageLog {
	return &MemoryMessageLog{logs: make(map[string][]domain.Message)}
}

func (m *MemoryMessageLog) Append(sessionID string, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[sessionID] = append(m.logs[sessionID], msg)
	return nil
}

func (m *MemoryMessageLog) BySession(sessionID string) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.logs[sessionID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *MemoryMessageLog) Replace(sessionID string, msgs []domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]domain.Message, len(msgs))
	copy(cp, msgs)
	m.logs[sessionID] = cp
	return nil
}

func (m *MemoryMessageLog) Clear(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logs, sessionID)
	return nil
}
