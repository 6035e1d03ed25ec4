package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/mood-reflect/internal/domain"
)

type memoryEntry struct {
	data      []byte
	updatedAt time.Time
}

// MemoryStore keeps encoded session state in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	logger   *slog.Logger
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		logger:   loggerOrDefault(logger),
		now:      time.Now,
	}
}

// Load returns a decoded copy of the stored state.
func (m *MemoryStore) Load(_ context.Context, sessionID string) (*domain.ConversationState, error) {
	m.mu.RLock()
	entry, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(m.logger, sessionID, entry.data), nil
}

// Save replaces the stored state for sessionID.
func (m *MemoryStore) Save(_ context.Context, sessionID string, state *domain.ConversationState) error {
	now := m.now()
	data, err := encode(state, now)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[sessionID] = memoryEntry{data: data, updatedAt: now}
	m.mu.Unlock()
	return nil
}

// Delete removes the state for sessionID.
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

// Sweep drops sessions not saved within ttl.
func (m *MemoryStore) Sweep(_ context.Context, ttl time.Duration) (int64, error) {
	threshold := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, entry := range m.sessions {
		if entry.updatedAt.Before(threshold) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
