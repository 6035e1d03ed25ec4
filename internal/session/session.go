// Package session persists per-session conversation state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/mood-reflect/internal/domain"
)

// ErrNotFound is returned by Load when no state exists for the session.
var ErrNotFound = errors.New("session not found")

// Store loads and saves conversation state keyed by session ID.
type Store interface {
	Load(ctx context.Context, sessionID string) (*domain.ConversationState, error)
	Save(ctx context.Context, sessionID string, state *domain.ConversationState) error
	Delete(ctx context.Context, sessionID string) error
}

// Sweeper removes sessions that have not been saved within ttl.
type Sweeper interface {
	Sweep(ctx context.Context, ttl time.Duration) (int64, error)
}

func encode(state *domain.ConversationState, now time.Time) ([]byte, error) {
	state.UpdatedAt = now.UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode session state: %w", err)
	}
	return data, nil
}

// decode never fails: malformed fields are reset and logged.
func decode(logger *slog.Logger, sessionID string, data []byte) *domain.ConversationState {
	state, healed := domain.DecodeConversationState(data)
	if len(healed) > 0 {
		logger.Warn("healed malformed session state",
			"session_id", sessionID,
			"fields", healed)
	}
	return state
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
