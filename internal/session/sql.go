package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/mood-reflect/internal/domain"
	"github.com/ashureev/mood-reflect/internal/store"
)

// SQLStore keeps session state in the repository's session table.
type SQLStore struct {
	repo   store.Repository
	logger *slog.Logger
}

// NewSQLStore wraps repo.
func NewSQLStore(repo store.Repository, logger *slog.Logger) *SQLStore {
	return &SQLStore{repo: repo, logger: loggerOrDefault(logger)}
}

// Load fetches and decodes the state for sessionID.
func (s *SQLStore) Load(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	data, err := s.repo.GetSessionState(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return decode(s.logger, sessionID, data), nil
}

// Save upserts the state for sessionID.
func (s *SQLStore) Save(ctx context.Context, sessionID string, state *domain.ConversationState) error {
	now := time.Now()
	data, err := encode(state, now)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertSessionState(ctx, sessionID, data, now); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Delete removes the state for sessionID.
func (s *SQLStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.repo.DeleteSessionState(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// Sweep removes sessions not saved within ttl.
func (s *SQLStore) Sweep(ctx context.Context, ttl time.Duration) (int64, error) {
	return s.repo.CleanupExpiredSessionStates(ctx, ttl)
}
