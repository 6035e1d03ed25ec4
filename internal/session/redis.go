package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ashureev/mood-reflect/internal/domain"
)

const redisKeyPrefix = "mood:session:"

// RedisStore keeps session state as JSON strings with a sliding expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStore wraps client. Keys expire ttl after the last save; a zero
// ttl disables expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: loggerOrDefault(logger)}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Load fetches and decodes the state for sessionID.
func (r *RedisStore) Load(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	data, err := r.client.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return decode(r.logger, sessionID, data), nil
}

// Save writes the state and refreshes its expiry.
func (r *RedisStore) Save(ctx context.Context, sessionID string, state *domain.ConversationState) error {
	data, err := encode(state, time.Now())
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set session %s: %w", sessionID, err)
	}
	return nil
}

// Delete removes the state for sessionID.
func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}
