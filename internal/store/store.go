// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/mood-reflect/internal/domain"
	"github.com/ashureev/mood-reflect/internal/mood"
)

// Repository defines persistence for the mood log and serialized session state.
type Repository interface {
	// AppendMoodLog inserts entry and sets its ID. A zero Timestamp is set to now (UTC).
	AppendMoodLog(ctx context.Context, entry *domain.MoodLogEntry) error

	// MoodLogsBetween returns entries with from <= timestamp <= to, oldest first.
	MoodLogsBetween(ctx context.Context, from, to time.Time) ([]domain.MoodLogEntry, error)

	// LatestMoodBetween returns the mood of the newest entry in [from, to].
	// ok is false when the range holds no entries.
	LatestMoodBetween(ctx context.Context, from, to time.Time) (label mood.Label, ok bool, err error)

	// GetSessionState returns the stored blob for sessionID, or nil when absent.
	GetSessionState(ctx context.Context, sessionID string) ([]byte, error)

	// UpsertSessionState creates or replaces the blob for sessionID.
	UpsertSessionState(ctx context.Context, sessionID string, data []byte, updatedAt time.Time) error

	// DeleteSessionState removes the blob for sessionID.
	DeleteSessionState(ctx context.Context, sessionID string) error

	// CleanupExpiredSessionStates removes blobs not updated within ttl.
	CleanupExpiredSessionStates(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
