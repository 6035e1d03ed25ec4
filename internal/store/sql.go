package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/mood-reflect/internal/domain"
	"github.com/ashureev/mood-reflect/internal/mood"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLStore implements Repository on database/sql for SQLite and Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	writeMu sync.Mutex // serializes SQLite writers to avoid SQLITE_BUSY
}

// rebind rewrites ? placeholders into $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) lockWrites() func() {
	if s.dialect != dialectSQLite {
		return func() {}
	}
	s.writeMu.Lock()
	return s.writeMu.Unlock
}

func (s *SQLStore) initSchema(schema string) error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// AppendMoodLog inserts a mood log entry.
func (s *SQLStore) AppendMoodLog(ctx context.Context, entry *domain.MoodLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	query := s.rebind(`INSERT INTO mood_logs (timestamp, mood, score) VALUES (?, ?, ?) RETURNING id`)

	return withRetry(ctx, "append mood log", func() error {
		unlock := s.lockWrites()
		defer unlock()

		var id int64
		err := s.db.QueryRowContext(ctx, query,
			entry.Timestamp.UTC().UnixMilli(), string(entry.Mood), entry.Score,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert mood log: %w", err)
		}
		entry.ID = id
		return nil
	})
}

// MoodLogsBetween returns mood log entries in [from, to], oldest first.
func (s *SQLStore) MoodLogsBetween(ctx context.Context, from, to time.Time) ([]domain.MoodLogEntry, error) {
	query := s.rebind(`
		SELECT id, timestamp, mood, score
		FROM mood_logs WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, id ASC`)

	rows, err := s.db.QueryContext(ctx, query, from.UTC().UnixMilli(), to.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query mood logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close mood log rows", "error", closeErr)
		}
	}()

	var entries []domain.MoodLogEntry
	for rows.Next() {
		var (
			e     domain.MoodLogEntry
			ts    int64
			label string
		)
		if err := rows.Scan(&e.ID, &ts, &label, &e.Score); err != nil {
			return nil, fmt.Errorf("scan mood log row: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		e.Mood = mood.Label(label)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood logs: %w", err)
	}
	return entries, nil
}

// LatestMoodBetween returns the mood of the newest entry in [from, to].
func (s *SQLStore) LatestMoodBetween(ctx context.Context, from, to time.Time) (mood.Label, bool, error) {
	query := s.rebind(`
		SELECT mood FROM mood_logs
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`)

	var label string
	err := s.db.QueryRowContext(ctx, query, from.UTC().UnixMilli(), to.UTC().UnixMilli()).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query latest mood: %w", err)
	}
	return mood.Label(label), true, nil
}

// GetSessionState returns the stored session blob or nil.
func (s *SQLStore) GetSessionState(ctx context.Context, sessionID string) ([]byte, error) {
	query := s.rebind(`SELECT state_json FROM session_states WHERE session_id = ?`)

	var data string
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session state: %w", err)
	}
	return []byte(data), nil
}

// UpsertSessionState creates or replaces a session blob.
func (s *SQLStore) UpsertSessionState(ctx context.Context, sessionID string, data []byte, updatedAt time.Time) error {
	query := s.rebind(`
		INSERT INTO session_states (session_id, state_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			state_json = excluded.state_json,
			updated_at = excluded.updated_at`)

	return withRetry(ctx, "upsert session state", func() error {
		unlock := s.lockWrites()
		defer unlock()

		if _, err := s.db.ExecContext(ctx, query, sessionID, string(data), updatedAt.Unix()); err != nil {
			return fmt.Errorf("upsert session state: %w", err)
		}
		return nil
	})
}

// DeleteSessionState removes a session blob.
func (s *SQLStore) DeleteSessionState(ctx context.Context, sessionID string) error {
	query := s.rebind(`DELETE FROM session_states WHERE session_id = ?`)

	return withRetry(ctx, "delete session state", func() error {
		unlock := s.lockWrites()
		defer unlock()

		if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
			return fmt.Errorf("delete session state: %w", err)
		}
		return nil
	})
}

// CleanupExpiredSessionStates removes session blobs older than ttl.
func (s *SQLStore) CleanupExpiredSessionStates(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	query := s.rebind(`DELETE FROM session_states WHERE updated_at < ?`)

	var deleted int64
	err := withRetry(ctx, "cleanup session states", func() error {
		unlock := s.lockWrites()
		defer unlock()

		result, err := s.db.ExecContext(ctx, query, threshold)
		if err != nil {
			return fmt.Errorf("cleanup expired session states: %w", err)
		}
		deleted, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		return nil
	})
	return deleted, err
}
