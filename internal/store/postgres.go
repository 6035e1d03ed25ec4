package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS mood_logs (
	id BIGSERIAL PRIMARY KEY,
	timestamp BIGINT NOT NULL,
	mood TEXT NOT NULL,
	score DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mood_logs_timestamp ON mood_logs(timestamp);

CREATE TABLE IF NOT EXISTS session_states (
	session_id TEXT PRIMARY KEY,
	state_json TEXT NOT NULL,
	updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_states_updated ON session_states(updated_at);
`

// NewPostgres creates a Postgres-backed repository from a lib/pq connection URL.
func NewPostgres(databaseURL string) (*SQLStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLStore{db: db, dialect: dialectPostgres}
	if err := s.initSchema(postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}
