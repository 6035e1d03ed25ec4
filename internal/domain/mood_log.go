// Package domain contains core domain types for the mood tracker.
package domain

import (
	"time"

	"github.com/ashureev/mood-reflect/internal/mood"
)

// MoodLogEntry is one scored message in the append-only mood history.
type MoodLogEntry struct {
	ID        int64      `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Mood      mood.Label `json:"mood"`
	Score     float64    `json:"score"`
}

// Day returns the UTC calendar day of the entry as YYYY-MM-DD.
func (e MoodLogEntry) Day() string {
	return e.Timestamp.UTC().Format(time.DateOnly)
}
