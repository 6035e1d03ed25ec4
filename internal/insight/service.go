// Package insight derives chart data and quotes from the mood log.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ashureev/mood-reflect/internal/domain"
	"github.com/ashureev/mood-reflect/internal/mood"
)

// DefaultDays is the history window used when none is requested.
const DefaultDays = 7

// Reader is the read side of the mood log.
type Reader interface {
	MoodLogsBetween(ctx context.Context, from, to time.Time) ([]domain.MoodLogEntry, error)
	LatestMoodBetween(ctx context.Context, from, to time.Time) (mood.Label, bool, error)
}

// Service answers history and quote queries.
type Service struct {
	repo    Reader
	maxDays int
	logger  *slog.Logger
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a Service. maxDays caps the history window; zero means
// no cap. A nil rng is replaced with a randomly seeded one.
func NewService(repo Reader, maxDays int, rng *rand.Rand, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Service{repo: repo, maxDays: maxDays, rng: rng, logger: logger, now: time.Now}
}

// ClampDays normalizes a requested window: non-positive values become
// DefaultDays and values above the cap are cut to it.
func (s *Service) ClampDays(days int) int {
	if days <= 0 {
		return DefaultDays
	}
	if s.maxDays > 0 && days > s.maxDays {
		return s.maxDays
	}
	return days
}

// History returns daily averages for the last days days, today included.
func (s *Service) History(ctx context.Context, days int) (DailyHistory, error) {
	days = s.ClampDays(days)
	end := s.now().UTC()
	from, to := DayRange(end, days)

	entries, err := s.repo.MoodLogsBetween(ctx, from, to)
	if err != nil {
		return DailyHistory{}, fmt.Errorf("load mood history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return DailyAverages(entries, end, days, s.rng), nil
}

// DailyQuote picks a quote matching the latest mood logged today (UTC).
// Lookup failures fall back to the general pool.
func (s *Service) DailyQuote(ctx context.Context) string {
	from, to := DayRange(s.now(), 1)

	latest, ok, err := s.repo.LatestMoodBetween(ctx, from, to)
	if err != nil {
		s.logger.Warn("failed to fetch latest mood for quote", "error", err)
		ok = false
	}
	if !ok {
		latest = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return QuoteFor(latest, s.rng)
}
