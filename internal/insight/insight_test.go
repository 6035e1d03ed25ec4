package insight

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/ashureev/mood-reflect/internal/domain"
	"github.com/ashureev/mood-reflect/internal/mood"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(3, 4))
}

func at(day string, hour int) time.Time {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour) * time.Hour)
}

func TestDailyAveragesWithRealData(t *testing.T) {
	t.Parallel()

	entries := []domain.MoodLogEntry{
		{Timestamp: at("2024-06-08", 9), Score: 0.5},
		{Timestamp: at("2024-06-08", 20), Score: -0.2},
		{Timestamp: at("2024-06-10", 1), Score: 0.333},
	}
	h := DailyAverages(entries, at("2024-06-10", 15), 3, seeded())

	wantLabels := []string{"2024-06-08", "2024-06-09", "2024-06-10"}
	if !slices.Equal(h.Labels, wantLabels) {
		t.Fatalf("labels = %v, want %v", h.Labels, wantLabels)
	}
	if !h.HasRealData {
		t.Fatal("HasRealData = false")
	}
	if h.Scores[0] == nil || *h.Scores[0] != 0.15 {
		t.Fatalf("day 1 = %v, want 0.15", h.Scores[0])
	}
	if h.Scores[1] != nil {
		t.Fatalf("day 2 = %v, want nil", *h.Scores[1])
	}
	if h.Scores[2] == nil || *h.Scores[2] != 0.33 {
		t.Fatalf("day 3 = %v, want 0.33", h.Scores[2])
	}
}

func TestDailyAveragesPlaceholders(t *testing.T) {
	t.Parallel()

	h := DailyAverages(nil, at("2024-01-01", 0), 7, seeded())
	if h.HasRealData {
		t.Fatal("HasRealData = true with no entries")
	}
	if len(h.Labels) != 7 || h.Labels[0] != "2023-12-26" || h.Labels[6] != "2024-01-01" {
		t.Fatalf("labels = %v", h.Labels)
	}
	for i, s := range h.Scores {
		if s == nil {
			t.Fatalf("score %d is nil", i)
		}
		if *s < -0.8 || *s > 0.8 {
			t.Fatalf("score %d = %v out of range", i, *s)
		}
		if *s != round2(*s) {
			t.Fatalf("score %d = %v not rounded", i, *s)
		}
	}
}

func TestDayRange(t *testing.T) {
	t.Parallel()

	from, to := DayRange(time.Date(2024, 3, 1, 18, 30, 0, 0, time.FixedZone("IST", 5*3600+1800)), 2)
	// 18:30 IST is 13:00 UTC on the same date.
	if !from.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from = %v", from)
	}
	if to.Format(time.DateOnly) != "2024-03-01" || to.Hour() != 23 {
		t.Fatalf("to = %v", to)
	}
}

func TestPoolFor(t *testing.T) {
	t.Parallel()

	tests := map[mood.Label]QuotePool{
		mood.Happy:    PoolPositive,
		mood.Sad:      PoolUplifting,
		mood.Angry:    PoolUplifting,
		mood.Stressed: PoolUplifting,
		mood.Calm:     PoolCalm,
		mood.Initial:  PoolGeneral,
		"":            PoolGeneral,
	}
	for l, want := range tests {
		if got := PoolFor(l); got != want {
			t.Fatalf("PoolFor(%q) = %s, want %s", l, got, want)
		}
	}
}

func TestQuoteForDrawsFromPool(t *testing.T) {
	t.Parallel()

	rng := seeded()
	for i := 0; i < 20; i++ {
		q := QuoteFor(mood.Angry, rng)
		if !slices.Contains(Quotes(PoolUplifting), q) {
			t.Fatalf("quote %q not uplifting", q)
		}
	}
}

type stubReader struct {
	entries []domain.MoodLogEntry
	latest  mood.Label
	err     error
	from    time.Time
	to      time.Time
}

func (s *stubReader) MoodLogsBetween(_ context.Context, from, to time.Time) ([]domain.MoodLogEntry, error) {
	s.from, s.to = from, to
	return s.entries, s.err
}

func (s *stubReader) LatestMoodBetween(_ context.Context, from, to time.Time) (mood.Label, bool, error) {
	s.from, s.to = from, to
	if s.err != nil {
		return "", false, s.err
	}
	return s.latest, s.latest != "", nil
}

func TestServiceHistoryClampsDays(t *testing.T) {
	t.Parallel()

	repo := &stubReader{}
	svc := NewService(repo, 30, seeded(), nil)
	svc.now = func() time.Time { return at("2024-06-10", 12) }

	h, err := svc.History(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Labels) != DefaultDays {
		t.Fatalf("len = %d, want %d", len(h.Labels), DefaultDays)
	}
	if !repo.from.Equal(at("2024-06-04", 0)) {
		t.Fatalf("query from = %v", repo.from)
	}

	h, _ = svc.History(context.Background(), 365)
	if len(h.Labels) != 30 {
		t.Fatalf("len = %d, want capped 30", len(h.Labels))
	}
}

func TestServiceHistoryPropagatesErrors(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubReader{err: errors.New("db down")}, 0, seeded(), nil)
	if _, err := svc.History(context.Background(), 7); err == nil {
		t.Fatal("expected error")
	}
}

func TestServiceDailyQuote(t *testing.T) {
	t.Parallel()

	repo := &stubReader{latest: mood.Calm}
	svc := NewService(repo, 0, seeded(), nil)
	svc.now = func() time.Time { return at("2024-06-10", 12) }

	if q := svc.DailyQuote(context.Background()); !slices.Contains(Quotes(PoolCalm), q) {
		t.Fatalf("quote %q not calm", q)
	}
	if !repo.from.Equal(at("2024-06-10", 0)) {
		t.Fatalf("query from = %v, want start of today", repo.from)
	}

	repo.latest = ""
	if q := svc.DailyQuote(context.Background()); !slices.Contains(Quotes(PoolGeneral), q) {
		t.Fatalf("quote %q not general", q)
	}

	repo.err = errors.New("db down")
	if q := svc.DailyQuote(context.Background()); !slices.Contains(Quotes(PoolGeneral), q) {
		t.Fatalf("quote %q not general on error", q)
	}
}
