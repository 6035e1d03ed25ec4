// Package daypart classifies wall-clock time into coarse parts of the day.
package daypart

import (
	"log/slog"
	"time"
)

// DefaultZone is the civil timezone the classifier reads the hour in.
const DefaultZone = "Asia/Kolkata"

// Category is a coarse part of the day.
type Category string

const (
	Morning Category = "morning"
	Midday  Category = "midday"
	Evening Category = "evening"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == Morning || c == Midday || c == Evening
}

// ForHour maps an hour in [0,23]: [5,12) morning, [12,17) midday, else evening.
func ForHour(hour int) Category {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Midday
	default:
		return Evening
	}
}

// Classifier reads the current hour in a fixed zone.
type Classifier struct {
	loc *time.Location
	now func() time.Time
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// NewClassifier loads zone. When the timezone database cannot resolve it the
// classifier runs on the local system zone instead.
func NewClassifier(zone string, logger *slog.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		logger.Warn("Could not load timezone, falling back to local time", "zone", zone, "error", err)
		loc = time.Local
	}
	c := &Classifier{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the zone the classifier evaluates hours in.
func (c *Classifier) Location() *time.Location {
	return c.loc
}

// Classify returns the category of t in the classifier's zone.
func (c *Classifier) Classify(t time.Time) Category {
	return ForHour(t.In(c.loc).Hour())
}

// Current classifies the clock's current time.
func (c *Classifier) Current() Category {
	return c.Classify(c.now())
}
