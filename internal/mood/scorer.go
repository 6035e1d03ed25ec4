package mood

import (
	"log/slog"
	"strings"
)

// Score thresholds. negativeMagnitudeFloor is the positive floor scaled by 0.8
// and must stay at 0.16.
const (
	keywordMaxInfluence    = 0.2
	positiveThreshold      = 0.35
	negativeThreshold      = -0.35
	positiveMagnitudeFloor = 0.20
	negativeMagnitudeFloor = 0.16
	significantShare       = 0.4
	magnitudeMargin        = 0.1
	strongOverride         = 0.6
)

// Polarity is the output of a lexicon polarity analyzer.
type Polarity struct {
	Compound float64 // overall polarity in [-1, 1]
	Positive float64 // positive magnitude in [0, 1]
	Negative float64 // negative magnitude in [0, 1]
}

// Analyzer computes polarity for a piece of text.
type Analyzer interface {
	Polarity(text string) Polarity
}

// Tokenizer splits text into word tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Result is the mood and combined score for one message.
type Result struct {
	Mood  Label   `json:"mood"`
	Score float64 `json:"score"`
}

// Scorer fuses analyzer polarity with keyword hits.
type Scorer struct {
	analyzer  Analyzer
	tokenizer Tokenizer
	logger    *slog.Logger
}

// NewScorer builds a Scorer. A nil tokenizer selects whitespace splitting.
func NewScorer(analyzer Analyzer, tokenizer Tokenizer, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	if tokenizer == nil {
		logger.Warn("Word tokenizer unavailable, falling back to whitespace split")
	}
	return &Scorer{analyzer: analyzer, tokenizer: tokenizer, logger: logger}
}

// Score classifies text. It never fails: without an analyzer it returns
// (Calm, 0).
func (s *Scorer) Score(text string) Result {
	if s == nil || s.analyzer == nil {
		logger := slog.Default()
		if s != nil {
			logger = s.logger
		}
		logger.Error("Sentiment analyzer not initialized, returning neutral mood")
		return Result{Mood: Calm, Score: 0}
	}

	pol := s.analyzer.Polarity(text)
	counts := CountKeywords(s.tokens(strings.ToLower(text)))
	total := counts.Total()

	influence := 0.0
	if total > 0 {
		net := (counts.Happy + counts.Calm) - (counts.Sad + counts.Angry + counts.Stressed)
		influence = float64(net) / float64(total) * keywordMaxInfluence
	}
	combined := clamp(pol.Compound+influence, -1, 1)

	return Result{Mood: decide(combined, pol, counts), Score: combined}
}

func decide(combined float64, pol Polarity, counts KeywordCounts) Label {
	dominant, dominantCount, hasDominant := counts.Dominant()
	total := counts.Total()

	var m Label
	switch {
	case combined >= positiveThreshold && pol.Positive >= positiveMagnitudeFloor:
		m = Happy
		if hasDominant && dominant == Calm && dominantCount > counts.Happy {
			m = Calm
		}
	case combined <= negativeThreshold && pol.Negative >= negativeMagnitudeFloor:
		m = Sad
		if hasDominant && dominantCount > 0 && dominant.IsNegative() {
			m = dominant
		}
	default:
		m = Calm
		significant := hasDominant && float64(dominantCount) >= max(float64(total)*significantShare, 1)
		if significant {
			switch dominant {
			case Happy:
				if pol.Positive > pol.Negative+magnitudeMargin {
					m = Happy
				}
			case Angry:
				if pol.Negative > pol.Positive+magnitudeMargin {
					m = Angry
				}
			case Stressed, Sad:
				if pol.Negative > pol.Positive {
					m = dominant
				}
			}
		}
	}

	if combined > strongOverride {
		m = Happy
	}
	if combined < -strongOverride && !m.IsNegative() {
		m = Sad
	}
	return m
}

// tokens runs the configured tokenizer, degrading to whitespace splitting
// when it is missing or panics.
func (s *Scorer) tokens(text string) (out []string) {
	if s.tokenizer == nil {
		return strings.Fields(text)
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Word tokenizer failed, falling back to whitespace split", "panic", r)
			out = strings.Fields(text)
		}
	}()
	return s.tokenizer.Tokenize(text)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
