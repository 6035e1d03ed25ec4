package question

import (
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/ashureev/mood-reflect/internal/daypart"
	"github.com/ashureev/mood-reflect/internal/mood"
)

// History is a read-only view of what a conversation has already asked.
type History interface {
	MoodAsked(l mood.Label, prompt string) bool
	TimeAsked(c daypart.Category, prompt string) bool
}

// Selection is the outcome of one Select call. The selector never mutates
// history; callers clear the pools named in ResetMood and ResetTime and then
// record Prompt.
type Selection struct {
	Prompt string
	// TimeSpecific is set when Prompt came from the daypart pool and must be
	// recorded against Category rather than Context.
	TimeSpecific bool
	Category     daypart.Category
	// Context is the mood pool Prompt was drawn from. It differs from the
	// requested mood only after the Calm fallback.
	Context   mood.Label
	ResetMood []mood.Label
	ResetTime bool
	// Fallback marks the fixed generic prompt; nothing is recorded for it.
	Fallback bool
}

// Selector picks prompts from a Bank using an injected random source.
type Selector struct {
	bank *Bank

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector builds a Selector. A nil rng is replaced with a randomly seeded one.
func NewSelector(bank *Bank, rng *rand.Rand) *Selector {
	if bank == nil {
		bank = DefaultBank()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{bank: bank, rng: rng}
}

// Bank returns the prompt pools the selector draws from.
func (s *Selector) Bank() *Bank {
	return s.bank
}

// Select picks the next prompt for moodCtx at daypart category.
func (s *Selector) Select(moodCtx mood.Label, category daypart.Category, history History) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := Selection{Category: category, Context: moodCtx}
	moodPool := s.bank.MoodPrompts(moodCtx)
	timePool := s.bank.TimePrompts(category)

	pool := unaskedMood(moodPool, moodCtx, history)
	if moodCtx == mood.Initial {
		pool = append(pool, unaskedTime(timePool, category, history)...)
		s.shuffle(pool)
	}

	if len(pool) == 0 {
		sel.ResetMood = append(sel.ResetMood, moodCtx)
		pool = append(pool, moodPool...)

		if moodCtx == mood.Initial && len(pool) == 0 {
			// Only this daypart's history is cleared; the others keep theirs.
			sel.ResetTime = true
			pool = append(pool, timePool...)
			s.shuffle(pool)
		}

		if len(pool) == 0 && moodCtx != mood.Calm {
			sel.Context = mood.Calm
			calmPool := s.bank.MoodPrompts(mood.Calm)
			pool = unaskedMood(calmPool, mood.Calm, history)
			if len(pool) == 0 {
				sel.ResetMood = append(sel.ResetMood, mood.Calm)
				pool = slices.Clone(calmPool)
			}
		}

		if len(pool) == 0 {
			sel.Prompt = FallbackPrompt
			sel.Fallback = true
			return sel
		}
	}

	sel.Prompt = pool[s.rng.IntN(len(pool))]
	if slices.Contains(timePool, sel.Prompt) {
		sel.TimeSpecific = sel.ResetTime || !history.TimeAsked(category, sel.Prompt)
	}
	return sel
}

func (s *Selector) shuffle(pool []string) {
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
}

func unaskedMood(pool []string, l mood.Label, history History) []string {
	out := make([]string, 0, len(pool))
	for _, p := range pool {
		if !history.MoodAsked(l, p) {
			out = append(out, p)
		}
	}
	return out
}

func unaskedTime(pool []string, c daypart.Category, history History) []string {
	out := make([]string, 0, len(pool))
	for _, p := range pool {
		if !history.TimeAsked(c, p) {
			out = append(out, p)
		}
	}
	return out
}
