package domain

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/ashureev/mood-reflect/internal/daypart"
	"github.com/ashureev/mood-reflect/internal/mood"
	"github.com/ashureev/mood-reflect/internal/question"
)

// DefaultProfileName is shown until the user sets a name.
const DefaultProfileName = "User Name"

// TimePrompt records a daypart prompt that has been asked.
type TimePrompt struct {
	Category daypart.Category `json:"category"`
	Prompt   string           `json:"prompt"`
}

// Profile is the user-editable part of a session.
type Profile struct {
	Name   string   `json:"name"`
	Age    *int     `json:"age"`
	Weight *float64 `json:"weight"`
}

// Optional distinguishes an absent patch field from one explicitly set to null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// ProfilePatch updates only the fields that are present.
type ProfilePatch struct {
	Name   *string
	Age    Optional[int]
	Weight Optional[float64]
}

// ApplyTo writes the present fields onto p.
func (pp ProfilePatch) ApplyTo(p *Profile) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Age.Set {
		p.Age = pp.Age.Value
	}
	if pp.Weight.Set {
		p.Weight = pp.Weight.Value
	}
}

// ConversationState is the per-session record driving question selection.
type ConversationState struct {
	MoodContext mood.Label              `json:"current_mood_context"`
	AskedMood   map[mood.Label][]string `json:"asked_mood_questions"`
	AskedTime   []TimePrompt            `json:"asked_time_questions"`
	Scores      []float64               `json:"conversation_scores"`
	Profile     Profile                 `json:"profile"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// NewConversationState returns a state in the Initial context with every
// asked pool empty.
func NewConversationState() *ConversationState {
	s := &ConversationState{
		MoodContext: mood.Initial,
		Profile:     Profile{Name: DefaultProfileName},
	}
	s.Normalize()
	return s
}

// MoodAsked reports whether prompt was already asked for l.
func (s *ConversationState) MoodAsked(l mood.Label, prompt string) bool {
	return slices.Contains(s.AskedMood[l], prompt)
}

// TimeAsked reports whether prompt was already asked for daypart c.
func (s *ConversationState) TimeAsked(c daypart.Category, prompt string) bool {
	return slices.Contains(s.AskedTime, TimePrompt{Category: c, Prompt: prompt})
}

// RecordMoodPrompt marks prompt as asked for l.
func (s *ConversationState) RecordMoodPrompt(l mood.Label, prompt string) {
	if s.AskedMood == nil {
		s.AskedMood = make(map[mood.Label][]string)
	}
	if !s.MoodAsked(l, prompt) {
		s.AskedMood[l] = append(s.AskedMood[l], prompt)
	}
}

// RecordTimePrompt marks prompt as asked for daypart c.
func (s *ConversationState) RecordTimePrompt(c daypart.Category, prompt string) {
	if !s.TimeAsked(c, prompt) {
		s.AskedTime = append(s.AskedTime, TimePrompt{Category: c, Prompt: prompt})
	}
}

// ResetMood forgets every prompt asked for l.
func (s *ConversationState) ResetMood(l mood.Label) {
	if s.AskedMood == nil {
		s.AskedMood = make(map[mood.Label][]string)
	}
	s.AskedMood[l] = []string{}
}

// ResetTime forgets prompts asked for daypart c only.
func (s *ConversationState) ResetTime(c daypart.Category) {
	s.AskedTime = slices.DeleteFunc(s.AskedTime, func(tp TimePrompt) bool {
		return tp.Category == c
	})
}

// Apply clears the pools sel asks to reset and records sel.Prompt in the
// pool it was drawn from. The generic fallback prompt is never recorded.
func (s *ConversationState) Apply(sel question.Selection) {
	for _, l := range sel.ResetMood {
		s.ResetMood(l)
	}
	if sel.ResetTime {
		s.ResetTime(sel.Category)
	}
	switch {
	case sel.Fallback:
	case sel.TimeSpecific:
		s.RecordTimePrompt(sel.Category, sel.Prompt)
	default:
		s.RecordMoodPrompt(sel.Context, sel.Prompt)
	}
}

// Reset clears the conversation but keeps the profile.
func (s *ConversationState) Reset() {
	profile := s.Profile
	*s = *NewConversationState()
	s.Profile = profile
}

// Normalize repairs fields that are missing or out of range and returns the
// names of the fields it had to change.
func (s *ConversationState) Normalize() []string {
	var healed []string

	if !s.MoodContext.Valid() {
		s.MoodContext = mood.Initial
		healed = append(healed, "current_mood_context")
	}

	if s.AskedMood == nil {
		s.AskedMood = make(map[mood.Label][]string, len(mood.Labels()))
	}
	for l := range s.AskedMood {
		if !l.Valid() {
			delete(s.AskedMood, l)
			if !slices.Contains(healed, "asked_mood_questions") {
				healed = append(healed, "asked_mood_questions")
			}
		}
	}
	for _, l := range mood.Labels() {
		if s.AskedMood[l] == nil {
			s.AskedMood[l] = []string{}
		}
	}

	if s.AskedTime == nil {
		s.AskedTime = []TimePrompt{}
	}
	before := len(s.AskedTime)
	s.AskedTime = slices.DeleteFunc(s.AskedTime, func(tp TimePrompt) bool {
		return !tp.Category.Valid() || tp.Prompt == ""
	})
	if len(s.AskedTime) != before {
		healed = append(healed, "asked_time_questions")
	}

	if s.Scores == nil {
		s.Scores = []float64{}
	}
	if s.Profile.Name == "" {
		s.Profile.Name = DefaultProfileName
	}
	return healed
}

// DecodeConversationState decodes a stored session blob field by field. A
// field that fails to decode is reset to its default instead of failing the
// whole state; the returned names list every field that was healed.
func DecodeConversationState(data []byte) (*ConversationState, []string) {
	s := NewConversationState()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return s, []string{"*"}
	}

	var healed []string
	decode := func(name string, dst any) bool {
		msg, ok := raw[name]
		if !ok || string(msg) == "null" {
			return false
		}
		if err := json.Unmarshal(msg, dst); err != nil {
			healed = append(healed, name)
			return false
		}
		return true
	}

	var ctx mood.Label
	if decode("current_mood_context", &ctx) {
		s.MoodContext = ctx
	}
	var askedMood map[mood.Label][]string
	if decode("asked_mood_questions", &askedMood) && askedMood != nil {
		s.AskedMood = askedMood
	}
	var askedTime []TimePrompt
	if decode("asked_time_questions", &askedTime) && askedTime != nil {
		s.AskedTime = askedTime
	}
	var scores []float64
	if decode("conversation_scores", &scores) && scores != nil {
		s.Scores = scores
	}
	var profile Profile
	if decode("profile", &profile) {
		s.Profile = profile
	}
	var updatedAt time.Time
	if decode("updated_at", &updatedAt) {
		s.UpdatedAt = updatedAt
	}

	return s, append(healed, s.Normalize()...)
}
