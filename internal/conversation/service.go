// Package conversation runs chat turns: it scores a message, logs the mood,
// moves the conversation context and picks the next question.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/mood-reflect/internal/daypart"
	"github.com/ashureev/mood-reflect/internal/domain"
	"github.com/ashureev/mood-reflect/internal/mood"
	"github.com/ashureev/mood-reflect/internal/question"
	"github.com/ashureev/mood-reflect/internal/session"
	"github.com/ashureev/mood-reflect/internal/transcript"
)

// Scorer turns free text into a mood and score.
type Scorer interface {
	Score(text string) mood.Result
}

// Clock reports the current daypart.
type Clock interface {
	Current() daypart.Category
}

// MoodLog appends scored messages to the mood history.
type MoodLog interface {
	AppendMoodLog(ctx context.Context, entry *domain.MoodLogEntry) error
}

// Recorder receives a copy of every message exchanged.
type Recorder interface {
	Log(e transcript.Event)
}

// Reply is the outcome of one turn.
type Reply struct {
	BotReply     string     `json:"bot_reply"`
	DetectedMood mood.Label `json:"detected_mood"`
	Score        float64    `json:"score"`
}

// Service orchestrates conversation turns for any number of sessions.
type Service struct {
	scorer   Scorer
	selector *question.Selector
	clock    Clock
	sessions session.Store
	moodLog  MoodLog
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires a Service. moodLog may be nil, in which case turns are
// not recorded in the history.
func NewService(scorer Scorer, selector *question.Selector, clock Clock, sessions session.Store, moodLog MoodLog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if selector == nil {
		selector = question.NewSelector(nil, nil)
	}
	return &Service{
		scorer:   scorer,
		selector: selector,
		clock:    clock,
		sessions: sessions,
		moodLog:  moodLog,
		logger:   logger,
		now:      time.Now,
	}
}

// SetRecorder enables transcript recording.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

func (s *Service) record(sessionID, direction, kind, text string, result *mood.Result) {
	if s.recorder == nil {
		return
	}
	e := transcript.Event{
		Timestamp: s.now().UTC(),
		SessionID: sessionID,
		Direction: direction,
		Kind:      kind,
		Text:      text,
	}
	if result != nil {
		score := result.Score
		e.Mood = result.Mood
		e.Score = &score
	}
	s.recorder.Log(e)
}

func (s *Service) load(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return domain.NewConversationState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return state, nil
}

// ask selects the next prompt for moodCtx and records it in state.
func (s *Service) ask(state *domain.ConversationState, moodCtx mood.Label) question.Selection {
	sel := s.selector.Select(moodCtx, s.clock.Current(), state)
	state.Apply(sel)
	state.MoodContext = moodCtx
	return sel
}

// Greet returns the opening question for the session. The context moves to
// Initial and nothing is logged.
func (s *Service) Greet(ctx context.Context, sessionID string) (Reply, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}

	sel := s.ask(state, mood.Initial)
	if err := s.sessions.Save(ctx, sessionID, state); err != nil {
		return Reply{}, fmt.Errorf("save conversation: %w", err)
	}
	s.record(sessionID, transcript.Outbound, "greeting", sel.Prompt, nil)
	return Reply{BotReply: sel.Prompt, DetectedMood: mood.Initial}, nil
}

// Chat processes one user message.
func (s *Service) Chat(ctx context.Context, sessionID, text string) (Reply, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}

	result := s.scorer.Score(text)
	state.Scores = append(state.Scores, result.Score)
	s.logMood(ctx, sessionID, result)

	next := mood.Transition(state.MoodContext, result.Mood)
	sel := s.ask(state, next)

	if err := s.sessions.Save(ctx, sessionID, state); err != nil {
		return Reply{}, fmt.Errorf("save conversation: %w", err)
	}

	s.logger.Debug("chat turn",
		"session_id", sessionID,
		"detected", result.Mood,
		"score", result.Score,
		"context", next,
		"time_specific", sel.TimeSpecific)

	s.record(sessionID, transcript.Inbound, "chat", text, &result)
	s.record(sessionID, transcript.Outbound, "chat", sel.Prompt, nil)

	return Reply{BotReply: sel.Prompt, DetectedMood: result.Mood, Score: result.Score}, nil
}

// logMood appends to the mood history. Failures are logged and never fail
// the turn.
func (s *Service) logMood(ctx context.Context, sessionID string, result mood.Result) {
	if s.moodLog == nil {
		return
	}
	entry := &domain.MoodLogEntry{
		Timestamp: s.now().UTC(),
		Mood:      result.Mood,
		Score:     result.Score,
	}
	if err := s.moodLog.AppendMoodLog(ctx, entry); err != nil {
		s.logger.Error("failed to log mood", "session_id", sessionID, "error", err)
	}
}

// Reset clears the conversation, keeping the profile, and returns a fresh
// opening question. An unreadable stored state is discarded.
func (s *Service) Reset(ctx context.Context, sessionID string) (string, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		s.logger.Warn("discarding unreadable conversation on reset", "session_id", sessionID, "error", err)
		state = domain.NewConversationState()
	}
	state.Reset()

	sel := s.ask(state, mood.Initial)
	if err := s.sessions.Save(ctx, sessionID, state); err != nil {
		return "", fmt.Errorf("save conversation: %w", err)
	}
	s.record(sessionID, transcript.Outbound, "reset", sel.Prompt, nil)
	return sel.Prompt, nil
}

// Profile returns the profile stored with the session.
func (s *Service) Profile(ctx context.Context, sessionID string) (domain.Profile, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Profile{}, err
	}
	return state.Profile, nil
}

// UpdateProfile applies patch to the session's profile and returns the result.
func (s *Service) UpdateProfile(ctx context.Context, sessionID string, patch domain.ProfilePatch) (domain.Profile, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Profile{}, err
	}
	patch.ApplyTo(&state.Profile)
	if err := s.sessions.Save(ctx, sessionID, state); err != nil {
		return domain.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return state.Profile, nil
}
