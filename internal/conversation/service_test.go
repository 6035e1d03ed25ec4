package conversation

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/ashureev/mood-reflect/internal/daypart"
	"github.com/ashureev/mood-reflect/internal/domain"
	"github.com/ashureev/mood-reflect/internal/mood"
	"github.com/ashureev/mood-reflect/internal/question"
	"github.com/ashureev/mood-reflect/internal/session"
	"github.com/ashureev/mood-reflect/internal/transcript"
)

type scriptedScorer map[string]mood.Result

func (s scriptedScorer) Score(text string) mood.Result {
	if r, ok := s[text]; ok {
		return r
	}
	return mood.Result{Mood: mood.Calm}
}

type fixedClock daypart.Category

func (c fixedClock) Current() daypart.Category { return daypart.Category(c) }

type recordingLog struct {
	mu      sync.Mutex
	entries []domain.MoodLogEntry
	err     error
}

func (r *recordingLog) AppendMoodLog(_ context.Context, e *domain.MoodLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, *e)
	return nil
}

type failingStore struct{ session.Store }

func (failingStore) Load(context.Context, string) (*domain.ConversationState, error) {
	return nil, errors.New("backend down")
}

var script = scriptedScorer{
	"bad day":     {Mood: mood.Sad, Score: -0.6},
	"great now":   {Mood: mood.Happy, Score: 0.7},
	"so furious":  {Mood: mood.Angry, Score: -0.74},
	"lovely time": {Mood: mood.Happy, Score: 0.8},
}

func newTestService(t *testing.T, log MoodLog) (*Service, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(nil)
	sel := question.NewSelector(question.DefaultBank(), rand.New(rand.NewPCG(7, 7)))
	return NewService(script, sel, fixedClock(daypart.Morning), store, log, nil), store
}

func TestGreetStartsInitialConversation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t, nil)

	reply, err := svc.Greet(ctx, "s")
	if err != nil {
		t.Fatalf("Greet: %v", err)
	}
	if reply.DetectedMood != mood.Initial || reply.Score != 0 {
		t.Fatalf("reply = %+v", reply)
	}
	bank := question.DefaultBank()
	if !slices.Contains(bank.MoodPrompts(mood.Initial), reply.BotReply) && !bank.IsTimePrompt(daypart.Morning, reply.BotReply) {
		t.Fatalf("greeting %q not from Initial or morning pool", reply.BotReply)
	}

	state, err := store.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !state.MoodAsked(mood.Initial, reply.BotReply) && !state.TimeAsked(daypart.Morning, reply.BotReply) {
		t.Fatal("greeting not recorded")
	}
}

func TestChatScoresLogsAndAsks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := &recordingLog{}
	svc, store := newTestService(t, log)

	reply, err := svc.Chat(ctx, "s", "bad day")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.DetectedMood != mood.Sad || reply.Score != -0.6 {
		t.Fatalf("reply = %+v", reply)
	}
	if !slices.Contains(question.DefaultBank().MoodPrompts(mood.Sad), reply.BotReply) {
		t.Fatalf("reply %q not from Sad pool", reply.BotReply)
	}
	if len(log.entries) != 1 || log.entries[0].Mood != mood.Sad || log.entries[0].Timestamp.IsZero() {
		t.Fatalf("log = %+v", log.entries)
	}

	state, _ := store.Load(ctx, "s")
	if state.MoodContext != mood.Sad {
		t.Fatalf("context = %s, want Sad", state.MoodContext)
	}
	if !slices.Equal(state.Scores, []float64{-0.6}) {
		t.Fatalf("scores = %v", state.Scores)
	}
	if !state.MoodAsked(mood.Sad, reply.BotReply) {
		t.Fatal("prompt not recorded under Sad")
	}
}

func TestChatHappyAfterNegativeMovesToCalm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t, nil)

	for _, first := range []string{"bad day", "so furious"} {
		id := first
		if _, err := svc.Chat(ctx, id, first); err != nil {
			t.Fatal(err)
		}
		reply, err := svc.Chat(ctx, id, "great now")
		if err != nil {
			t.Fatal(err)
		}
		if reply.DetectedMood != mood.Happy {
			t.Fatalf("detected = %s, want Happy", reply.DetectedMood)
		}
		if !slices.Contains(question.DefaultBank().MoodPrompts(mood.Calm), reply.BotReply) {
			t.Fatalf("reply %q not from Calm pool", reply.BotReply)
		}
		state, _ := store.Load(ctx, id)
		if state.MoodContext != mood.Calm {
			t.Fatalf("context = %s, want Calm", state.MoodContext)
		}
	}
}

func TestChatHappyFromInitialStaysHappy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t, nil)

	if _, err := svc.Chat(ctx, "s", "lovely time"); err != nil {
		t.Fatal(err)
	}
	state, _ := store.Load(ctx, "s")
	if state.MoodContext != mood.Happy {
		t.Fatalf("context = %s, want Happy", state.MoodContext)
	}
}

func TestChatSurvivesMoodLogFailure(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, &recordingLog{err: errors.New("disk full")})

	reply, err := svc.Chat(context.Background(), "s", "bad day")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.BotReply == "" {
		t.Fatal("empty reply")
	}
}

func TestChatPropagatesSessionErrors(t *testing.T) {
	t.Parallel()

	svc := NewService(script, nil, fixedClock(daypart.Midday), failingStore{}, nil, nil)
	if _, err := svc.Chat(context.Background(), "s", "bad day"); err == nil {
		t.Fatal("expected error")
	}
}

func TestResetKeepsProfileAndClearsHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t, nil)

	name := "Kiran"
	if _, err := svc.UpdateProfile(ctx, "s", domain.ProfilePatch{Name: &name}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Chat(ctx, "s", "so furious"); err != nil {
		t.Fatal(err)
	}

	prompt, err := svc.Reset(ctx, "s")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if prompt == "" {
		t.Fatal("empty prompt after reset")
	}

	state, _ := store.Load(ctx, "s")
	if state.MoodContext != mood.Initial {
		t.Fatalf("context = %s, want Initial", state.MoodContext)
	}
	if len(state.Scores) != 0 || len(state.AskedMood[mood.Angry]) != 0 {
		t.Fatalf("history not cleared: %+v", state)
	}
	if state.Profile.Name != "Kiran" {
		t.Fatalf("profile name = %q", state.Profile.Name)
	}
}

func TestResetRecoversFromUnreadableState(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(nil)
	svc := NewService(script, nil, fixedClock(daypart.Evening), failingStore{store}, nil, nil)

	prompt, err := svc.Reset(context.Background(), "s")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if prompt == "" {
		t.Fatal("empty prompt")
	}
	if store.Len() != 1 {
		t.Fatal("fresh state not saved")
	}
}

func TestProfileDefaultsAndPatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	p, err := svc.Profile(ctx, "new")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != domain.DefaultProfileName || p.Age != nil || p.Weight != nil {
		t.Fatalf("default profile = %+v", p)
	}

	age := 27
	p, err = svc.UpdateProfile(ctx, "new", domain.ProfilePatch{Age: domain.Optional[int]{Set: true, Value: &age}})
	if err != nil {
		t.Fatal(err)
	}
	if p.Age == nil || *p.Age != 27 || p.Name != domain.DefaultProfileName {
		t.Fatalf("patched profile = %+v", p)
	}
}

func TestRepeatedChatNeverRepeatsUntilExhausted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	if _, err := svc.Chat(ctx, "s", "bad day"); err != nil {
		t.Fatal(err)
	}
	pool := question.DefaultBank().MoodPrompts(mood.Sad)
	seen := map[string]bool{}
	for i := 1; i < len(pool); i++ {
		reply, err := svc.Chat(ctx, "s", "bad day")
		if err != nil {
			t.Fatal(err)
		}
		seen[reply.BotReply] = true
	}
	if len(seen) != len(pool)-1 {
		t.Fatalf("saw %d distinct prompts over %d turns", len(seen), len(pool)-1)
	}
}

type memoryRecorder struct {
	mu     sync.Mutex
	events []transcript.Event
}

func (m *memoryRecorder) Log(e transcript.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func TestRecorderSeesEveryMessage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	rec := &memoryRecorder{}
	svc.SetRecorder(rec)

	if _, err := svc.Greet(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Chat(ctx, "s", "bad day"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Reset(ctx, "s"); err != nil {
		t.Fatal(err)
	}

	kinds := make([]string, 0, len(rec.events))
	for _, e := range rec.events {
		kinds = append(kinds, e.Direction+":"+e.Kind)
	}
	want := []string{"outbound:greeting", "inbound:chat", "outbound:chat", "outbound:reset"}
	if !slices.Equal(kinds, want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	in := rec.events[1]
	if in.Text != "bad day" || in.Mood != mood.Sad || in.Score == nil || *in.Score != -0.6 {
		t.Fatalf("inbound event = %+v", in)
	}
}
