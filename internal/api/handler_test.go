//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ashureev/mood-reflect/internal/conversation"
	"github.com/ashureev/mood-reflect/internal/daypart"
	"github.com/ashureev/mood-reflect/internal/domain"
	"github.com/ashureev/mood-reflect/internal/identity"
	"github.com/ashureev/mood-reflect/internal/insight"
	"github.com/ashureev/mood-reflect/internal/mood"
	"github.com/ashureev/mood-reflect/internal/question"
	"github.com/ashureev/mood-reflect/internal/session"
)

type keywordScorer struct{}

func (keywordScorer) Score(text string) mood.Result {
	switch {
	case strings.Contains(text, "sad"):
		return mood.Result{Mood: mood.Sad, Score: -0.5}
	case strings.Contains(text, "happy"):
		return mood.Result{Mood: mood.Happy, Score: 0.6}
	}
	return mood.Result{Mood: mood.Calm}
}

type eveningClock struct{}

func (eveningClock) Current() daypart.Category { return daypart.Evening }

type stubReader struct {
	entries []domain.MoodLogEntry
	latest  mood.Label
	err     error
}

func (s stubReader) MoodLogsBetween(context.Context, time.Time, time.Time) ([]domain.MoodLogEntry, error) {
	return s.entries, s.err
}

func (s stubReader) LatestMoodBetween(context.Context, time.Time, time.Time) (mood.Label, bool, error) {
	return s.latest, s.latest != "", s.err
}

type testEnv struct {
	router  chi.Router
	store   *session.MemoryStore
	sockets *SocketRegistry
}

func newTestEnv(t *testing.T, reader stubReader) *testEnv {
	t.Helper()
	store := session.NewMemoryStore(nil)
	sel := question.NewSelector(question.DefaultBank(), rand.New(rand.NewPCG(1, 1)))
	conv := conversation.NewService(keywordScorer{}, sel, eveningClock{}, store, nil, nil)
	insights := insight.NewService(reader, 90, rand.New(rand.NewPCG(2, 2)), nil)
	sockets := NewSocketRegistry()

	r := chi.NewRouter()
	r.Use(identity.Middleware(time.Hour, false))
	NewHandler(conv, insights, sockets, nil).RegisterRoutes(r)
	r.Get("/ws/chat", NewWebSocketHandler(conv, sockets, nil, []string{"*"}, true, nil).ServeHTTP)

	return &testEnv{router: r, store: store, sockets: sockets}
}

func (e *testEnv) do(t *testing.T, method, path, sid, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set(identity.SessionHeaderName, sid)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "nope")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"error":"nope"`)) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestChatGreetingAndMessage(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, stubReader{})
	sid := uuid.NewString()

	w := env.do(t, http.MethodPost, "/chat", sid, `{"message": null}`)
	if w.Code != http.StatusOK {
		t.Fatalf("greeting status = %d: %s", w.Code, w.Body.String())
	}
	greet := decode[conversation.Reply](t, w)
	if greet.DetectedMood != mood.Initial || greet.BotReply == "" {
		t.Fatalf("greeting = %+v", greet)
	}

	w = env.do(t, http.MethodPost, "/chat", sid, `{"message": "so sad today"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d", w.Code)
	}
	reply := decode[conversation.Reply](t, w)
	if reply.DetectedMood != mood.Sad || reply.Score != -0.5 {
		t.Fatalf("reply = %+v", reply)
	}
	if !slices.Contains(question.DefaultBank().MoodPrompts(mood.Sad), reply.BotReply) {
		t.Fatalf("reply %q not from Sad pool", reply.BotReply)
	}
}

func TestChatRejectsMalformedBody(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, stubReader{})

	w := env.do(t, http.MethodPost, "/chat", uuid.NewString(), `{"message":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestResetKeepsProfile(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, stubReader{})
	sid := uuid.NewString()

	env.do(t, http.MethodPost, "/api/profile", sid, `{"name": "Dev"}`)
	env.do(t, http.MethodPost, "/chat", sid, `{"message": "happy"}`)

	w := env.do(t, http.MethodPost, "/reset", sid, "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}
	got := decode[resetResponse](t, w)
	if got.Status != "success" || got.InitialMessage == "" {
		t.Fatalf("reset = %+v", got)
	}

	state, err := env.store.Load(context.Background(), sid)
	if err != nil {
		t.Fatal(err)
	}
	if state.MoodContext != mood.Initial || len(state.Scores) != 0 || state.Profile.Name != "Dev" {
		t.Fatalf("state after reset = %+v", state)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, stubReader{})
	sid := uuid.NewString()

	w := env.do(t, http.MethodGet, "/api/profile", sid, "")
	p := decode[domain.Profile](t, w)
	if p.Name != domain.DefaultProfileName || p.Age != nil {
		t.Fatalf("default profile = %+v", p)
	}

	w = env.do(t, http.MethodPost, "/api/profile", sid, `{"name": "Noor", "age": "34", "weight": 61.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}
	resp := decode[struct {
		Message string         `json:"message"`
		Profile domain.Profile `json:"profile"`
	}](t, w)
	if resp.Profile.Name != "Noor" || resp.Profile.Age == nil || *resp.Profile.Age != 34 {
		t.Fatalf("profile = %+v", resp.Profile)
	}
	if resp.Profile.Weight == nil || *resp.Profile.Weight != 61.5 {
		t.Fatalf("weight = %v", resp.Profile.Weight)
	}

	w = env.do(t, http.MethodPost, "/api/profile", sid, `{"age": ""}`)
	resp = decode[struct {
		Message string         `json:"message"`
		Profile domain.Profile `json:"profile"`
	}](t, w)
	if resp.Profile.Age != nil || resp.Profile.Name != "Noor" || resp.Profile.Weight == nil {
		t.Fatalf("partial update = %+v", resp.Profile)
	}
}

func TestProfileRejectsBadNumbers(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, stubReader{})

	for _, body := range []string{`{"age": "old"}`, `{"weight": true}`, `{}`, `not json`} {
		w := env.do(t, http.MethodPost, "/api/profile", uuid.NewString(), body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestParseOptionalNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    *float64
		wantErr bool
	}{
		{`null`, nil, false},
		{`""`, nil, false},
		{`0`, nil, false},
		{`"  "`, nil, false},
		{`42`, ptr(42.0), false},
		{`"7.5"`, ptr(7.5), false},
		{`"abc"`, nil, true},
		{`[1]`, nil, true},
	}
	for _, tt := range tests {
		got, err := parseOptionalNumber(json.RawMessage(tt.raw))
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: err = %v", tt.raw, err)
		}
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func TestMoodHistoryEndpoint(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	env := newTestEnv(t, stubReader{entries: []domain.MoodLogEntry{
		{Timestamp: now, Mood: mood.Happy, Score: 0.4},
		{Timestamp: now, Mood: mood.Sad, Score: -0.2},
	}})

	w := env.do(t, http.MethodGet, "/api/mood_history?days=3", uuid.NewString(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	h := decode[insight.DailyHistory](t, w)
	if len(h.Labels) != 3 || !h.HasRealData {
		t.Fatalf("history = %+v", h)
	}
	last := h.Scores[2]
	if last == nil || *last != 0.1 {
		t.Fatalf("today = %v, want 0.1", last)
	}
	if h.Scores[0] != nil {
		t.Fatal("empty day not null")
	}

	w = env.do(t, http.MethodGet, "/api/mood_history?days=abc", uuid.NewString(), "")
	if h := decode[insight.DailyHistory](t, w); len(h.Labels) != insight.DefaultDays {
		t.Fatalf("default window = %d", len(h.Labels))
	}
}

func TestMoodHistoryError(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, stubReader{err: errors.New("db down")})

	w := env.do(t, http.MethodGet, "/api/mood_history", uuid.NewString(), "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestDailyQuoteEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, stubReader{latest: mood.Happy})

	w := env.do(t, http.MethodGet, "/api/daily_quote", uuid.NewString(), "")
	got := decode[map[string]string](t, w)
	if !slices.Contains(insight.Quotes(insight.PoolPositive), got["quote"]) {
		t.Fatalf("quote %q not positive", got["quote"])
	}
}

func TestHealthReportsDegradedDependency(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
		"sessions": PingFunc(func(context.Context) error { return errors.New("down") }),
	}, time.Second)
	r := chi.NewRouter()
	h.RegisterHealth(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
	got := decode[struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}](t, w)
	if got.Status != "degraded" || got.Checks["database"] != "ok" || got.Checks["sessions"] != "unreachable" {
		t.Fatalf("health = %+v", got)
	}
}
