// Package api provides HTTP handlers for the mood API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/mood-reflect/internal/conversation"
	"github.com/ashureev/mood-reflect/internal/domain"
	"github.com/ashureev/mood-reflect/internal/identity"
	"github.com/ashureev/mood-reflect/internal/insight"
)

// Conversation is the chat surface the handlers drive.
type Conversation interface {
	Greet(ctx context.Context, sessionID string) (conversation.Reply, error)
	Chat(ctx context.Context, sessionID, text string) (conversation.Reply, error)
	Reset(ctx context.Context, sessionID string) (string, error)
	Profile(ctx context.Context, sessionID string) (domain.Profile, error)
	UpdateProfile(ctx context.Context, sessionID string, patch domain.ProfilePatch) (domain.Profile, error)
}

// Insights serves chart data and quotes.
type Insights interface {
	History(ctx context.Context, days int) (insight.DailyHistory, error)
	DailyQuote(ctx context.Context) string
}

// Handler serves the chat, profile and insight endpoints.
type Handler struct {
	conv     Conversation
	insights Insights
	sockets  *SocketRegistry
	logger   *slog.Logger
}

// NewHandler creates a Handler. sockets may be nil when WebSocket chat is
// not served.
func NewHandler(conv Conversation, insights Insights, sockets *SocketRegistry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{conv: conv, insights: insights, sockets: sockets, logger: logger}
}

// RegisterRoutes registers the HTTP routes. chatMiddleware wraps the
// message-accepting endpoints only.
func (h *Handler) RegisterRoutes(r chi.Router, chatMiddleware ...func(http.Handler) http.Handler) {
	r.With(chatMiddleware...).Post("/chat", h.Chat)
	r.Post("/reset", h.Reset)

	r.Route("/api", func(r chi.Router) {
		r.Get("/profile", h.GetProfile)
		r.Post("/profile", h.UpdateProfile)
		r.Get("/mood_history", h.MoodHistory)
		r.Get("/daily_quote", h.DailyQuote)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func sessionID(r *http.Request) string {
	return identity.SessionIDFromContext(r.Context())
}
