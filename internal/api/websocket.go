package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/mood-reflect/internal/conversation"
	"github.com/ashureev/mood-reflect/internal/identity"
	"github.com/ashureev/mood-reflect/internal/mood"
)

// Frame types.
const (
	frameChat  = "chat"
	frameReset = "reset"
	framePing  = "ping"
	frameReply = "reply"
	framePong  = "pong"
	frameError = "error"
)

const (
	wsReadLimit    = 16 << 10
	wsWriteTimeout = 10 * time.Second
)

// wsFrame is the envelope for every message in either direction.
type wsFrame struct {
	Type           string     `json:"type"`
	Message        *string    `json:"message,omitempty"`
	BotReply       string     `json:"bot_reply,omitempty"`
	DetectedMood   mood.Label `json:"detected_mood,omitempty"`
	Score          *float64   `json:"score,omitempty"`
	InitialMessage string     `json:"initial_message,omitempty"`
	Error          string     `json:"error,omitempty"`
}

func replyFrame(r conversation.Reply) wsFrame {
	score := r.Score
	return wsFrame{Type: frameReply, BotReply: r.BotReply, DetectedMood: r.DetectedMood, Score: &score}
}

// Limiter throttles chat messages per session.
type Limiter interface {
	Allow(key string) bool
}

// WebSocketHandler serves chat over a WebSocket.
type WebSocketHandler struct {
	conv           Conversation
	sockets        *SocketRegistry
	limiter        Limiter
	allowedOrigins []string
	isDev          bool
	logger         *slog.Logger
}

// NewWebSocketHandler creates a WebSocket chat handler. limiter may be nil.
func NewWebSocketHandler(conv Conversation, sockets *SocketRegistry, limiter Limiter, allowedOrigins []string, isDev bool, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		conv:           conv,
		sockets:        sockets,
		limiter:        limiter,
		allowedOrigins: allowedOrigins,
		isDev:          isDev,
		logger:         logger,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sid := identity.SessionIDFromContext(r.Context())
	if sid == "" {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("Failed to accept WebSocket", "error", err, "session_id", sid)
		return
	}
	ws.SetReadLimit(wsReadLimit)
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			h.logger.Debug("Failed to close websocket", "error", closeErr, "session_id", sid)
		}
	}()

	h.sockets.Register(sid, ws)
	defer h.sockets.Unregister(sid, ws)

	h.readLoop(r.Context(), ws, sid)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(h.allowedOrigins, "*") || slices.Contains(h.allowedOrigins, origin) {
		return true
	}
	h.logger.Warn("WebSocket origin rejected", "origin", origin)
	return false
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, sid string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				h.logger.Debug("WebSocket closed by client", "session_id", sid)
			} else if ctx.Err() == nil {
				h.logger.Warn("WebSocket read error", "error", err, "session_id", sid)
			}
			return
		}

		var in wsFrame
		if err := json.Unmarshal(data, &in); err != nil {
			if err := h.write(ctx, ws, wsFrame{Type: frameError, Error: "invalid frame"}); err != nil {
				return
			}
			continue
		}

		if err := h.write(ctx, ws, h.dispatch(ctx, sid, in)); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) dispatch(ctx context.Context, sid string, in wsFrame) wsFrame {
	switch in.Type {
	case frameChat:
		if h.limiter != nil && !h.limiter.Allow(sid) {
			return wsFrame{Type: frameError, Error: "too many messages, slow down"}
		}
		var (
			reply conversation.Reply
			err   error
		)
		if in.Message == nil {
			reply, err = h.conv.Greet(ctx, sid)
		} else {
			reply, err = h.conv.Chat(ctx, sid, *in.Message)
		}
		if err != nil {
			h.logger.Error("chat turn failed", "session_id", sid, "error", err)
			return wsFrame{Type: frameError, Error: "internal error", BotReply: fallbackBotReply}
		}
		return replyFrame(reply)

	case frameReset:
		prompt, err := h.conv.Reset(ctx, sid)
		if err != nil {
			h.logger.Error("reset failed", "session_id", sid, "error", err)
			return wsFrame{Type: frameError, Error: "Failed to get new question after reset."}
		}
		return wsFrame{Type: frameReset, InitialMessage: prompt}

	case framePing:
		return wsFrame{Type: framePong}

	default:
		return wsFrame{Type: frameError, Error: "unknown frame type"}
	}
}

func (h *WebSocketHandler) write(ctx context.Context, ws *websocket.Conn, f wsFrame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		h.logger.Debug("WebSocket write error", "error", err)
		return err
	}
	return nil
}
