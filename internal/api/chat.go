package api

import (
	"encoding/json"
	"net/http"

	"github.com/ashureev/mood-reflect/internal/conversation"
)

const fallbackBotReply = "Oops! My circuits are tangled."

type chatRequest struct {
	Message *string `json:"message"`
}

type resetResponse struct {
	Status         string `json:"status"`
	InitialMessage string `json:"initial_message,omitempty"`
	Message        string `json:"message,omitempty"`
}

// Chat handles one user message. A null or missing message asks for the
// opening question instead.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	var (
		reply conversation.Reply
		err   error
	)
	if req.Message == nil {
		reply, err = h.conv.Greet(r.Context(), sid)
	} else {
		reply, err = h.conv.Chat(r.Context(), sid, *req.Message)
	}
	if err != nil {
		h.logger.Error("chat turn failed", "session_id", sid, "error", err)
		JSON(w, http.StatusInternalServerError, map[string]string{
			"error":     "internal error",
			"bot_reply": fallbackBotReply,
		})
		return
	}

	JSON(w, http.StatusOK, reply)
}

// Reset clears the conversation and returns a fresh opening question. A
// live WebSocket for the same session is told about the reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	prompt, err := h.conv.Reset(r.Context(), sid)
	if err != nil {
		h.logger.Error("reset failed", "session_id", sid, "error", err)
		JSON(w, http.StatusInternalServerError, resetResponse{
			Status:  "error",
			Message: "Failed to get new question after reset.",
		})
		return
	}

	if h.sockets != nil {
		h.sockets.Send(r.Context(), sid, wsFrame{Type: frameReset, InitialMessage: prompt})
	}
	JSON(w, http.StatusOK, resetResponse{Status: "success", InitialMessage: prompt})
}
