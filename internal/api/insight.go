package api

import (
	"net/http"
	"strconv"
)

// MoodHistory returns daily average scores for charting. days defaults to
// seven; unparsable values fall back to the default.
func (h *Handler) MoodHistory(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil {
		days = 0
	}

	history, err := h.insights.History(r.Context(), days)
	if err != nil {
		h.logger.Error("mood history failed", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load mood history")
		return
	}
	JSON(w, http.StatusOK, history)
}

// DailyQuote returns a quote matching today's latest mood.
func (h *Handler) DailyQuote(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"quote": h.insights.DailyQuote(r.Context())})
}
