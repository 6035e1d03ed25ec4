package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/ashureev/mood-reflect/internal/domain"
)

var errBadNumber = errors.New("bad number")

// GetProfile returns the session's profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	profile, err := h.conv.Profile(r.Context(), sid)
	if err != nil {
		h.logger.Error("load profile failed", "session_id", sid, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	JSON(w, http.StatusOK, profile)
}

// UpdateProfile patches the fields present in the body. Empty, null and
// zero values clear age and weight.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body) == 0 {
		Error(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	var patch domain.ProfilePatch
	if raw, ok := body["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			Error(w, http.StatusBadRequest, "Invalid name format")
			return
		}
		patch.Name = &name
	}
	if raw, ok := body["age"]; ok {
		v, err := parseOptionalNumber(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, "Invalid age format")
			return
		}
		patch.Age.Set = true
		if v != nil {
			age := int(*v)
			patch.Age.Value = &age
		}
	}
	if raw, ok := body["weight"]; ok {
		v, err := parseOptionalNumber(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, "Invalid weight format")
			return
		}
		patch.Weight = domain.Optional[float64]{Set: true, Value: v}
	}

	profile, err := h.conv.UpdateProfile(r.Context(), sid, patch)
	if err != nil {
		h.logger.Error("update profile failed", "session_id", sid, "error", err)
		Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

// parseOptionalNumber accepts a JSON number or numeric string. null, "" and
// 0 mean "clear" and yield nil.
func parseOptionalNumber(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var v float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errBadNumber
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errBadNumber
		}
		v = f
	default:
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, errBadNumber
		}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errBadNumber
	}
	if v == 0 {
		return nil, nil
	}
	return &v, nil
}
