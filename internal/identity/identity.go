// Package identity provides anonymous per-device session identity.
package identity

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CookieName        = "mood_session"
	SessionHeaderName = "X-Mood-Session-ID"
	DefaultCookieTTL  = 30 * 24 * time.Hour
)

type contextKey int

const sessionIDKey contextKey = iota

// SessionIDFromContext extracts the session ID from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSessionID returns a copy of ctx carrying sessionID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// normalize returns the canonical form of id, or "" when id is not a UUID.
func normalize(id string) string {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return ""
	}
	return parsed.String()
}

func setCookie(w http.ResponseWriter, id string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// sessionIDFromRequest prefers the header, then the cookie. It reports
// whether the cookie needs to be (re)issued.
func sessionIDFromRequest(r *http.Request) (id string, fromHeader bool) {
	if id := normalize(r.Header.Get(SessionHeaderName)); id != "" {
		return id, true
	}
	if c, err := r.Cookie(CookieName); err == nil {
		if id := normalize(c.Value); id != "" {
			return id, false
		}
	}
	return "", false
}

// Middleware resolves the caller's session ID and stores it in the request
// context. Browsers get a sliding cookie; API clients may send the
// X-Mood-Session-ID header instead.
func Middleware(ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = DefaultCookieTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, fromHeader := sessionIDFromRequest(r)
			if id == "" {
				id = uuid.NewString()
			}
			if !fromHeader {
				setCookie(w, id, ttl, secure)
			}
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}

// IPFromRequest returns a normalized remote IP for request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
