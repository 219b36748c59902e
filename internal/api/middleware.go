/**
 * @description
 * Session resolution and submit rate limiting for the wizard routes.
 */
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sohamda/fantasy-football/internal/session"
)

// SessionCookieName carries the signed session token for browser clients.
const SessionCookieName = "poly_wizard"

type contextKey string

const sessionContextKey = contextKey("wizardSession")

// SubmitLimiter decides whether a wizard session may start another submission.
type SubmitLimiter interface {
	AllowSubmit(ctx context.Context, sessionID string) (allowed bool, retryAfter int, err error)
}

// SessionFromContext returns the session injected by RequireSession.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*session.Session)
	return s, ok
}

// tokenFromRequest prefers the Authorization header and falls back to the cookie.
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// lookupSession resolves the request's token to a live session.
func (h *Handler) lookupSession(r *http.Request) (*session.Session, error) {
	token := tokenFromRequest(r)
	if token == "" {
		return nil, session.ErrInvalidToken
	}
	id, err := h.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(id)
}

// RequireSession rejects requests without a valid, live wizard session.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := h.lookupSession(r)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "wizard session missing or expired")
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SubmitRateLimit refuses submissions beyond the session's limit. It must run inside RequireSession.
func (h *Handler) SubmitRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := SessionFromContext(r.Context())
		if ok, retryAfter := h.allowSubmit(r.Context(), s); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			respondWithError(w, http.StatusTooManyRequests, fmt.Sprintf("too many registration attempts, retry in %d seconds", retryAfter))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allowSubmit consumes one submit attempt for the session. Limiter errors are logged and the attempt is allowed.
func (h *Handler) allowSubmit(ctx context.Context, s *session.Session) (bool, int) {
	if h.limiter == nil || s == nil {
		return true, 0
	}

	allowed, retryAfter, err := h.limiter.AllowSubmit(ctx, s.ID)
	if err != nil {
		h.logger.Warn("submit rate limiter unavailable", "session_id", s.ID, "error", err)
		return true, 0
	}
	if !allowed {
		submitRateLimitedTotal.Inc()
		return false, retryAfter
	}
	return true, 0
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
