package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"ourforever/internal/store"
)

type ctxKey int

const userKey ctxKey = iota

// requireUser resolves the session cookie and rejects anonymous requests.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.opts.SessionCookie)
		if err != nil || cookie.Value == "" {
			writeMessage(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		user, err := s.Users.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		logger := zerolog.Ctx(ctx).With().Str("user_id", user.ID).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
	})
}

func currentUser(r *http.Request) store.User {
	user, _ := r.Context().Value(userKey).(store.User)
	return user
}

// displayName resolves which partner is acting. A valid identity cookie
// wins, then the account's first partner, then the configured default.
func (s *Server) displayName(r *http.Request, user store.User) string {
	if cookie, err := r.Cookie(identityCookie); err == nil && cookie.Value != "" && s.Identity != nil {
		if name, err := s.Identity.Parse(cookie.Value, user.ID); err == nil {
			return name
		}
	}
	if user.Partner1 != "" {
		return user.Partner1
	}
	return s.opts.DefaultIdentity
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.opts.CookieSecure,
		MaxAge:   int(ttl.Seconds()),
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.opts.CookieSecure,
		MaxAge:   -1,
	})
}
