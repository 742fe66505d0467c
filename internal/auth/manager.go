package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// DefaultCookieName names the session cookie.
const DefaultCookieName = "fintrack_session"

// ManagerConfig configures cookie sessions.
type ManagerConfig struct {
	Secret        []byte
	TTL           time.Duration
	CookieName    string
	SecureCookies bool
}

// Manager starts, resolves and ends cookie sessions. The cookie holds a
// signed token naming a server-side session, so logout revokes it.
type Manager struct {
	tokens   *JWTManager
	sessions SessionStore
	ttl      time.Duration
	cookie   string
	secure   bool
	now      func() time.Time
}

func NewManager(cfg ManagerConfig, sessions SessionStore) *Manager {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &Manager{
		tokens:   NewJWTManager(cfg.Secret, cfg.TTL),
		sessions: sessions,
		ttl:      cfg.TTL,
		cookie:   name,
		secure:   cfg.SecureCookies,
		now:      time.Now,
	}
}

// Start creates a session for user and sets the session cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, user *core.User) (Session, error) {
	s := Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.sessions.Create(ctx, s); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	token, err := m.tokens.Generate(s)
	if err != nil {
		_ = m.sessions.Delete(ctx, s.ID)
		return Session{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Current resolves the session behind the request cookie. Any failure
// yields core.ErrNotAuthenticated.
func (m *Manager) Current(r *http.Request) (Session, error) {
	c, err := r.Cookie(m.cookie)
	if err != nil || c.Value == "" {
		return Session{}, core.ErrNotAuthenticated
	}

	claims, err := m.tokens.Validate(c.Value)
	if err != nil {
		return Session{}, core.ErrNotAuthenticated
	}

	s, err := m.sessions.Lookup(r.Context(), claims.SessionID())
	if err != nil {
		return Session{}, core.ErrNotAuthenticated
	}
	if s.UserID != claims.UserID {
		return Session{}, core.ErrNotAuthenticated
	}
	return s, nil
}

// End revokes the current session, if any, and always clears the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(m.cookie); err == nil {
		if claims, err := m.tokens.Validate(c.Value); err == nil {
			if err := m.sessions.Delete(r.Context(), claims.SessionID()); err != nil {
				slog.WarnContext(r.Context(), "Failed to delete session", "component", "auth", "error", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFromContext returns the session stored by LoadSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// UserID returns the authenticated user id or core.ErrNotAuthenticated.
func UserID(ctx context.Context) (int64, error) {
	s, ok := SessionFromContext(ctx)
	if !ok || s.UserID == 0 {
		return 0, core.ErrNotAuthenticated
	}
	return s.UserID, nil
}

// LoadSession attaches the caller's session to the request context when
// the cookie is valid. Requests without one pass through unchanged.
func (m *Manager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, err := m.Current(r); err == nil {
			r = r.WithContext(WithSession(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth lets requests with a session through and hands the rest to
// onDenied. It must run after LoadSession.
func RequireAuth(onDenied http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := UserID(r.Context()); errors.Is(err, core.ErrNotAuthenticated) {
				onDenied(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
