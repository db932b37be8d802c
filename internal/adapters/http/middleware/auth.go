package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/securecookie"

	"communityhub/internal/domain/identity"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// Session represents an authenticated session.
type Session struct {
	Token     string
	Identity  identity.Identity
	CreatedAt time.Time
}

// SessionStore is an in-memory session store.
// INVARIANT: a session older than ttl is never returned
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create stores a new session and returns the token.
// PRE: id is non-nil
// POST: Session is stored, token is returned
func (ss *SessionStore) Create(id identity.Identity) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{Token: token, Identity: id, CreatedAt: ss.now()}
	return token, nil
}

// Get retrieves a session by token.
// PRE: none
// POST: Returns session if present and not expired; an expired session is removed
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if ss.now().Sub(session.CreatedAt) > ss.ttl {
		ss.Delete(token)
		return Session{}, false
	}
	return session, true
}

// Delete removes a session by token.
// PRE: none
// POST: Session with given token is removed
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// Update replaces the identity of a live session, keeping its age.
// PRE: token exists in the store
// POST: Returns false when the token is unknown
func (ss *SessionStore) Update(token string, id identity.Identity) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok {
		return false
	}
	session.Identity = id
	ss.sessions[token] = session
	return true
}

// Sweep drops every expired session and returns how many were removed.
func (ss *SessionStore) Sweep() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	removed := 0
	for token, s := range ss.sessions {
		if ss.now().Sub(s.CreatedAt) > ss.ttl {
			delete(ss.sessions, token)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (ss *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := ss.Sweep(); n > 0 {
				slog.Debug("session_sweep", "removed", n)
			}
		}
	}
}

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "communityhub_session"

// Cookies signs and verifies the session cookie.
type Cookies struct {
	codec  *securecookie.SecureCookie
	maxAge int
	secure bool
}

// NewCookies creates a cookie codec signing with hashKey. Values are authenticated, not encrypted.
// PRE: hashKey is non-empty
// POST: cookies older than ttl fail verification
func NewCookies(hashKey []byte, ttl time.Duration, secure bool) *Cookies {
	maxAge := int(ttl / time.Second)
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(maxAge)
	return &Cookies{codec: codec, maxAge: maxAge, secure: secure}
}

// Set writes the signed session cookie.
// PRE: token is non-empty
// POST: HttpOnly, SameSite=Strict cookie set on w
func (c *Cookies) Set(w http.ResponseWriter, token string) error {
	value, err := c.codec.Encode(SessionCookieName, token)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   c.maxAge,
	})
	return nil
}

// Token returns the verified session token from the request, if any.
func (c *Cookies) Token(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	var token string
	if err := c.codec.Decode(SessionCookieName, cookie.Value, &token); err != nil {
		slog.Debug("session_cookie_rejected", "error", err)
		return "", false
	}
	return token, token != ""
}

// Clear removes the session cookie.
func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// Auth returns middleware that extracts the session from the cookie and sets it in context.
// It does NOT block unauthenticated requests; use RequireAuth or RequireAdmin for that.
func Auth(sessions *SessionStore, cookies *Cookies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := cookies.Token(r); ok {
				if session, ok := sessions.Get(token); ok {
					r = r.WithContext(ContextWithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that blocks unauthenticated requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin returns middleware that admits only the administrator.
// Anonymous callers get 401, volunteers 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !id.IsAdmin() {
			slog.Warn("auth_denied", "email", id.Email(), "method", r.Method, "path", r.URL.Path)
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// IdentityFromContext returns the authenticated principal, if any.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	session, ok := GetSessionFromContext(ctx)
	if !ok || session.Identity == nil {
		return nil, false
	}
	return session.Identity, true
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
