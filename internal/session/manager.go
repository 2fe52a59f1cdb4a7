// Package session issues and reads the signed identity cookie. The server
// keeps no session state; a token that fails verification is the same as no
// session.
package session

import (
	"net/http"
	"time"

	"gopherauth/internal/pkg/jwtutil"
)

// Identity is the authenticated principal carried by a valid session.
type Identity struct {
	UserID   uint
	Username string
}

type Options struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

type Manager struct {
	secret     string
	ttl        time.Duration
	cookieName string
	secure     bool
}

func NewManager(opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	return &Manager{
		secret:     opts.Secret,
		ttl:        opts.TTL,
		cookieName: opts.CookieName,
		secure:     opts.Secure,
	}
}

// Start replaces any existing session with one for the given user.
func (m *Manager) Start(w http.ResponseWriter, userID uint, username string) error {
	token, err := jwtutil.GenerateToken(m.secret, m.ttl, userID, username)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  time.Now().Add(m.ttl),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// End clears the session cookie. Safe to call without a session.
func (m *Manager) End(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) Current(r *http.Request) (*Identity, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := jwtutil.ParseToken(m.secret, cookie.Value)
	if err != nil {
		return nil, false
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username}, true
}
