package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName     = "morsel_session"
	sessionUserID   = "user_id"
	sessionToken    = "token"
	sessionMaxAge   = 7 * 24 * 60 * 60
	MinCookieSecret = 32
)

// ErrNoCookieSession is returned when the request carries no usable identity cookie
var ErrNoCookieSession = errors.New("no session cookie")

// CookieSessions stores the acting user id and bearer token in a signed cookie
type CookieSessions struct {
	store  *sessions.CookieStore
	secure bool
}

// NewCookieSessions creates the cookie store. secret must be at least MinCookieSecret bytes.
// Cookies are signed with secret and encrypted with AES-256 under a key derived from it,
// since they carry the bearer token.
func NewCookieSessions(secret string, secure bool) (*CookieSessions, error) {
	if len(secret) < MinCookieSecret {
		return nil, fmt.Errorf("COOKIE_SECRET must be at least %d bytes", MinCookieSecret)
	}
	return &CookieSessions{
		store:  sessions.NewCookieStore([]byte(secret), deriveKey(secret, "cookie-encryption")),
		secure: secure,
	}, nil
}

// deriveKey returns a 32 byte key bound to purpose
func deriveKey(secret, purpose string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}

// Save writes the identity cookie
func (c *CookieSessions) Save(w http.ResponseWriter, r *http.Request, userID, token string) error {
	httpSession, err := c.store.Get(r, sessionName)
	if err != nil {
		// A cookie signed with an old secret; start over
		httpSession, err = c.store.New(r, sessionName)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
	}

	httpSession.Values[sessionUserID] = userID
	httpSession.Values[sessionToken] = token
	httpSession.Options.Path = "/"
	httpSession.Options.MaxAge = sessionMaxAge
	httpSession.Options.HttpOnly = true
	httpSession.Options.Secure = c.secure
	httpSession.Options.SameSite = http.SameSiteLaxMode

	if err := httpSession.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads the identity cookie
func (c *CookieSessions) Load(r *http.Request) (userID, token string, err error) {
	httpSession, err := c.store.Get(r, sessionName)
	if err != nil {
		return "", "", ErrNoCookieSession
	}

	userID, _ = httpSession.Values[sessionUserID].(string)
	token, _ = httpSession.Values[sessionToken].(string)
	if userID == "" || token == "" {
		return "", "", ErrNoCookieSession
	}
	return userID, token, nil
}

// Clear deletes the identity cookie
func (c *CookieSessions) Clear(w http.ResponseWriter, r *http.Request) {
	httpSession, err := c.store.Get(r, sessionName)
	if err != nil {
		httpSession, _ = c.store.New(r, sessionName)
	}
	httpSession.Options.Path = "/"
	httpSession.Options.MaxAge = -1
	_ = httpSession.Save(r, w)
}
