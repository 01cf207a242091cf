package session

import (
	"net/http"
	"time"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "jobs_auth_token"
	// DefaultMaxAge is the lifetime of the session cookie. The browser stops
	// presenting the cookie afterwards; the server does not re-check age.
	DefaultMaxAge = 24 * time.Hour
)

// CookiePolicy describes how the session cookie is written and cleared.
type CookiePolicy struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// DefaultCookiePolicy returns the cookie policy for the given mode.
// Secure is only set in production, where the API is served over TLS.
func DefaultCookiePolicy(production bool) CookiePolicy {
	return CookiePolicy{
		Name:   CookieName,
		Secure: production,
		MaxAge: DefaultMaxAge,
	}
}

func (p CookiePolicy) name() string {
	if p.Name == "" {
		return CookieName
	}
	return p.Name
}

// Read returns the session cookie value from r and whether it was present.
func (p CookiePolicy) Read(r *http.Request) (string, bool) {
	ck, err := r.Cookie(p.name())
	if err != nil {
		return "", false
	}
	return ck.Value, true
}

// Set attaches token to the response as the session cookie.
func (p CookiePolicy) Set(w http.ResponseWriter, token string) {
	maxAge := p.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	http.SetCookie(w, &http.Cookie{
		Name:     p.name(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear instructs the client to drop the session cookie.
func (p CookiePolicy) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
