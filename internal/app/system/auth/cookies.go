// internal/app/system/auth/cookies.go
package auth

import (
	"net/http"
	"time"
)

// CookieName is the session cookie that carries the token.
const CookieName = "token"

// Cookies writes and reads the session cookie. Every route shares one
// Secure policy.
type Cookies struct {
	Name   string
	Domain string
	Secure bool
}

// NewCookies returns the session cookie transport.
func NewCookies(domain string, secure bool) Cookies {
	return Cookies{Name: CookieName, Domain: domain, Secure: secure}
}

func (c Cookies) name() string {
	if c.Name == "" {
		return CookieName
	}
	return c.Name
}

// Set stores token for ttl. Max-Age matches the token lifetime.
func (c Cookies) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear overwrites the cookie with an empty, already-expired value.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the token from the request, if any.
func (c Cookies) Read(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.name())
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}
