// internal/app/features/authgoogle/flow.go
package authgoogle

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"
)

const (
	flowCookieName = "agreeverse-oauth"
	flowMaxAge     = 10 * 60
)

// Flow binds an OAuth state to the browser that started the sign-in, so a
// callback replayed from another browser does not match.
type Flow struct {
	store *sessions.CookieStore
}

// NewFlow signs and encrypts the flow cookie with keys derived from key.
func NewFlow(key string, secure bool) *Flow {
	hashKey, blockKey := deriveKeys(key)
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/auth",
		MaxAge:   flowMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Flow{store: store}
}

// Bind records state in the flow cookie.
func (f *Flow) Bind(w http.ResponseWriter, r *http.Request, state string) error {
	sess, err := f.store.New(r, flowCookieName)
	if err != nil && !isDecodeErr(err) {
		return err
	}
	sess.Values["state"] = state
	return sess.Save(r, w)
}

// Bound reports whether the flow cookie carries state. A missing or
// tampered cookie is simply unbound.
func (f *Flow) Bound(r *http.Request, state string) bool {
	if state == "" {
		return false
	}
	sess, err := f.store.Get(r, flowCookieName)
	if err != nil {
		return false
	}
	got, _ := sess.Values["state"].(string)
	return got == state
}

// Clear expires the flow cookie.
func (f *Flow) Clear(w http.ResponseWriter, r *http.Request) {
	sess, _ := f.store.New(r, flowCookieName)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

func isDecodeErr(err error) bool {
	var scErr securecookie.Error
	return errors.As(err, &scErr) && scErr.IsDecode()
}

// deriveKeys expands one secret into independent HMAC and AES keys.
func deriveKeys(key string) (hashKey, blockKey []byte) {
	kdf := hkdf.New(sha256.New, []byte(key), nil, []byte("agreeverse oauth flow"))
	hashKey = make([]byte, 32)
	blockKey = make([]byte, 32)
	_, _ = io.ReadFull(kdf, hashKey)
	_, _ = io.ReadFull(kdf, blockKey)
	return hashKey, blockKey
}

// generateState returns a random URL-safe state token.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
