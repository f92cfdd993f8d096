package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestSecret signs tokens in handler tests.
const TestSecret = "test-secret-0123456789abcdef0123456789"

// NewTokens returns a Tokens signed with TestSecret.
func NewTokens(t *testing.T) *auth.Tokens {
	t.Helper()
	tokens, err := auth.NewTokens(TestSecret)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return tokens
}

// SessionCookie issues a one-hour token for id/role wrapped in the session cookie.
func SessionCookie(t *testing.T, tokens *auth.Tokens, id primitive.ObjectID, role models.Role) *http.Cookie {
	t.Helper()
	tok, err := tokens.Issue(id, role, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: tok}
}

// JSONRequest creates a request with a JSON body.
func JSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertRedirect checks for a redirect whose Location starts with prefix.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, prefix string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusTemporaryRedirect {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	if loc := r.Header().Get("Location"); !strings.HasPrefix(loc, prefix) {
		t.Errorf("redirect location: got %q, want prefix %q", loc, prefix)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q: %s", expected, r.Body.String())
	}
}

// JSON decodes the response body into a map.
func (r *ResponseRecorder) JSON(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(r.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", r.Body.String(), err)
	}
	return m
}

// Cookie returns the named cookie set on the response, or nil.
func (r *ResponseRecorder) Cookie(name string) *http.Cookie {
	for _, c := range r.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
