// Package authclient is the client-side auth context of the marketplace
// API. It keeps the session cookie in a public-suffix aware jar, remembers
// the signed-in identity in memory and in a durable Cache, and fails closed:
// any failed identity fetch forgets everything.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// ErrSignInRequired means there is no usable session and the caller should
// send the user to sign in.
var ErrSignInRequired = errors.New("sign-in required")

// Identity is the signed-in account as the dashboard endpoint reports it.
type Identity struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Phone         string `json:"phone,omitempty"`
	CoordinatorID string `json:"coordinatorId,omitempty"`
	AdminID       string `json:"adminId,omitempty"`
	Picture       string `json:"googleProfilePicture,omitempty"`
}

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Message, strings.Join(msgs, "; "), e.Status)
}

// Client talks to one API server.
type Client struct {
	base  *url.URL
	http  *http.Client
	cache Cache
	log   *zap.Logger

	mu      sync.Mutex
	current *State
}

// New builds a client for baseURL. A session found in cache is restored
// into memory and into the cookie jar; it is not re-validated until Guard
// or FetchUserDetails runs. A nil cache keeps state in memory only.
func New(baseURL string, cache Cache, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		base:  base,
		http:  &http.Client{Jar: jar, Timeout: 30 * time.Second},
		cache: cache,
		log:   logger,
	}

	if cache != nil {
		st, err := cache.Load()
		if err != nil {
			logger.Warn("ignoring unreadable session cache", zap.Error(err))
			_ = cache.Clear()
		} else if st != nil {
			c.current = st
			if st.Token != "" {
				jar.SetCookies(base, []*http.Cookie{{Name: auth.CookieName, Value: st.Token, Path: "/"}})
			}
		}
	}
	return c, nil
}

// Current returns the remembered session without contacting the server.
func (c *Client) Current() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return State{}, false
	}
	return *c.current, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Account operations                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// SignUpRequest is the sign-up body. Phone is required for farmers and
// coordinators; the link ids are optional.
type SignUpRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Phone         string `json:"phone,omitempty"`
	CoordinatorID string `json:"coordinatorId,omitempty"`
	AdminID       string `json:"adminId,omitempty"`
}

// SignUp creates an account. It does not sign in.
func (c *Client) SignUp(ctx context.Context, role string, req SignUpRequest) error {
	r, err := parseRole(role)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/v1/"+r+"/signup", req, nil)
}

// SignIn authenticates with an email (or phone, for farmers and
// coordinators) and then loads the identity.
func (c *Client) SignIn(ctx context.Context, role, identifier, password string) (*Identity, error) {
	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	body := map[string]string{"identifier": identifier, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/"+r+"/signin", body, nil); err != nil {
		c.forget()
		return nil, err
	}
	return c.FetchUserDetails(ctx, r)
}

// FetchUserDetails loads the identity from role's dashboard. On success it
// is remembered; on any failure the remembered session is cleared.
func (c *Client) FetchUserDetails(ctx context.Context, role string) (*Identity, error) {
	r, err := parseRole(role)
	if err != nil {
		c.forget()
		return nil, err
	}
	var out struct {
		User Identity `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/"+r+"/dashboard", nil, &out); err != nil {
		c.log.Debug("fetch user details failed", zap.String("role", r), zap.Error(err))
		c.forget()
		return nil, err
	}

	st := State{Role: r, Identity: out.User, Token: c.token()}
	c.mu.Lock()
	c.current = &st
	c.mu.Unlock()
	if c.cache != nil {
		if err := c.cache.Save(st); err != nil {
			c.log.Warn("save session cache failed", zap.Error(err))
		}
	}
	return &st.Identity, nil
}

// Guard re-validates the remembered role against the server. It returns
// ErrSignInRequired when nothing is remembered or the check fails.
func (c *Client) Guard(ctx context.Context) (*Identity, error) {
	st, ok := c.Current()
	if !ok {
		return nil, ErrSignInRequired
	}
	ident, err := c.FetchUserDetails(ctx, st.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignInRequired, err)
	}
	return ident, nil
}

// Verify asks the server which role the current token carries.
func (c *Client) Verify(ctx context.Context) (string, error) {
	var out struct {
		Role string `json:"role"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/verify", nil, &out); err != nil {
		return "", err
	}
	return out.Role, nil
}

// Logout signs out on the server. It reports whether that succeeded; only
// then is the remembered session cleared.
func (c *Client) Logout(ctx context.Context) bool {
	if err := c.do(ctx, http.MethodPost, "/api/v1/signout", nil, nil); err != nil {
		c.log.Warn("sign-out failed", zap.Error(err))
		return false
	}
	c.forget()
	return true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Plumbing                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func parseRole(s string) (string, error) {
	r, ok := models.ParseRole(s)
	if !ok {
		return "", fmt.Errorf("unknown role %q (want admin, coordinator, farmer or user)", s)
	}
	return string(r), nil
}

func (c *Client) forget() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: auth.CookieName, Path: "/", MaxAge: -1}})
	if c.cache != nil {
		if err := c.cache.Clear(); err != nil {
			c.log.Warn("clear session cache failed", zap.Error(err))
		}
	}
}

func (c *Client) token() string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == auth.CookieName {
			return ck.Value
		}
	}
	return ""
}

// do sends a JSON request and decodes a 2xx body into out (when non-nil).
// Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("HTTP request", zap.String("method", method), zap.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("HTTP response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(data)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env struct {
			Message string       `json:"message"`
			Errors  []FieldError `json:"errors"`
		}
		if json.Unmarshal(data, &env) == nil && env.Message != "" {
			apiErr.Message = env.Message
			apiErr.Errors = env.Errors
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
		}
	}
	return nil
}
