// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/agreeverse/internal/app/store/oauthstate"
	"github.com/dalemusser/agreeverse/internal/app/system/auditlog"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/app/system/metrics"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateTTL          = 10 * time.Minute
)

// Config is the OAuth client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string // backend origin; the callback is BaseURL + "/auth/google/callback"
	FrontendURL  string // success and failure redirects land here
	TokenTTL     time.Duration

	// StrictState fails the callback when the state is missing, expired or
	// not bound to this browser instead of falling back to the user role.
	StrictState bool

	// Endpoint and UserInfoURL default to Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// Handler handles Google OAuth authentication.
type Handler struct {
	Config
	Reconciler *Reconciler
	States     *oauthstate.Store
	Flow       *Flow
	Tokens     *auth.Tokens
	Cookies    auth.Cookies
	Audit      *auditlog.Logger
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	cfg Config,
	rec *Reconciler,
	states *oauthstate.Store,
	flow *Flow,
	tokens *auth.Tokens,
	cookies auth.Cookies,
	audit *auditlog.Logger,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = google.Endpoint
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = googleUserInfoURL
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Handler{
		Config:     cfg,
		Reconciler: rec,
		States:     states,
		Flow:       flow,
		Tokens:     tokens,
		Cookies:    cookies,
		Audit:      audit,
		Metrics:    m,
		Log:        logger,
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  strings.TrimRight(h.BaseURL, "/") + "/auth/google/callback",
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, role models.Role, outcome, msg string) {
	h.Metrics.OAuth(string(role), outcome)
	http.Redirect(w, r, h.FrontendURL+"/auth-failure?"+url.Values{"error": {msg}}.Encode(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Records the sign-in intent under a fresh state and redirects to Google.      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role, ok := models.ParseRole(q.Get("role"))
	if !ok {
		if raw := q.Get("role"); raw != "" {
			h.Log.Warn("google sign-in: unknown role, using user", zap.String("role", raw))
		}
		role = models.RoleUser
	}

	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.fail(w, r, role, "not_configured", "Google sign-in is not available")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.fail(w, r, role, "error", "Internal error")
		return
	}

	intent := oauthstate.Intent{Role: role}
	switch role {
	case models.RoleFarmer:
		intent.CoordinatorID = strings.TrimSpace(q.Get("coordinatorId"))
	case models.RoleCoordinator:
		intent.AdminID = strings.TrimSpace(q.Get("adminId"))
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.States.Save(ctx, state, intent, time.Now().Add(stateTTL)); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.fail(w, r, role, "error", "Internal error")
		return
	}
	if err := h.Flow.Bind(w, r, state); err != nil {
		h.Log.Error("failed to bind OAuth state", zap.Error(err))
		h.fail(w, r, role, "error", "Internal error")
		return
	}

	h.Log.Debug("initiating Google OAuth flow", zap.String("role", string(role)))
	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Recovers the intent, exchanges the code, reconciles the profile and issues   |
| a session token.                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", q.Get("error_description")))
		h.Flow.Clear(w, r)
		h.fail(w, r, models.RoleUser, "provider_error", "Google sign-in was cancelled")
		return
	}

	state := q.Get("state")
	bound := h.Flow.Bound(r, state)
	h.Flow.Clear(w, r)

	intent, err := h.recoverIntent(ctx, state, bound)
	if err != nil {
		var rej *RejectError
		if errors.As(err, &rej) {
			h.fail(w, r, models.RoleUser, "invalid_state", rej.Reason)
			return
		}
		h.Log.Error("failed to load OAuth state", zap.Error(err))
		h.fail(w, r, models.RoleUser, "error", "Internal error")
		return
	}
	role := intent.Role

	code := q.Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.fail(w, r, role, "invalid_code", "Missing authorization code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.fail(w, r, role, "exchange_failed", "Failed to sign in with Google")
		return
	}

	profile, err := h.fetchProfile(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.fail(w, r, role, "userinfo_failed", "Failed to sign in with Google")
		return
	}

	rctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	out, err := h.Reconciler.Reconcile(rctx, intent, *profile)
	if err != nil {
		var rej *RejectError
		if errors.As(err, &rej) {
			h.Log.Info("Google OAuth: rejected",
				zap.String("email", profile.Email),
				zap.String("role", string(role)),
				zap.String("reason", rej.Reason))
			h.Audit.OAuthRejected(rctx, r, role, profile.Email, rej.Reason)
			h.fail(w, r, role, "rejected", rej.Reason)
			return
		}
		h.Log.Error("Google OAuth: reconcile failed", zap.Error(err))
		h.fail(w, r, role, "error", "Internal error")
		return
	}

	jwtToken, err := h.Tokens.Issue(out.ID, out.Role, h.TokenTTL)
	if err != nil {
		h.Log.Error("Google OAuth: issue token failed", zap.Error(err))
		h.fail(w, r, role, "error", "Internal error")
		return
	}
	h.Cookies.Set(w, jwtToken, h.TokenTTL)

	h.Audit.OAuthAccountCreated(rctx, r, out.Role, out.ID, profile.Email)
	h.Metrics.OAuth(string(out.Role), "created")
	h.Log.Info("identity created via Google OAuth",
		zap.String("id", out.ID.Hex()),
		zap.String("role", string(out.Role)))

	dest := h.FrontendURL + "/auth-success?" + url.Values{"newUser": {"true"}, "role": {string(out.Role)}}.Encode()
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// recoverIntent consumes state and applies the fallback policy: an unusable
// state yields the plain user role unless StrictState is set.
func (h *Handler) recoverIntent(ctx context.Context, state string, bound bool) (oauthstate.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	intent, ok, err := h.States.Consume(ctx, state)
	if err != nil {
		return oauthstate.Intent{}, err
	}

	switch {
	case ok && bound:
		if _, known := models.ParseRole(string(intent.Role)); !known {
			h.Log.Warn("OAuth state carries unknown role, using user", zap.String("role", string(intent.Role)))
			return oauthstate.Intent{Role: models.RoleUser}, nil
		}
		return intent, nil
	case h.StrictState:
		h.Log.Warn("OAuth state rejected", zap.Bool("found", ok), zap.Bool("bound", bound))
		return oauthstate.Intent{}, reject("Invalid or expired sign-in request")
	default:
		h.Log.Warn("OAuth state unusable, falling back to user role",
			zap.Bool("found", ok),
			zap.Bool("bound", bound))
		return oauthstate.Intent{Role: models.RoleUser}, nil
	}
}

func (h *Handler) fetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := h.oauth2Config().Client(ctx, token)

	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &p, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/logout                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogout clears the session and flow cookies and returns to the frontend.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if tok, ok := h.Cookies.Read(r); ok {
		if claims, err := h.Tokens.Verify(tok); err == nil {
			id := claims.Subject()
			h.Audit.Logout(r.Context(), r, claims.Role, &id)
		}
	}
	h.Cookies.Clear(w)
	h.Flow.Clear(w, r)
	dest := h.FrontendURL
	if dest == "" {
		dest = "/"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
