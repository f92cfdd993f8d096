// internal/app/features/accounts/signin.go
package accounts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/passwords"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type signinRequest struct {
	Email      string `json:"email"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// identifier prefers the explicit identifier field; older clients send email.
func (s signinRequest) identifier() string {
	if id := strings.TrimSpace(s.Identifier); id != "" {
		return id
	}
	return strings.TrimSpace(s.Email)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signin                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// Signin checks credentials against this role's collection only and, on
// success, sets the session cookie with the same lifetime as the token.
func (h *Handler[T, P]) Signin(w http.ResponseWriter, r *http.Request) {
	role := h.roleName()

	var req signinRequest
	if err := respond.Decode(w, r, &req, maxBody); err != nil {
		h.fail(w, "signin", apierr.New(apierr.Validation, "Invalid request body"))
		return
	}
	ident := req.identifier()
	var vs []apierr.Violation
	if ident == "" {
		vs = append(vs, apierr.Violation{Field: "email", Message: "Email is required."})
	}
	if req.Password == "" {
		vs = append(vs, apierr.Violation{Field: "password", Message: "Password is required."})
	}
	if len(vs) > 0 {
		h.fail(w, "signin", apierr.Invalid(vs))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if ok, limitType, msg := h.Limiter.Check(r, string(role), ident); !ok {
		h.Audit.LoginFailedRateLimit(ctx, r, role, ident, limitType)
		h.Metrics.Auth(string(role), "signin", "rate_limited")
		apierr.Write(w, apierr.New(apierr.RateLimited, msg))
		return
	}

	rec, err := h.role.Store.GetByLogin(ctx, ident)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Audit.LoginFailedUserNotFound(ctx, r, role, ident)
		h.Metrics.Auth(string(role), "signin", "not_found")
		apierr.Write(w, apierr.New(apierr.NotFound, role.Title()+" not found"))
		return
	}
	if err != nil {
		h.fail(w, "signin", apierr.Wrap(err, "load identity"))
		return
	}
	base := P(rec).Base()

	if !base.HasPassword() {
		h.Audit.LoginFailedNoPassword(ctx, r, role, base.ID)
		h.Metrics.Auth(string(role), "signin", "no_password")
		apierr.Write(w, apierr.New(apierr.InvalidCredentials, "Invalid credentials"))
		return
	}
	ok, err := passwords.Verify(req.Password, *base.PasswordHash)
	if err != nil {
		h.fail(w, "signin", apierr.Wrap(err, "verify password"))
		return
	}
	if !ok {
		h.Audit.LoginFailedWrongPassword(ctx, r, role, base.ID)
		h.Metrics.Auth(string(role), "signin", "bad_password")
		apierr.Write(w, apierr.New(apierr.InvalidCredentials, "Invalid credentials"))
		return
	}

	token, err := h.Tokens.Issue(base.ID, role, h.TokenTTL)
	if err != nil {
		h.fail(w, "signin", apierr.Wrap(err, "issue token"))
		return
	}
	h.Limiter.Succeeded(string(role), ident)
	h.Cookies.Set(w, token, h.TokenTTL)

	h.Audit.LoginSuccess(ctx, r, role, base.ID, "password")
	h.Metrics.Auth(string(role), "signin", "success")
	h.Log.Info("signin", zap.String("role", string(role)), zap.String("id", base.ID.Hex()))
	respond.OK(w, http.StatusOK, role.Title()+" signin successful.", map[string]any{"role": role})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signout                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// Signout clears the session cookie. It succeeds whether or not the caller
// was signed in.
func (h *Handler[T, P]) Signout(w http.ResponseWriter, r *http.Request) {
	role := h.roleName()
	if tok, ok := h.Cookies.Read(r); ok {
		if claims, err := h.Tokens.Verify(tok); err == nil {
			id := claims.Subject()
			h.Audit.Logout(r.Context(), r, role, &id)
		}
	}
	h.Cookies.Clear(w)
	respond.OK(w, http.StatusOK, "Logged out successfully", nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// Dashboard returns the identity the guard resolved.
func (h *Handler[T, P]) Dashboard(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.role.Guard.From(r)
	if !ok {
		apierr.Write(w, apierr.New(apierr.Unauthenticated, "Unauthorized: No token provided"))
		return
	}
	respond.OK(w, http.StatusOK, h.roleName().Title()+" login successful", map[string]any{"user": rec})
}
