// internal/app/features/session/handler.go
package session

import (
	"net/http"

	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/auditlog"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler serves the role-agnostic session endpoints.
type Handler struct {
	Tokens  *auth.Tokens
	Cookies auth.Cookies
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(tokens *auth.Tokens, cookies auth.Cookies, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Tokens: tokens, Cookies: cookies, Audit: audit, Log: logger}
}

// Verify handles GET /api/v1/verify. It checks the token signature and
// expiry only; the identity is not loaded, so a deleted account still
// verifies until its token expires. Clients that need the record call the
// role's dashboard.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	tok, ok := h.Cookies.Read(r)
	if !ok {
		apierr.Write(w, apierr.New(apierr.Unauthenticated, "No token found"))
		return
	}
	claims, err := h.Tokens.Verify(tok)
	if err != nil {
		apierr.Write(w, apierr.New(apierr.InvalidToken, "Unauthorized"))
		return
	}
	respond.OK(w, http.StatusOK, "User Found", map[string]any{"role": claims.Role})
}

// Signout handles POST /api/v1/signout for any role.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	if tok, ok := h.Cookies.Read(r); ok {
		if claims, err := h.Tokens.Verify(tok); err == nil {
			id := claims.Subject()
			h.Audit.Logout(r.Context(), r, claims.Role, &id)
		}
	}
	h.Cookies.Clear(w)
	respond.OK(w, http.StatusOK, "Logged out successfully", nil)
}
