// internal/app/features/accounts/routes.go
package accounts

import (
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Register adds the account routes to r, which is already scoped to the
// role's prefix (e.g. /api/v1/farmer).
func Register[T any, P interface {
	*T
	models.Account
}](r chi.Router, h *Handler[T, P]) {
	r.Post("/signup", h.Signup)
	r.Post("/signin", h.Signin)
	r.Post("/signout", h.Signout)
	r.With(h.role.Guard.Require).Get("/dashboard", h.Dashboard)
}

func Routes[T any, P interface {
	*T
	models.Account
}](h *Handler[T, P]) chi.Router {
	r := chi.NewRouter()
	Register(r, h)
	return r
}
