// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
)

// Register adds the catalogue routes to r, which is scoped to /api/v1/user.
func Register(r chi.Router, h *Handler) {
	r.Get("/previewcrop", h.PreviewCrops)
	r.With(h.Guard.Require).Get("/user-purchases/{userId}", h.Purchases)
}
