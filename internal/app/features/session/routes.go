// internal/app/features/session/routes.go
package session

import "github.com/go-chi/chi/v5"

// Register adds the session routes to r (mounted at /api/v1).
func Register(r chi.Router, h *Handler) {
	r.Get("/verify", h.Verify)
	r.Post("/signout", h.Signout)
}
