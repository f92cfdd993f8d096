// internal/app/features/authgoogle/routes.go
package authgoogle

import "github.com/go-chi/chi/v5"

// Routes returns the router for the OAuth endpoints, mounted at /auth.
// These routes are public (no authentication required).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// GET /auth/google - start the flow
	r.Get("/google", h.ServeLogin)

	// GET /auth/google/callback - provider redirect target
	r.Get("/google/callback", h.ServeCallback)

	// GET /auth/logout
	r.Get("/logout", h.ServeLogout)

	return r
}
