// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/go-chi/chi/v5"
)

// Register mounts GET /audit-events on r, which is scoped to /api/v1/admin.
func Register(r chi.Router, h *Handler) {
	r.With(h.Guard.Require).Get("/audit-events", h.ServeList)
}
