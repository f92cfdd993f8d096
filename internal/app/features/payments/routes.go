// internal/app/features/payments/routes.go
package payments

import (
	"github.com/go-chi/chi/v5"
)

// Register adds the checkout routes to r, which is scoped to /api/v1/payment.
func Register(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.Require)
		r.Post("/createOrder", h.CreateOrder)
		r.Post("/verifyPayment", h.VerifyPayment)
	})
}
