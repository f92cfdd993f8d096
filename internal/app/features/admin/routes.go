// internal/app/features/admin/routes.go
package admin

import (
	"github.com/go-chi/chi/v5"
)

// Register adds the oversight routes to r, which is scoped to /api/v1/admin.
// Every route requires a signed-in admin.
func Register(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.Require)

		r.Get("/get-farmers", h.GetFarmers)
		r.Get("/get-coordinators", h.GetCoordinators)
		r.Get("/get-crops", h.GetCrops)
		r.Get("/payment-status", h.PaymentStatus)
		r.Get("/stats", h.ServeStats)

		r.Post("/add-coordinator", h.AddCoordinator)
		r.Put("/update-coordinator/{coordinatorId}", h.UpdateCoordinator)
		r.Delete("/delete-coordinator/{coordinatorId}", h.DeleteCoordinator)

		r.Post("/add-farmer", h.AddFarmer)
		r.Put("/update-farmer/{farmerId}", h.UpdateFarmer)
		r.Delete("/delete-farmer/{farmerId}", h.DeleteFarmer)

		r.Delete("/delete-crop/{cropId}", h.DeleteCrop)
	})
}
