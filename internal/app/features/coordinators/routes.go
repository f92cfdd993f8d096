// internal/app/features/coordinators/routes.go
package coordinators

import (
	"github.com/go-chi/chi/v5"
)

// Register adds the management routes to r, which is scoped to
// /api/v1/coordinator. Every route requires a signed-in coordinator.
func Register(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.Require)

		r.Get("/all-farmers", h.AllFarmers)
		r.Post("/add-farmer", h.AddFarmer)
		r.Put("/update-farmer/{farmerId}", h.UpdateFarmer)
		r.Delete("/delete-farmer/{farmerId}", h.DeleteFarmer)

		r.Get("/all-crops", h.AllCrops)
		r.Post("/add-crop", h.AddCrop)
		r.Put("/update-crop/{cropId}", h.UpdateCrop)
		r.Delete("/delete-crop/{cropId}", h.DeleteCrop)
	})
}
