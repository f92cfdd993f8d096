// internal/app/features/farmers/routes.go
package farmers

import (
	"github.com/go-chi/chi/v5"
)

// Register adds the crop routes to r, which is scoped to /api/v1/farmer.
// Every route requires a signed-in farmer.
func Register(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.Require)
		r.Post("/add-crop", h.AddCrop)
		r.Put("/update-crop/{cropId}", h.UpdateCrop)
		r.Get("/preview-crops", h.PreviewCrops)
		r.Get("/add-crops-farmer/{farmerId}", h.CropsByFarmer)
		r.Delete("/delete-crop/{cropId}", h.DeleteCrop)
	})
}
