// internal/app/features/coordinators/crops.go
package coordinators

import (
	"context"
	"errors"
	"net/http"

	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/formutil"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /all-crops                                                               |
| Crops this coordinator added plus those of its farmers.                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) AllCrops(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	crops, err := h.Crops.ListForCoordinator(ctx, c.ID, c.Farmers)
	if err != nil {
		h.fail(w, "list crops", apierr.Wrap(err, "list crops"))
		return
	}
	msg := "Crops retrieved successfully"
	if len(crops) == 0 {
		msg = "No crops found"
	}
	respond.OK(w, http.StatusOK, msg, map[string]any{"crops": crops})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /add-crop                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// AddCrop lists a crop for one of the coordinator's farmers and records the
// coordinator on it.
func (h *Handler) AddCrop(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	var in formutil.CropInput
	if err := respond.Decode(w, r, &in, maxBody); err != nil {
		apierr.Write(w, apierr.New(apierr.Validation, "Invalid input data"))
		return
	}
	in.Normalize()
	res := in.Validate()
	farmerID, perr := primitive.ObjectIDFromHex(in.FarmerID)
	if perr != nil {
		res.Add("farmerId", "Farmer id must be a valid id.")
	}
	if err := res.Err(); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Members.Stores.Farmers.GetForCoordinator(ctx, farmerID, c.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.Write(w, apierr.New(apierr.NotFound, "Farmer not found or not authorized"))
			return
		}
		h.fail(w, "add crop", apierr.Wrap(err, "load farmer"))
		return
	}

	crop, err := h.Crops.Create(ctx, in.Crop(farmerID, &c.ID))
	if err != nil {
		h.fail(w, "add crop", apierr.Wrap(err, "create crop"))
		return
	}
	respond.OK(w, http.StatusCreated, "Crop added successfully", map[string]any{"crop": crop})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /update-crop/{cropId}                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) UpdateCrop(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	cropID, err := formutil.PathID(r, "cropId", "crop")
	if err != nil {
		apierr.Write(w, err)
		return
	}

	var p formutil.CropPatch
	if err := respond.Decode(w, r, &p, maxBody); err != nil {
		apierr.Write(w, apierr.New(apierr.Validation, "Invalid input data"))
		return
	}
	p.Normalize()
	if err := p.Validate().Err(); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	crop, err := h.Crops.UpdateScoped(ctx, cropID, cropstore.Scope{CoordinatorID: &c.ID}, p.Update())
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierr.Write(w, apierr.New(apierr.NotFound, "Crop not found or not updated."))
		return
	}
	if err != nil {
		h.fail(w, "update crop", apierr.Wrap(err, "update crop"))
		return
	}
	respond.OK(w, http.StatusOK, "Crop updated successfully", map[string]any{"crop": crop})
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /delete-crop/{cropId}                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) DeleteCrop(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	cropID, err := formutil.PathID(r, "cropId", "crop")
	if err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Crops.DeleteScoped(ctx, cropID, cropstore.Scope{CoordinatorID: &c.ID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.Write(w, apierr.New(apierr.NotFound, "Crop not found or not deleted."))
			return
		}
		h.fail(w, "delete crop", apierr.Wrap(err, "delete crop"))
		return
	}
	respond.OK(w, http.StatusOK, "Crop deleted successfully", nil)
}
