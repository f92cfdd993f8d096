// internal/app/features/farmers/crops.go
package farmers

import (
	"context"
	"errors"
	"net/http"

	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/formutil"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /add-crop                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) AddCrop(w http.ResponseWriter, r *http.Request) {
	f, ok := h.farmer(w, r)
	if !ok {
		return
	}

	var in formutil.CropInput
	if err := respond.Decode(w, r, &in, maxBody); err != nil {
		apierr.Write(w, apierr.New(apierr.Validation, "Invalid input data"))
		return
	}
	in.Normalize()
	if err := in.Validate().Err(); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	crop, err := h.Crops.Create(ctx, in.Crop(f.ID, nil))
	if err != nil {
		h.fail(w, "add crop", apierr.Wrap(err, "create crop"))
		return
	}
	h.Log.Info("crop added", zap.String("farmer", f.ID.Hex()), zap.String("crop", crop.ID.Hex()))
	respond.OK(w, http.StatusCreated, "Crop added successfully", map[string]any{"crop": crop})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /update-crop/{cropId}                                                    |
| Only the farmer's own crops match.                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) UpdateCrop(w http.ResponseWriter, r *http.Request) {
	f, ok := h.farmer(w, r)
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

	crop, err := h.Crops.UpdateScoped(ctx, cropID, cropstore.Scope{FarmerID: &f.ID}, p.Update())
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
| GET /preview-crops                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// PreviewCrops lists the signed-in farmer's crops.
func (h *Handler) PreviewCrops(w http.ResponseWriter, r *http.Request) {
	f, ok := h.farmer(w, r)
	if !ok {
		return
	}
	h.listCrops(w, r, f.ID.Hex(), func(ctx context.Context) (any, int, error) {
		crops, err := h.Crops.ListByFarmer(ctx, f.ID)
		return crops, len(crops), err
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /add-crops-farmer/{farmerId}                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// CropsByFarmer lists the crops of any farmer.
func (h *Handler) CropsByFarmer(w http.ResponseWriter, r *http.Request) {
	farmerID, err := formutil.PathID(r, "farmerId", "farmer")
	if err != nil {
		apierr.Write(w, err)
		return
	}
	h.listCrops(w, r, farmerID.Hex(), func(ctx context.Context) (any, int, error) {
		crops, err := h.Crops.ListByFarmer(ctx, farmerID)
		return crops, len(crops), err
	})
}

func (h *Handler) listCrops(w http.ResponseWriter, r *http.Request, farmer string, load func(context.Context) (any, int, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	crops, n, err := load(ctx)
	if err != nil {
		h.fail(w, "list crops", apierr.Wrap(err, "list crops"))
		return
	}
	if n == 0 {
		apierr.Write(w, apierr.New(apierr.NotFound, "No crops found."))
		return
	}
	h.Log.Debug("crops listed", zap.String("farmer", farmer), zap.Int("count", n))
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "crops": crops})
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /delete-crop/{cropId}                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) DeleteCrop(w http.ResponseWriter, r *http.Request) {
	f, ok := h.farmer(w, r)
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

	if _, err := h.Crops.DeleteScoped(ctx, cropID, cropstore.Scope{FarmerID: &f.ID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.Write(w, apierr.New(apierr.NotFound, "Crop not found or not deleted."))
			return
		}
		h.fail(w, "delete crop", apierr.Wrap(err, "delete crop"))
		return
	}
	respond.OK(w, http.StatusOK, "Crop deleted successfully", nil)
}
