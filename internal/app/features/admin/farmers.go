// internal/app/features/admin/farmers.go
package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/agreeverse/internal/app/features/members"
	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/formutil"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /add-farmer                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) AddFarmer(w http.ResponseWriter, r *http.Request) {
	var in formutil.MemberInput
	if err := respond.Decode(w, r, &in, maxBody); err != nil {
		apierr.Write(w, apierr.New(apierr.Validation, "Invalid request body"))
		return
	}
	in.Normalize()
	if err := in.Validate().Err(); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	f, err := h.Members.AddFarmer(ctx, in, in.CoordinatorObjectID())
	if err != nil {
		h.fail(w, "add farmer", err)
		return
	}
	h.Audit.FarmerCreated(ctx, r, h.actor(r), f.ID)
	respond.OK(w, http.StatusCreated, "Farmer added successfully", map[string]any{"farmer": f})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /update-farmer/{farmerId}                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// UpdateFarmer edits any farmer. A coordinatorId in the body moves the
// farmer to that coordinator's list.
func (h *Handler) UpdateFarmer(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.PathID(r, "farmerId", "farmer")
	if err != nil {
		apierr.Write(w, err)
		return
	}

	var p formutil.MemberPatch
	if err := respond.Decode(w, r, &p, maxBody); err != nil {
		apierr.Write(w, apierr.New(apierr.Validation, "Invalid request body"))
		return
	}
	p.Normalize()
	if err := p.Validate().Err(); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	f, err := h.Members.UpdateFarmer(ctx, id, members.Scope{}, p)
	if err != nil {
		h.fail(w, "update farmer", err)
		return
	}
	h.Audit.FarmerUpdated(ctx, r, h.actor(r), f.ID)
	respond.OK(w, http.StatusOK, "Farmer updated successfully", map[string]any{"farmer": f})
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /delete-farmer/{farmerId}                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) DeleteFarmer(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.PathID(r, "farmerId", "farmer")
	if err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Members.DeleteFarmer(ctx, id, members.Scope{}); err != nil {
		h.fail(w, "delete farmer", err)
		return
	}
	h.Audit.FarmerDeleted(ctx, r, h.actor(r), id)
	respond.OK(w, http.StatusOK, "Farmer deleted successfully", nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /delete-crop/{cropId}                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) DeleteCrop(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.PathID(r, "cropId", "crop")
	if err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	crop, err := h.Crops.DeleteScoped(ctx, id, cropstore.Scope{})
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierr.Write(w, apierr.New(apierr.NotFound, "Crop not found or not deleted."))
		return
	}
	if err != nil {
		h.fail(w, "delete crop", apierr.Wrap(err, "delete crop"))
		return
	}
	h.Audit.CropDeleted(ctx, r, h.actor(r), crop.ID, crop.Title)
	respond.OK(w, http.StatusOK, "Crop deleted successfully", nil)
}
