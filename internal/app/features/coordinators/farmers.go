// internal/app/features/coordinators/farmers.go
package coordinators

import (
	"context"
	"net/http"

	"github.com/dalemusser/agreeverse/internal/app/features/members"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/formutil"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /all-farmers                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) AllFarmers(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	farmers, err := h.Members.Stores.Farmers.ListByCoordinator(ctx, c.ID)
	if err != nil {
		h.fail(w, "list farmers", apierr.Wrap(err, "list farmers"))
		return
	}
	msg := "Farmers retrieved successfully"
	if len(farmers) == 0 {
		msg = "No farmers found"
	}
	respond.OK(w, http.StatusOK, msg, map[string]any{"farmers": farmers})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /add-farmer                                                             |
| The new farmer is linked to the signed-in coordinator.                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) AddFarmer(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	var in formutil.MemberInput
	if err := respond.Decode(w, r, &in, maxBody); err != nil {
		apierr.Write(w, apierr.New(apierr.Validation, "Invalid request body"))
		return
	}
	in.Normalize()
	in.CoordinatorID = ""
	if err := in.Validate().Err(); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	f, err := h.Members.AddFarmer(ctx, in, &c.ID)
	if err != nil {
		h.fail(w, "add farmer", err)
		return
	}
	h.Audit.FarmerCreated(ctx, r, actor(c), f.ID)
	h.Log.Info("farmer added by coordinator", zap.String("coordinator", c.ID.Hex()), zap.String("farmer", f.ID.Hex()))
	respond.OK(w, http.StatusCreated, "Farmer added successfully", map[string]any{"farmer": f})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /update-farmer/{farmerId}                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// UpdateFarmer edits the profile of one of the coordinator's farmers. The
// password and the coordinator link cannot be changed here.
func (h *Handler) UpdateFarmer(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	farmerID, err := formutil.PathID(r, "farmerId", "farmer")
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
	res := p.Validate()
	if p.Password != nil {
		res.Add("password", "Password cannot be changed by a coordinator.")
	}
	if p.CoordinatorID != nil {
		res.Add("coordinatorId", "Coordinator cannot be changed by a coordinator.")
	}
	if err := res.Err(); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	f, err := h.Members.UpdateFarmer(ctx, farmerID, members.Scope{Coordinator: &c.ID}, p)
	if err != nil {
		h.fail(w, "update farmer", err)
		return
	}
	h.Audit.FarmerUpdated(ctx, r, actor(c), f.ID)
	respond.OK(w, http.StatusOK, "Farmer updated successfully", map[string]any{"farmer": f})
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /delete-farmer/{farmerId}                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) DeleteFarmer(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	farmerID, err := formutil.PathID(r, "farmerId", "farmer")
	if err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Members.DeleteFarmer(ctx, farmerID, members.Scope{Coordinator: &c.ID}); err != nil {
		h.fail(w, "delete farmer", err)
		return
	}
	h.Audit.FarmerDeleted(ctx, r, actor(c), farmerID)
	respond.OK(w, http.StatusOK, "Farmer deleted successfully", nil)
}
