// internal/app/features/admin/coordinators.go
package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/formutil"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /add-coordinator                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) AddCoordinator(w http.ResponseWriter, r *http.Request) {
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

	actor := h.actor(r)
	c, err := h.Members.AddCoordinator(ctx, in, &actor.ID)
	if err != nil {
		h.fail(w, "add coordinator", err)
		return
	}
	h.Audit.CoordinatorCreated(ctx, r, actor, c.ID)
	respond.OK(w, http.StatusCreated, "Coordinator added successfully", map[string]any{"coordinator": c})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /update-coordinator/{coordinatorId}                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// UpdateCoordinator edits a coordinator. A password in the body is
// re-hashed; without one the stored hash is kept.
func (h *Handler) UpdateCoordinator(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.PathID(r, "coordinatorId", "coordinator")
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
	p.CoordinatorID = nil
	if err := p.Validate().Err(); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Members.UpdateCoordinator(ctx, id, p)
	if err != nil {
		h.fail(w, "update coordinator", err)
		return
	}
	h.Audit.CoordinatorUpdated(ctx, r, h.actor(r), c.ID, p.Password != nil)
	respond.OK(w, http.StatusOK, "Coordinator updated successfully", map[string]any{"coordinator": c})
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /delete-coordinator/{coordinatorId}                                   |
| Farmers keep their accounts and lose the coordinator link.                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) DeleteCoordinator(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.PathID(r, "coordinatorId", "coordinator")
	if err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	detached, err := h.Members.DeleteCoordinator(ctx, id)
	if err != nil {
		h.fail(w, "delete coordinator", err)
		return
	}
	h.Audit.CoordinatorDeleted(ctx, r, h.actor(r), id, detached)
	h.Log.Info("coordinator deleted", zap.String("coordinator", id.Hex()), zap.Int64("farmers_detached", detached))
	respond.OK(w, http.StatusOK, "Coordinator deleted successfully", map[string]any{"farmersDetached": detached})
}
