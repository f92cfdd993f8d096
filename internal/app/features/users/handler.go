// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	paymentstore "github.com/dalemusser/agreeverse/internal/app/store/payments"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/app/system/formutil"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the end-user catalogue and purchase history.
type Handler struct {
	Crops    *cropstore.Store
	Payments *paymentstore.Store
	Guard    *auth.Guard[models.User]
	Log      *zap.Logger
}

func NewHandler(crops *cropstore.Store, payments *paymentstore.Store, guard *auth.Guard[models.User], logger *zap.Logger) *Handler {
	return &Handler{Crops: crops, Payments: payments, Guard: guard, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /previewcrop                                                             |
| Public crop catalogue.                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) PreviewCrops(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	crops, err := h.Crops.List(ctx)
	if err != nil {
		h.Log.Error("list crops failed", zap.Error(err))
		apierr.Write(w, apierr.Wrap(err, "list crops"))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "crops": crops})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /user-purchases/{userId}                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// Purchases lists the signed-in user's payments. Asking for another user's
// purchases is Forbidden.
func (h *Handler) Purchases(w http.ResponseWriter, r *http.Request) {
	u, ok := h.Guard.From(r)
	if !ok {
		apierr.Write(w, apierr.New(apierr.Unauthenticated, "Unauthorized: No token provided"))
		return
	}
	userID, err := formutil.PathID(r, "userId", "user")
	if err != nil {
		apierr.Write(w, err)
		return
	}
	if userID != u.ID {
		h.Log.Warn("purchases: cross-user request",
			zap.String("user", u.ID.Hex()),
			zap.String("requested", userID.Hex()))
		apierr.Write(w, apierr.New(apierr.Forbidden, "You can only view your own purchases"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	purchases, err := h.Payments.ListByUser(ctx, u.ID)
	if err != nil {
		h.Log.Error("list purchases failed", zap.Error(err))
		apierr.Write(w, apierr.Wrap(err, "list purchases"))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "purchases": purchases})
}
