// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/agreeverse/internal/app/features/members"
	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	metricsstore "github.com/dalemusser/agreeverse/internal/app/store/metrics"
	paymentstore "github.com/dalemusser/agreeverse/internal/app/store/payments"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/auditlog"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.uber.org/zap"
)

const maxBody = 64 << 10

// Handler serves the admin oversight endpoints.
type Handler struct {
	Members  *members.Service
	Crops    *cropstore.Store
	Payments *paymentstore.Store
	Stats    *metricsstore.Store
	Guard    *auth.Guard[models.Admin]
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(
	svc *members.Service,
	crops *cropstore.Store,
	payments *paymentstore.Store,
	stats *metricsstore.Store,
	guard *auth.Guard[models.Admin],
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Members:  svc,
		Crops:    crops,
		Payments: payments,
		Stats:    stats,
		Guard:    guard,
		Audit:    audit,
		Log:      logger,
	}
}

// actor returns the signed-in admin for audit records.
func (h *Handler) actor(r *http.Request) auditlog.Actor {
	a, _ := h.Guard.From(r)
	if a == nil {
		return auditlog.Actor{Role: models.RoleAdmin}
	}
	return auditlog.Actor{ID: a.ID, Role: models.RoleAdmin}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if apierr.KindOf(err) == apierr.Internal {
		h.Log.Error("admin: "+op+" failed", zap.Error(err))
	}
	apierr.Write(w, err)
}

// list writes {success, message, <key>: items} with a message that says
// whether anything was found.
func list[T any](h *Handler, w http.ResponseWriter, r *http.Request, key, found, empty string, load func(context.Context) ([]T, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := load(ctx)
	if err != nil {
		h.fail(w, "list "+key, apierr.Wrap(err, "list "+key))
		return
	}
	msg := found
	if len(items) == 0 {
		msg = empty
	}
	respond.OK(w, http.StatusOK, msg, map[string]any{key: items})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /get-farmers, /get-coordinators, /get-crops, /payment-status             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) GetFarmers(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, "farmers", "Farmers retrieved successfully", "No farmers found", h.Members.Stores.Farmers.List)
}

func (h *Handler) GetCoordinators(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, "coordinators", "Coordinators retrieved successfully", "No coordinators found", h.Members.Stores.Coordinators.List)
}

func (h *Handler) GetCrops(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, "crops", "Crops retrieved successfully", "No crops found", h.Crops.List)
}

// PaymentStatus lists every payment, newest first.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, "payments", "Payments retrieved successfully", "No payments yet", func(ctx context.Context) ([]models.Payment, error) {
		return h.Payments.List(ctx, 0)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /stats                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeStats reports marketplace totals. Counters that fail to load read 0.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()
	respond.OK(w, http.StatusOK, "Stats retrieved successfully", map[string]any{
		"stats": h.Stats.FetchDashboardCounts(ctx),
	})
}
