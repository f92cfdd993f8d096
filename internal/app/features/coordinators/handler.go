// internal/app/features/coordinators/handler.go
package coordinators

import (
	"net/http"

	"github.com/dalemusser/agreeverse/internal/app/features/members"
	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/auditlog"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.uber.org/zap"
)

const maxBody = 64 << 10

// Handler serves a coordinator's farmer and crop management.
type Handler struct {
	Members *members.Service
	Crops   *cropstore.Store
	Guard   *auth.Guard[models.Coordinator]
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(svc *members.Service, crops *cropstore.Store, guard *auth.Guard[models.Coordinator], audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Members: svc, Crops: crops, Guard: guard, Audit: audit, Log: logger}
}

func (h *Handler) coordinator(w http.ResponseWriter, r *http.Request) (*models.Coordinator, bool) {
	c, ok := h.Guard.From(r)
	if !ok {
		h.Log.Error("coordinator route reached without guard", zap.String("path", r.URL.Path))
		apierr.Write(w, apierr.New(apierr.Internal, "missing coordinator"))
		return nil, false
	}
	return c, true
}

func actor(c *models.Coordinator) auditlog.Actor {
	return auditlog.Actor{ID: c.ID, Role: models.RoleCoordinator}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if apierr.KindOf(err) == apierr.Internal {
		h.Log.Error("coordinator: "+op+" failed", zap.Error(err))
	}
	apierr.Write(w, err)
}
