// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/agreeverse/internal/app/store/audit"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Store *audit.Store
	Guard *auth.Guard[models.Admin]
	Log   *zap.Logger
}

// NewHandler constructs the audit-event listing handler. Only admins can
// read the trail.
func NewHandler(store *audit.Store, guard *auth.Guard[models.Admin], logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Guard: guard,
		Log:   logger,
	}
}
