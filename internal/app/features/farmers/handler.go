// internal/app/features/farmers/handler.go
package farmers

import (
	"net/http"

	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.uber.org/zap"
)

const maxBody = 64 << 10

// Handler serves the crop endpoints of a signed-in farmer.
type Handler struct {
	Crops *cropstore.Store
	Guard *auth.Guard[models.Farmer]
	Log   *zap.Logger
}

func NewHandler(crops *cropstore.Store, guard *auth.Guard[models.Farmer], logger *zap.Logger) *Handler {
	return &Handler{Crops: crops, Guard: guard, Log: logger}
}

// farmer returns the identity the guard attached. Routes are only mounted
// behind the guard, so a miss is a wiring bug.
func (h *Handler) farmer(w http.ResponseWriter, r *http.Request) (*models.Farmer, bool) {
	f, ok := h.Guard.From(r)
	if !ok {
		h.Log.Error("farmer route reached without guard", zap.String("path", r.URL.Path))
		apierr.Write(w, apierr.New(apierr.Internal, "missing farmer"))
		return nil, false
	}
	return f, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if apierr.KindOf(err) == apierr.Internal {
		h.Log.Error("farmer: "+op+" failed", zap.Error(err))
	}
	apierr.Write(w, err)
}
