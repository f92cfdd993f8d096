// internal/app/features/payments/orders.go
package payments

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/inputval"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type orderInput struct {
	CropID string `json:"cropId" validate:"required,objectid" label:"Crop id"`
}

type verifyInput struct {
	OrderID   string `json:"orderId" validate:"required" label:"Order id"`
	PaymentID string `json:"paymentId" validate:"required" label:"Payment id"`
	Signature string `json:"signature" validate:"required" label:"Signature"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /createOrder                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := h.Guard.From(r)
	if !ok {
		apierr.Write(w, apierr.New(apierr.Unauthenticated, "Unauthorized: No token provided"))
		return
	}

	var in orderInput
	if err := respond.Decode(w, r, &in, maxBody); err != nil {
		apierr.Write(w, apierr.New(apierr.Validation, "Invalid input data"))
		return
	}
	in.CropID = strings.TrimSpace(in.CropID)
	if err := inputval.Validate(&in).Err(); err != nil {
		apierr.Write(w, err)
		return
	}
	cropID, _ := primitive.ObjectIDFromHex(in.CropID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	crop, err := h.Crops.GetByID(ctx, cropID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierr.Write(w, apierr.New(apierr.NotFound, "Crop not found"))
		return
	}
	if err != nil {
		h.Log.Error("load crop failed", zap.Error(err))
		apierr.Write(w, apierr.Wrap(err, "load crop"))
		return
	}

	amount, err := minorUnits(crop.Price)
	if err != nil {
		h.Log.Warn("crop price out of range", zap.String("crop_id", crop.ID.Hex()), zap.Float64("price", crop.Price))
		apierr.Write(w, err)
		return
	}

	p, err := h.Payments.Create(ctx, models.Payment{
		OrderID:   "order_" + uuid.NewString(),
		Receipt:   "receipt_" + uuid.NewString()[:8],
		UserID:    u.ID,
		UserName:  u.Name,
		CropID:    crop.ID,
		CropTitle: crop.Title,
		Amount:    amount,
		Currency:  h.Cfg.Currency,
	})
	if err != nil {
		h.Log.Error("create order failed", zap.Error(err))
		apierr.Write(w, apierr.Wrap(err, "create order"))
		return
	}

	h.Log.Info("order created",
		zap.String("order_id", p.OrderID),
		zap.String("user_id", u.ID.Hex()),
		zap.Int64("amount", p.Amount))
	respond.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"order": map[string]any{
			"id":       p.OrderID,
			"amount":   p.Amount,
			"currency": p.Currency,
			"receipt":  p.Receipt,
		},
		"payment": p,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /verifyPayment                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// VerifyPayment checks the gateway signature and settles the order. A
// signature mismatch marks the order failed.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	u, ok := h.Guard.From(r)
	if !ok {
		apierr.Write(w, apierr.New(apierr.Unauthenticated, "Unauthorized: No token provided"))
		return
	}
	if h.Cfg.KeySecret == "" {
		h.Log.Error("verify payment: payment_key_secret not configured")
		apierr.Write(w, apierr.New(apierr.Internal, "Payments are not configured"))
		return
	}

	var in verifyInput
	if err := respond.Decode(w, r, &in, maxBody); err != nil {
		apierr.Write(w, apierr.New(apierr.Validation, "Invalid input data"))
		return
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Payments.GetByOrderID(ctx, in.OrderID)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && existing.UserID != u.ID) {
		apierr.Write(w, apierr.New(apierr.NotFound, "Order not found"))
		return
	}
	if err != nil {
		h.Log.Error("load order failed", zap.Error(err))
		apierr.Write(w, apierr.Wrap(err, "load order"))
		return
	}
	if existing.Status != models.PaymentCreated {
		apierr.Write(w, apierr.New(apierr.Conflict, "Payment already processed"))
		return
	}

	status := models.PaymentPaid
	if !verify(h.Cfg.KeySecret, in.OrderID, in.PaymentID, in.Signature) {
		status = models.PaymentFailed
	}

	p, err := h.Payments.Settle(ctx, in.OrderID, u.ID, status, in.PaymentID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// settled concurrently
		apierr.Write(w, apierr.New(apierr.Conflict, "Payment already processed"))
		return
	}
	if err != nil {
		h.Log.Error("settle order failed", zap.Error(err))
		apierr.Write(w, apierr.Wrap(err, "settle order"))
		return
	}

	if status == models.PaymentFailed {
		h.Log.Warn("payment signature mismatch",
			zap.String("order_id", in.OrderID),
			zap.String("user_id", u.ID.Hex()))
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Payment verification failed",
			"payment": p,
		})
		return
	}

	h.Log.Info("payment verified", zap.String("order_id", in.OrderID), zap.String("user_id", u.ID.Hex()))
	respond.OK(w, http.StatusOK, "Payment verified successfully", map[string]any{"payment": p})
}
