// internal/app/features/payments/handler.go
package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math"

	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	paymentstore "github.com/dalemusser/agreeverse/internal/app/store/payments"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.uber.org/zap"
)

const maxBody = 16 << 10

// Config holds the gateway settings.
type Config struct {
	KeySecret string
	Currency  string
}

type Handler struct {
	Crops    *cropstore.Store
	Payments *paymentstore.Store
	Guard    *auth.Guard[models.User]
	Cfg      Config
	Log      *zap.Logger
}

func NewHandler(crops *cropstore.Store, payments *paymentstore.Store, guard *auth.Guard[models.User], cfg Config, logger *zap.Logger) *Handler {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Handler{Crops: crops, Payments: payments, Guard: guard, Cfg: cfg, Log: logger}
}

// Sign returns the hex HMAC-SHA256 of "orderID|paymentID" under secret,
// the signature the gateway attaches to a completed checkout.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify compares signature against the expected one in constant time.
func verify(secret, orderID, paymentID, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(Sign(secret, orderID, paymentID))
	return hmac.Equal(got, want)
}

// minorUnits converts a crop price to the currency's minor unit, rounding
// half up. Prices that are not positive or do not fit an int64 amount are
// a Validation error.
func minorUnits(price float64) (int64, error) {
	if math.IsNaN(price) || price <= 0 || price >= math.MaxInt64/100 {
		return 0, apierr.New(apierr.Validation, "Crop price cannot be charged")
	}
	return int64(price*100 + 0.5), nil
}
