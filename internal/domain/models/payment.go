// internal/domain/models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses.
const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Payment records one purchase attempt of a crop by a user. Amount is in
// the currency's minor unit.
type Payment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderID          string             `bson:"order_id" json:"orderId"`
	Receipt          string             `bson:"receipt" json:"receipt"`
	UserID           primitive.ObjectID `bson:"user_id" json:"userId"`
	UserName         string             `bson:"user_name,omitempty" json:"userName,omitempty"`
	CropID           primitive.ObjectID `bson:"crop_id" json:"cropId"`
	CropTitle        string             `bson:"crop_title,omitempty" json:"cropTitle,omitempty"`
	Amount           int64              `bson:"amount" json:"amount"`
	Currency         string             `bson:"currency" json:"currency"`
	Status           string             `bson:"status" json:"status"`
	GatewayPaymentID string             `bson:"gateway_payment_id,omitempty" json:"paymentId,omitempty"`
	PaymentDate      time.Time          `bson:"payment_date" json:"paymentDate"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
