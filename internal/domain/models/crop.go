// internal/domain/models/crop.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Crop is a listing owned by exactly one farmer. CoordinatorID records the
// coordinator who added it on the farmer's behalf, if any.
type Crop struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Title         string              `bson:"title" json:"title"`
	Description   string              `bson:"description" json:"description"`
	ImageURL      string              `bson:"image_url" json:"imageURL"`
	Tag           string              `bson:"tag" json:"tag"`
	Price         float64             `bson:"price" json:"price"`
	FarmerID      primitive.ObjectID  `bson:"farmer_id" json:"farmerId"`
	CoordinatorID *primitive.ObjectID `bson:"coordinator_id,omitempty" json:"coordinatorId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
