// internal/app/store/identities/roles.go
package identitystore

import (
	"context"

	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Admins reads and writes the admins collection.
type Admins = Store[models.Admin, *models.Admin]

// Users reads and writes the users collection.
type Users = Store[models.User, *models.User]

func NewAdmins(db *mongo.Database) *Admins { return newStore[models.Admin](db, models.RoleAdmin) }
func NewUsers(db *mongo.Database) *Users   { return newStore[models.User](db, models.RoleUser) }

// Coordinators reads and writes the coordinators collection and maintains
// each coordinator's farmers list.
type Coordinators struct {
	*Store[models.Coordinator, *models.Coordinator]
}

func NewCoordinators(db *mongo.Database) *Coordinators {
	return &Coordinators{newStore[models.Coordinator](db, models.RoleCoordinator)}
}

// AddFarmer appends farmerID to the coordinator's farmers list (idempotent).
// Returns mongo.ErrNoDocuments when the coordinator does not exist.
func (s *Coordinators) AddFarmer(ctx context.Context, coordinatorID, farmerID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": coordinatorID},
		bson.M{"$addToSet": bson.M{"farmers": farmerID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveFarmer pulls farmerID from whichever coordinator lists it.
func (s *Coordinators) RemoveFarmer(ctx context.Context, farmerID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"farmers": farmerID},
		bson.M{"$pull": bson.M{"farmers": farmerID}})
	return err
}

// ListByAdmin returns the coordinators linked to adminID.
func (s *Coordinators) ListByAdmin(ctx context.Context, adminID primitive.ObjectID) ([]models.Coordinator, error) {
	return s.find(ctx, bson.M{"admin_id": adminID})
}

// Farmers reads and writes the farmers collection.
type Farmers struct {
	*Store[models.Farmer, *models.Farmer]
}

func NewFarmers(db *mongo.Database) *Farmers {
	return &Farmers{newStore[models.Farmer](db, models.RoleFarmer)}
}

// ListByCoordinator returns the farmers whose coordinator_id is coordinatorID.
func (s *Farmers) ListByCoordinator(ctx context.Context, coordinatorID primitive.ObjectID) ([]models.Farmer, error) {
	return s.find(ctx, bson.M{"coordinator_id": coordinatorID})
}

// GetForCoordinator loads a farmer only if it belongs to coordinatorID.
func (s *Farmers) GetForCoordinator(ctx context.Context, farmerID, coordinatorID primitive.ObjectID) (*models.Farmer, error) {
	return s.findOne(ctx, bson.M{"_id": farmerID, "coordinator_id": coordinatorID})
}

// UpdateForCoordinator applies set to a farmer only if it belongs to
// coordinatorID. Returns mongo.ErrNoDocuments otherwise.
func (s *Farmers) UpdateForCoordinator(ctx context.Context, farmerID, coordinatorID primitive.ObjectID, set bson.M) (*models.Farmer, error) {
	return s.updateWhere(ctx, bson.M{"_id": farmerID, "coordinator_id": coordinatorID}, set)
}

// SetCoordinator links the farmer to coordinatorID, or unlinks it when nil.
func (s *Farmers) SetCoordinator(ctx context.Context, farmerID primitive.ObjectID, coordinatorID *primitive.ObjectID) error {
	update := bson.M{"$unset": bson.M{"coordinator_id": ""}}
	if coordinatorID != nil {
		update = bson.M{"$set": bson.M{"coordinator_id": *coordinatorID}}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": farmerID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DetachCoordinator unsets coordinator_id on every farmer that references
// coordinatorID and returns how many were changed.
func (s *Farmers) DetachCoordinator(ctx context.Context, coordinatorID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"coordinator_id": coordinatorID},
		bson.M{"$unset": bson.M{"coordinator_id": ""}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
