package cropstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/agreeverse/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("crops")}
}

// Scope restricts a write to crops owned by a farmer or facilitated by a
// coordinator. The zero Scope matches any crop (admin).
type Scope struct {
	FarmerID      *primitive.ObjectID
	CoordinatorID *primitive.ObjectID
}

func (sc Scope) filter(id primitive.ObjectID) bson.M {
	f := bson.M{"_id": id}
	if sc.FarmerID != nil {
		f["farmer_id"] = *sc.FarmerID
	}
	if sc.CoordinatorID != nil {
		f["coordinator_id"] = *sc.CoordinatorID
	}
	return f
}

// Update holds the editable crop fields. Nil fields are left unchanged.
type Update struct {
	Title       *string
	Description *string
	ImageURL    *string
	Tag         *string
	Price       *float64
}

func (u Update) set() bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.ImageURL != nil {
		set["image_url"] = *u.ImageURL
	}
	if u.Tag != nil {
		set["tag"] = *u.Tag
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	return set
}

// Create inserts a crop, assigning its ID and timestamps.
func (s *Store) Create(ctx context.Context, c models.Crop) (models.Crop, error) {
	c.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Crop{}, err
	}
	return c, nil
}

// GetByID loads a crop. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Crop, error) {
	var c models.Crop
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Crop, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Crop{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every crop, newest first.
func (s *Store) List(ctx context.Context) ([]models.Crop, error) {
	return s.find(ctx, bson.M{})
}

// ListByFarmer returns the crops owned by farmerID.
func (s *Store) ListByFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]models.Crop, error) {
	return s.find(ctx, bson.M{"farmer_id": farmerID})
}

// ListForCoordinator returns crops the coordinator facilitated or that belong
// to one of farmerIDs.
func (s *Store) ListForCoordinator(ctx context.Context, coordinatorID primitive.ObjectID, farmerIDs []primitive.ObjectID) ([]models.Crop, error) {
	or := bson.A{bson.M{"coordinator_id": coordinatorID}}
	if len(farmerIDs) > 0 {
		or = append(or, bson.M{"farmer_id": bson.M{"$in": farmerIDs}})
	}
	return s.find(ctx, bson.M{"$or": or})
}

// UpdateScoped applies upd to crop id within sc and returns the new state.
// Returns mongo.ErrNoDocuments when no crop matches.
func (s *Store) UpdateScoped(ctx context.Context, id primitive.ObjectID, sc Scope, upd Update) (*models.Crop, error) {
	var c models.Crop
	err := s.c.FindOneAndUpdate(ctx, sc.filter(id), bson.M{"$set": upd.set()},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteScoped removes crop id within sc and returns it.
// Returns mongo.ErrNoDocuments when no crop matches.
func (s *Store) DeleteScoped(ctx context.Context, id primitive.ObjectID, sc Scope) (*models.Crop, error) {
	var c models.Crop
	if err := s.c.FindOneAndDelete(ctx, sc.filter(id)).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteByFarmer removes every crop owned by farmerID.
func (s *Store) DeleteByFarmer(ctx context.Context, farmerID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"farmer_id": farmerID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
