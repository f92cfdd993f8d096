package paymentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/agreeverse/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateOrder is returned when an order id is reused.
var ErrDuplicateOrder = errors.New("a payment with this order id already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payments")}
}

// Create records a new payment in the created state.
func (s *Store) Create(ctx context.Context, p models.Payment) (models.Payment, error) {
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if p.Status == "" {
		p.Status = models.PaymentCreated
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = now
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Payment{}, ErrDuplicateOrder
		}
		return models.Payment{}, err
	}
	return p, nil
}

// GetByOrderID loads a payment. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var p models.Payment
	if err := s.c.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Settle moves a still-created payment owned by userID to status and records
// the gateway payment id. Returns mongo.ErrNoDocuments when no pending order
// matches.
func (s *Store) Settle(ctx context.Context, orderID string, userID primitive.ObjectID, status, gatewayPaymentID string) (*models.Payment, error) {
	now := time.Now().UTC()
	var p models.Payment
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"order_id": orderID, "user_id": userID, "status": models.PaymentCreated},
		bson.M{"$set": bson.M{
			"status":             status,
			"gateway_payment_id": gatewayPaymentID,
			"payment_date":       now,
			"updated_at":         now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "payment_date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Payment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns userID's payments, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	return s.find(ctx, bson.M{"user_id": userID}, 0)
}

// List returns up to limit payments, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int64) ([]models.Payment, error) {
	return s.find(ctx, bson.M{}, limit)
}
