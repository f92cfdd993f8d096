package metricsstore

import (
	"context"

	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of marketplace totals shown on the admin dashboard.
// Revenue is the sum of paid amounts in minor units.
type Counts struct {
	Admins       int64 `json:"admins"`
	Coordinators int64 `json:"coordinators"`
	Farmers      int64 `json:"farmers"`
	Users        int64 `json:"users"`
	Crops        int64 `json:"crops"`
	Payments     int64 `json:"payments"`
	PaidPayments int64 `json:"paidPayments"`
	Revenue      int64 `json:"revenue"`
}

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// FetchDashboardCounts returns the high-level counts.
// Intentionally tolerant: on error it returns 0 for that counter.
func (s *Store) FetchDashboardCounts(ctx context.Context) Counts {
	var out Counts

	count := func(coll string, filter bson.M, dst *int64) {
		if n, err := s.db.Collection(coll).CountDocuments(ctx, filter); err == nil {
			*dst = n
		}
	}
	count(models.RoleAdmin.Collection(), bson.M{}, &out.Admins)
	count(models.RoleCoordinator.Collection(), bson.M{}, &out.Coordinators)
	count(models.RoleFarmer.Collection(), bson.M{}, &out.Farmers)
	count(models.RoleUser.Collection(), bson.M{}, &out.Users)
	count("crops", bson.M{}, &out.Crops)
	count("payments", bson.M{}, &out.Payments)
	count("payments", bson.M{"status": models.PaymentPaid}, &out.PaidPayments)

	cur, err := s.db.Collection("payments").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.PaymentPaid}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	})
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err == nil && len(rows) == 1 {
		out.Revenue = rows[0].Total
	}

	return out
}
