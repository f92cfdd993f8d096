// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection's set is idempotent.
Problems are aggregated so every failure is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, set := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(set.collection), set.models); err != nil {
			problems = append(problems, set.collection+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type indexSet struct {
	collection string
	models     []mongo.IndexModel
}

func desired() []indexSet {
	return []indexSet{
		{"admins", identityIndexes("admins", false)},
		{"coordinators", append(identityIndexes("coordinators", true),
			mongo.IndexModel{
				Keys:    bson.D{{Key: "admin_id", Value: 1}},
				Options: options.Index().SetName("idx_coordinators_admin"),
			},
		)},
		{"farmers", append(identityIndexes("farmers", true),
			mongo.IndexModel{
				Keys:    bson.D{{Key: "coordinator_id", Value: 1}},
				Options: options.Index().SetName("idx_farmers_coordinator"),
			},
		)},
		{"users", identityIndexes("users", false)},
		{"crops", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "farmer_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_crops_farmer"),
			},
			{
				Keys:    bson.D{{Key: "coordinator_id", Value: 1}},
				Options: options.Index().SetName("idx_crops_coordinator"),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_crops_created"),
			},
		}},
		{"payments", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "order_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_payments_order"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "payment_date", Value: -1}},
				Options: options.Index().SetName("idx_payments_user"),
			},
			{
				Keys:    bson.D{{Key: "payment_date", Value: -1}},
				Options: options.Index().SetName("idx_payments_date"),
			},
		}},
		{"oauth_states", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "state", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_oauth_state"),
			},
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_oauth_ttl"),
			},
		}},
		{"audit_events", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_time"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_user"),
			},
			{
				Keys: bson.D{
					{Key: "category", Value: 1},
					{Key: "event_type", Value: 1},
					{Key: "timestamp", Value: -1},
				},
				Options: options.Index().SetName("idx_audit_type"),
			},
		}},
	}
}

// identityIndexes is shared by the four role collections: email is unique,
// phone (where the role has one) is unique among documents that carry it,
// and a Google id links at most one identity.
func identityIndexes(coll string, phone bool) []mongo.IndexModel {
	out := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_" + coll + "_email"),
		},
		{
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_" + coll + "_google").
				SetPartialFilterExpression(bson.M{"google_id": bson.M{"$exists": true}}),
		},
	}
	if phone {
		out = append(out, mongo.IndexModel{
			Keys: bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_" + coll + "_phone").
				SetPartialFilterExpression(bson.M{"phone": bson.M{"$exists": true}}),
		})
	}
	return out
}

/* -------------------------------------------------------------------------- */
/* Reconcile the desired indexes of one collection                            */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(b *bool) bool { return b != nil && *b }

func sameOptions(want *options.IndexOptions, have existingIndex) bool {
	var wantUnique *bool
	var wantTTL *int32
	if want != nil {
		wantUnique = want.Unique
		wantTTL = want.ExpireAfterSeconds
	}
	if boolOf(wantUnique) != boolOf(have.Unique) {
		return false
	}
	if (wantTTL == nil) != (have.ExpireAfterSeconds == nil) {
		return false
	}
	return wantTTL == nil || *wantTTL == *have.ExpireAfterSeconds
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	// A collection that does not exist yet simply has no indexes.
	existing, err := listExisting(ctx, coll)
	if err != nil {
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if sameOptions(m.Options, ex) && (name == "" || ex.Name == name) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			// Options or name differ: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
