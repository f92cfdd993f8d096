// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and attaches JSON-Schema
// validators. On servers that don't support collMod/validators we log and
// skip.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	for _, role := range models.Roles {
		ensure(role.Collection(), identitySchema(role))
	}
	ensure("crops", cropsSchema())
	ensure("payments", paymentsSchema())

	// No validators; the collections are still created up front.
	ensure("oauth_states", nil)
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func identitySchema(role models.Role) bson.M {
	props := bson.M{
		"name":        nonBlank,
		"email":       nonBlank,
		"password":    bson.M{"bsonType": "string"},
		"role":        bson.M{"enum": bson.A{string(role)}},
		"google_id":   bson.M{"bsonType": "string"},
		"picture_url": bson.M{"bsonType": "string"},
		"created_at":  bson.M{"bsonType": "date"},
		"updated_at":  bson.M{"bsonType": "date"},
	}
	required := bson.A{"name", "email", "role"}

	switch role {
	case models.RoleAdmin:
		props["phone"] = bson.M{"bsonType": "string"}
	case models.RoleCoordinator:
		props["phone"] = bson.M{"bsonType": "string", "pattern": "^[0-9]{10}$"}
		props["admin_id"] = bson.M{"bsonType": "objectId"}
		props["farmers"] = bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}}
	case models.RoleFarmer:
		props["phone"] = bson.M{"bsonType": "string", "pattern": "^[0-9]{10}$"}
		props["coordinator_id"] = bson.M{"bsonType": "objectId"}
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": props,
		},
	}
}

func cropsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "description", "tag", "price", "farmer_id"},
			"properties": bson.M{
				"title":          nonBlank,
				"description":    nonBlank,
				"tag":            nonBlank,
				"image_url":      bson.M{"bsonType": "string"},
				"price":          bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}, "exclusiveMinimum": true, "minimum": 0, "maximum": 1e12},
				"farmer_id":      bson.M{"bsonType": "objectId"},
				"coordinator_id": bson.M{"bsonType": "objectId"},
			},
		},
	}
}

func paymentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"order_id", "user_id", "crop_id", "amount", "currency", "status"},
			"properties": bson.M{
				"order_id": nonBlank,
				"user_id":  bson.M{"bsonType": "objectId"},
				"crop_id":  bson.M{"bsonType": "objectId"},
				"amount":   bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"currency": nonBlank,
				"status":   bson.M{"enum": bson.A{models.PaymentCreated, models.PaymentPaid, models.PaymentFailed}},
			},
		},
	}
}
