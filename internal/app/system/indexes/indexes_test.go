package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/agreeverse/internal/app/system/indexes"
	"github.com/dalemusser/agreeverse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(t *testing.T, ctx context.Context, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s failed: %v", coll, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"admins":       {"uniq_admins_email", "uniq_admins_google"},
		"coordinators": {"uniq_coordinators_email", "uniq_coordinators_phone", "idx_coordinators_admin"},
		"farmers":      {"uniq_farmers_email", "uniq_farmers_phone", "idx_farmers_coordinator"},
		"users":        {"uniq_users_email", "uniq_users_google"},
		"crops":        {"idx_crops_farmer", "idx_crops_coordinator", "idx_crops_created"},
		"payments":     {"uniq_payments_order", "idx_payments_user", "idx_payments_date"},
		"oauth_states": {"idx_oauth_state", "idx_oauth_ttl"},
		"audit_events": {"idx_audit_time", "idx_audit_user", "idx_audit_type"},
	}
	for coll, names := range want {
		got := indexNames(t, ctx, db, coll)
		for _, n := range names {
			if !got[n] {
				t.Errorf("expected index %q on %s", n, coll)
			}
		}
	}
}

func TestEnsureAll_EmailUniquePerCollection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	farmers := db.Collection("farmers")
	if _, err := farmers.InsertOne(ctx, bson.M{"email": "a@x.com", "phone": "9999999999"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := farmers.InsertOne(ctx, bson.M{"email": "a@x.com", "phone": "8888888888"}); !mongo.IsDuplicateKeyError(err) {
		t.Errorf("expected duplicate key on email, got %v", err)
	}
	if _, err := farmers.InsertOne(ctx, bson.M{"email": "b@x.com", "phone": "9999999999"}); !mongo.IsDuplicateKeyError(err) {
		t.Errorf("expected duplicate key on phone, got %v", err)
	}
}

func TestEnsureAll_GoogleIDOptional(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Identities without a Google id must not collide on the partial index.
	users := db.Collection("users")
	for _, email := range []string{"one@x.com", "two@x.com"} {
		if _, err := users.InsertOne(ctx, bson.M{"email": email}); err != nil {
			t.Fatalf("insert %s failed: %v", email, err)
		}
	}
}
