package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/agreeverse/internal/app/store/audit"
	"github.com/dalemusser/agreeverse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	before := time.Now().Add(-time.Second)
	if err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Role:      "farmer",
		UserID:    &userID,
		IP:        "192.0.2.1",
		Success:   true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{UserID: &userID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.Before(before) {
		t.Error("expected timestamp to be set")
	}
	if events[0].Role != "farmer" {
		t.Errorf("role = %q, want farmer", events[0].Role)
	}
}

func TestStore_QueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	seed := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Role: "user", Success: true, Timestamp: base},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, Role: "user", Timestamp: base.Add(time.Minute)},
		{Category: audit.CategoryAdmin, EventType: audit.EventFarmerCreated, Role: "farmer", Success: true, Timestamp: base.Add(2 * time.Minute)},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"all", audit.QueryFilter{}, 3},
		{"category", audit.QueryFilter{Category: audit.CategoryAuth}, 2},
		{"event type", audit.QueryFilter{EventType: audit.EventFarmerCreated}, 1},
		{"role", audit.QueryFilter{Role: "user"}, 2},
		{"limit", audit.QueryFilter{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}

	n, err := store.Count(ctx, audit.QueryFilter{Category: audit.CategoryAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}

	newest, err := store.Query(ctx, audit.QueryFilter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if newest[0].EventType != audit.EventFarmerCreated {
		t.Errorf("expected newest first, got %s", newest[0].EventType)
	}
}
