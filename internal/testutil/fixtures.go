package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	identitystore "github.com/dalemusser/agreeverse/internal/app/store/identities"
	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	"github.com/dalemusser/agreeverse/internal/app/system/passwords"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FixturePassword is the password of every identity created by Fixtures.
const FixturePassword = "password123"

var phoneSeq atomic.Int64

// nextPhone returns a distinct 10-digit phone number.
func nextPhone() string {
	return fmt.Sprintf("9%09d", phoneSeq.Add(1))
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db     *mongo.Database
	t      *testing.T
	stores *identitystore.Stores
	hash   string
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	h, err := passwords.Hash(FixturePassword)
	if err != nil {
		t.Fatalf("hash fixture password: %v", err)
	}
	return &Fixtures{db: db, t: t, stores: identitystore.NewStores(db), hash: h}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) identity(email string) models.Identity {
	h := f.hash
	return models.Identity{Name: "Test " + email, Email: email, PasswordHash: &h}
}

// CreateAdmin creates a test admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, email string) *models.Admin {
	f.t.Helper()
	a := &models.Admin{Identity: f.identity(email)}
	if err := f.stores.Admins.Create(ctx, a); err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}
	return a
}

// CreateCoordinator creates a test coordinator, optionally linked to an admin.
func (f *Fixtures) CreateCoordinator(ctx context.Context, email string, adminID *primitive.ObjectID) *models.Coordinator {
	f.t.Helper()
	c := &models.Coordinator{Identity: f.identity(email), Phone: nextPhone(), AdminID: adminID, Farmers: []primitive.ObjectID{}}
	if err := f.stores.Coordinators.Create(ctx, c); err != nil {
		f.t.Fatalf("failed to create test coordinator: %v", err)
	}
	return c
}

// CreateFarmer creates a test farmer. When coordinatorID is set the farmer is
// also added to that coordinator's farmers list.
func (f *Fixtures) CreateFarmer(ctx context.Context, email string, coordinatorID *primitive.ObjectID) *models.Farmer {
	f.t.Helper()
	fm := &models.Farmer{Identity: f.identity(email), Phone: nextPhone(), CoordinatorID: coordinatorID}
	if err := f.stores.Farmers.Create(ctx, fm); err != nil {
		f.t.Fatalf("failed to create test farmer: %v", err)
	}
	if coordinatorID != nil {
		if err := f.stores.Coordinators.AddFarmer(ctx, *coordinatorID, fm.ID); err != nil {
			f.t.Fatalf("failed to link test farmer: %v", err)
		}
	}
	return fm
}

// CreateOAuthFarmer creates a farmer with no local password.
func (f *Fixtures) CreateOAuthFarmer(ctx context.Context, email string) *models.Farmer {
	f.t.Helper()
	gid := "google-" + email
	fm := &models.Farmer{Identity: models.Identity{Name: "OAuth " + email, Email: email, GoogleID: &gid}, Phone: nextPhone()}
	if err := f.stores.Farmers.Create(ctx, fm); err != nil {
		f.t.Fatalf("failed to create oauth farmer: %v", err)
	}
	return fm
}

// CreateUser creates a test end user.
func (f *Fixtures) CreateUser(ctx context.Context, email string) *models.User {
	f.t.Helper()
	u := &models.User{Identity: f.identity(email)}
	if err := f.stores.Users.Create(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateCrop creates a crop owned by farmerID.
func (f *Fixtures) CreateCrop(ctx context.Context, farmerID primitive.ObjectID, title string, price float64) models.Crop {
	f.t.Helper()
	c, err := cropstore.New(f.db).Create(ctx, models.Crop{
		Title:       title,
		Description: title + " description",
		ImageURL:    "https://example.com/" + title + ".jpg",
		Tag:         "test",
		Price:       price,
		FarmerID:    farmerID,
	})
	if err != nil {
		f.t.Fatalf("failed to create test crop: %v", err)
	}
	return c
}
