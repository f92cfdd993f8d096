package users_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/agreeverse/internal/app/features/users"
	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	identitystore "github.com/dalemusser/agreeverse/internal/app/store/identities"
	paymentstore "github.com/dalemusser/agreeverse/internal/app/store/payments"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"github.com/dalemusser/agreeverse/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func setup(t *testing.T) (chi.Router, *testutil.Fixtures, *paymentstore.Store, *auth.Tokens) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	stores := identitystore.NewStores(db)
	tokens := testutil.NewTokens(t)
	guard := auth.NewGuard(models.RoleUser, stores.Users.GetByID, tokens, auth.NewCookies("", false), nil, zap.NewNop())
	payments := paymentstore.New(db)

	r := chi.NewRouter()
	r.Route("/api/v1/user", func(r chi.Router) {
		users.Register(r, users.NewHandler(cropstore.New(db), payments, guard, zap.NewNop()))
	})
	return r, testutil.NewFixtures(t, db), payments, tokens
}

func TestPreviewCrops_Public(t *testing.T) {
	r, fx, _, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := fx.CreateFarmer(ctx, "f@x.com", nil)
	fx.CreateCrop(ctx, f.ID, "Mango", 50)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.JSONRequest("GET", "/api/v1/user/previewcrop", ""))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Mango")
}

func TestPurchases_OwnOnly(t *testing.T) {
	r, fx, payments, tokens := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateUser(ctx, "u@x.com")
	other := fx.CreateUser(ctx, "o@x.com")
	if _, err := payments.Create(ctx, models.Payment{OrderID: "order_1", UserID: u.ID, Amount: 500, Currency: "INR"}); err != nil {
		t.Fatal(err)
	}

	get := func(target string) *testutil.ResponseRecorder {
		req := testutil.JSONRequest("GET", target, "")
		req.AddCookie(testutil.SessionCookie(t, tokens, u.ID, models.RoleUser))
		rec := testutil.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/api/v1/user/user-purchases/" + u.ID.Hex())
	rec.AssertStatus(t, http.StatusOK)
	if p, _ := rec.JSON(t)["purchases"].([]any); len(p) != 1 {
		t.Errorf("purchases = %d, want 1", len(p))
	}

	get("/api/v1/user/user-purchases/" + other.ID.Hex()).AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.JSONRequest("GET", "/api/v1/user/user-purchases/"+u.ID.Hex(), ""))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
