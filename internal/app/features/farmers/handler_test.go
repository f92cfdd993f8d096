package farmers_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/agreeverse/internal/app/features/farmers"
	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	identitystore "github.com/dalemusser/agreeverse/internal/app/store/identities"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"github.com/dalemusser/agreeverse/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	t      *testing.T
	fx     *testutil.Fixtures
	crops  *cropstore.Store
	tokens *auth.Tokens
	router chi.Router
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	stores := identitystore.NewStores(db)
	tokens := testutil.NewTokens(t)
	guard := auth.NewGuard(models.RoleFarmer, stores.Farmers.GetByID, tokens, auth.NewCookies("", false), nil, zap.NewNop())
	crops := cropstore.New(db)

	r := chi.NewRouter()
	r.Route("/api/v1/farmer", func(r chi.Router) {
		farmers.Register(r, farmers.NewHandler(crops, guard, zap.NewNop()))
	})
	return &env{t: t, fx: testutil.NewFixtures(t, db), crops: crops, tokens: tokens, router: r}
}

func (e *env) do(method, target, body string, as *primitive.ObjectID) *testutil.ResponseRecorder {
	req := testutil.JSONRequest(method, target, body)
	if as != nil {
		req.AddCookie(testutil.SessionCookie(e.t, e.tokens, *as, models.RoleFarmer))
	}
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestRoutesRequireFarmer(t *testing.T) {
	e := newEnv(t)
	rec := e.do("GET", "/api/v1/farmer/preview-crops", "", nil)
	rec.AssertStatus(t, http.StatusUnauthorized)

	// a valid token for an id that is not a farmer
	stranger := primitive.NewObjectID()
	rec = e.do("GET", "/api/v1/farmer/preview-crops", "", &stranger)
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Farmer not found")
}

func TestAddCrop(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := e.fx.CreateFarmer(ctx, "f@x.com", nil)

	rec := e.do("POST", "/api/v1/farmer/add-crop",
		`{"title":"<b>Wheat</b>","description":"Winter wheat","tag":"grain","price":25,"imageURL":"https://img.test/w.png"}`, &f.ID)
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "Crop added successfully")

	crops, err := e.crops.ListByFarmer(ctx, f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(crops) != 1 {
		t.Fatalf("crops = %d, want 1", len(crops))
	}
	if crops[0].Title != "Wheat" {
		t.Errorf("title = %q, markup should be stripped", crops[0].Title)
	}
	if crops[0].CoordinatorID != nil {
		t.Error("farmer-added crop has no coordinator")
	}
}

func TestAddCrop_Validation(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := e.fx.CreateFarmer(ctx, "f@x.com", nil)

	rec := e.do("POST", "/api/v1/farmer/add-crop", `{"title":"","price":0}`, &f.ID)
	rec.AssertStatus(t, http.StatusBadRequest)
	body := rec.JSON(t)
	if errs, _ := body["errors"].([]any); len(errs) != 4 {
		t.Errorf("errors = %v, want title, description, tag and price", body["errors"])
	}

	rec = e.do("POST", "/api/v1/farmer/add-crop", `{not json`, &f.ID)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestUpdateCrop_OwnOnly(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := e.fx.CreateFarmer(ctx, "owner@x.com", nil)
	other := e.fx.CreateFarmer(ctx, "other@x.com", nil)
	crop := e.fx.CreateCrop(ctx, owner.ID, "Rice", 10)

	rec := e.do("PUT", "/api/v1/farmer/update-crop/"+crop.ID.Hex(), `{"price":12}`, &other.ID)
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Crop not found or not updated.")

	rec = e.do("PUT", "/api/v1/farmer/update-crop/"+crop.ID.Hex(), `{"price":12}`, &owner.ID)
	rec.AssertStatus(t, http.StatusOK)
	got, _ := e.crops.GetByID(ctx, crop.ID)
	if got.Price != 12 || got.Title != "Rice" {
		t.Errorf("crop = %+v, want price 12 with title kept", got)
	}

	rec = e.do("PUT", "/api/v1/farmer/update-crop/"+crop.ID.Hex(), `{}`, &owner.ID)
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do("PUT", "/api/v1/farmer/update-crop/not-an-id", `{"price":1}`, &owner.ID)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestPreviewCrops(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := e.fx.CreateFarmer(ctx, "f@x.com", nil)

	rec := e.do("GET", "/api/v1/farmer/preview-crops", "", &f.ID)
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "No crops found.")

	e.fx.CreateCrop(ctx, f.ID, "Millet", 5)
	e.fx.CreateCrop(ctx, f.ID, "Barley", 6)
	rec = e.do("GET", "/api/v1/farmer/preview-crops", "", &f.ID)
	rec.AssertStatus(t, http.StatusOK)
	if crops, _ := rec.JSON(t)["crops"].([]any); len(crops) != 2 {
		t.Errorf("crops = %d, want 2", len(crops))
	}
}

func TestCropsByFarmer(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	viewer := e.fx.CreateFarmer(ctx, "viewer@x.com", nil)
	owner := e.fx.CreateFarmer(ctx, "owner@x.com", nil)
	e.fx.CreateCrop(ctx, owner.ID, "Maize", 8)

	rec := e.do("GET", "/api/v1/farmer/add-crops-farmer/"+owner.ID.Hex(), "", &viewer.ID)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Maize")

	rec = e.do("GET", "/api/v1/farmer/add-crops-farmer/"+viewer.ID.Hex(), "", &viewer.ID)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestDeleteCrop(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := e.fx.CreateFarmer(ctx, "owner@x.com", nil)
	other := e.fx.CreateFarmer(ctx, "other@x.com", nil)
	crop := e.fx.CreateCrop(ctx, owner.ID, "Oats", 3)

	e.do("DELETE", "/api/v1/farmer/delete-crop/"+crop.ID.Hex(), "", &other.ID).AssertStatus(t, http.StatusNotFound)
	e.do("DELETE", "/api/v1/farmer/delete-crop/"+crop.ID.Hex(), "", &owner.ID).AssertStatus(t, http.StatusOK)
	e.do("DELETE", "/api/v1/farmer/delete-crop/"+crop.ID.Hex(), "", &owner.ID).AssertStatus(t, http.StatusNotFound)
}
