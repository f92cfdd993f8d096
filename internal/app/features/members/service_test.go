package members_test

import (
	"testing"

	"github.com/dalemusser/agreeverse/internal/app/features/members"
	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	identitystore "github.com/dalemusser/agreeverse/internal/app/store/identities"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/formutil"
	"github.com/dalemusser/agreeverse/internal/app/system/passwords"
	"github.com/dalemusser/agreeverse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*members.Service, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := members.NewService(identitystore.NewStores(db), cropstore.New(db), db.Client(), zap.NewNop())
	return svc, testutil.NewFixtures(t, db)
}

func strp(s string) *string { return &s }

func input(email, phone string) formutil.MemberInput {
	in := formutil.MemberInput{Name: "Member", Email: email, Phone: phone, Password: "secret12"}
	in.Normalize()
	return in
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func TestAddFarmer_LinksCoordinator(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	coord := fx.CreateCoordinator(ctx, "c@x.com", nil)

	f, err := svc.AddFarmer(ctx, input("F@X.com", "8000000001"), &coord.ID)
	if err != nil {
		t.Fatalf("AddFarmer: %v", err)
	}
	if f.Email != "f@x.com" {
		t.Errorf("email = %q", f.Email)
	}
	if ok, _ := passwords.Verify("secret12", *f.PasswordHash); !ok {
		t.Error("password not hashed")
	}
	got, _ := svc.Stores.Coordinators.GetByID(ctx, coord.ID)
	if !contains(got.Farmers, f.ID) {
		t.Error("farmer not on coordinator list")
	}
}

func TestAddFarmer_Conflicts(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateUser(ctx, "taken@x.com")
	existing := fx.CreateFarmer(ctx, "farmer@x.com", nil)

	_, err := svc.AddFarmer(ctx, input("taken@x.com", "8000000002"), nil)
	if !apierr.Is(err, apierr.Conflict) {
		t.Errorf("cross-role email: err = %v, want Conflict", err)
	}
	_, err = svc.AddFarmer(ctx, input("new@x.com", existing.Phone), nil)
	if !apierr.Is(err, apierr.Conflict) {
		t.Errorf("phone: err = %v, want Conflict", err)
	}
	missing := primitive.NewObjectID()
	_, err = svc.AddFarmer(ctx, input("new@x.com", "8000000003"), &missing)
	if !apierr.Is(err, apierr.Validation) {
		t.Errorf("unknown coordinator: err = %v, want Validation", err)
	}
}

func TestUpdateFarmer_Scope(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mine := fx.CreateCoordinator(ctx, "mine@x.com", nil)
	theirs := fx.CreateCoordinator(ctx, "theirs@x.com", nil)
	f := fx.CreateFarmer(ctx, "f@x.com", &theirs.ID)

	_, err := svc.UpdateFarmer(ctx, f.ID, members.Scope{Coordinator: &mine.ID}, formutil.MemberPatch{Name: strp("X")})
	if !apierr.Is(err, apierr.NotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}

	out, err := svc.UpdateFarmer(ctx, f.ID, members.Scope{Coordinator: &theirs.ID}, formutil.MemberPatch{Name: strp("Renamed")})
	if err != nil {
		t.Fatalf("UpdateFarmer: %v", err)
	}
	if out.Name != "Renamed" {
		t.Errorf("name = %q", out.Name)
	}

	_, err = svc.UpdateFarmer(ctx, f.ID, members.Scope{}, formutil.MemberPatch{})
	if !apierr.Is(err, apierr.Validation) {
		t.Errorf("empty patch: err = %v, want Validation", err)
	}
}

func TestUpdateFarmer_MovesBetweenCoordinators(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	from := fx.CreateCoordinator(ctx, "from@x.com", nil)
	to := fx.CreateCoordinator(ctx, "to@x.com", nil)
	f := fx.CreateFarmer(ctx, "f@x.com", &from.ID)

	out, err := svc.UpdateFarmer(ctx, f.ID, members.Scope{}, formutil.MemberPatch{CoordinatorID: strp(to.ID.Hex())})
	if err != nil {
		t.Fatalf("UpdateFarmer: %v", err)
	}
	if out.CoordinatorID == nil || *out.CoordinatorID != to.ID {
		t.Errorf("coordinator_id = %v, want %v", out.CoordinatorID, to.ID)
	}
	gotFrom, _ := svc.Stores.Coordinators.GetByID(ctx, from.ID)
	gotTo, _ := svc.Stores.Coordinators.GetByID(ctx, to.ID)
	if contains(gotFrom.Farmers, f.ID) {
		t.Error("farmer still on old coordinator's list")
	}
	if !contains(gotTo.Farmers, f.ID) {
		t.Error("farmer missing from new coordinator's list")
	}

	_, err = svc.UpdateFarmer(ctx, f.ID, members.Scope{}, formutil.MemberPatch{CoordinatorID: strp(primitive.NewObjectID().Hex())})
	if !apierr.Is(err, apierr.Validation) {
		t.Errorf("unknown coordinator: err = %v, want Validation", err)
	}
}

func TestDeleteFarmer_CascadesCrops(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	coord := fx.CreateCoordinator(ctx, "c@x.com", nil)
	f := fx.CreateFarmer(ctx, "f@x.com", &coord.ID)
	fx.CreateCrop(ctx, f.ID, "Rice", 4)

	if _, err := svc.DeleteFarmer(ctx, f.ID, members.Scope{Coordinator: &coord.ID}); err != nil {
		t.Fatalf("DeleteFarmer: %v", err)
	}
	crops, _ := svc.Crops.ListByFarmer(ctx, f.ID)
	if len(crops) != 0 {
		t.Errorf("crops left = %d", len(crops))
	}
	got, _ := svc.Stores.Coordinators.GetByID(ctx, coord.ID)
	if contains(got.Farmers, f.ID) {
		t.Error("farmer still on coordinator list")
	}
	if _, err := svc.DeleteFarmer(ctx, f.ID, members.Scope{}); !apierr.Is(err, apierr.NotFound) {
		t.Errorf("second delete: err = %v, want NotFound", err)
	}
}

func TestCoordinatorLifecycle(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := fx.CreateAdmin(ctx, "a@x.com")

	c, err := svc.AddCoordinator(ctx, input("coord@x.com", "8000000010"), &admin.ID)
	if err != nil {
		t.Fatalf("AddCoordinator: %v", err)
	}
	if c.AdminID == nil || *c.AdminID != admin.ID {
		t.Error("coordinator not linked to admin")
	}
	if _, err := svc.AddCoordinator(ctx, input("a@x.com", "8000000011"), nil); !apierr.Is(err, apierr.Conflict) {
		t.Errorf("admin email reuse: err = %v, want Conflict", err)
	}

	// no password in the patch keeps the old hash
	before := *c.PasswordHash
	out, err := svc.UpdateCoordinator(ctx, c.ID, formutil.MemberPatch{Name: strp("New Name")})
	if err != nil {
		t.Fatalf("UpdateCoordinator: %v", err)
	}
	if *out.PasswordHash != before {
		t.Error("password changed without one being supplied")
	}
	out, err = svc.UpdateCoordinator(ctx, c.ID, formutil.MemberPatch{Password: strp("another1")})
	if err != nil {
		t.Fatalf("UpdateCoordinator: %v", err)
	}
	if ok, _ := passwords.Verify("another1", *out.PasswordHash); !ok {
		t.Error("password not re-hashed")
	}

	f1 := fx.CreateFarmer(ctx, "f1@x.com", &c.ID)
	f2 := fx.CreateFarmer(ctx, "f2@x.com", &c.ID)

	n, err := svc.DeleteCoordinator(ctx, c.ID)
	if err != nil {
		t.Fatalf("DeleteCoordinator: %v", err)
	}
	if n != 2 {
		t.Errorf("detached = %d, want 2", n)
	}
	for _, id := range []primitive.ObjectID{f1.ID, f2.ID} {
		f, err := svc.Stores.Farmers.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("farmer %s gone: %v", id.Hex(), err)
		}
		if f.CoordinatorID != nil {
			t.Errorf("farmer %s still references coordinator", id.Hex())
		}
	}
	if _, err := svc.DeleteCoordinator(ctx, c.ID); !apierr.Is(err, apierr.NotFound) {
		t.Errorf("second delete: err = %v, want NotFound", err)
	}
}
