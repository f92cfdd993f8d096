// internal/app/features/authgoogle/reconcile.go
package authgoogle

import (
	"context"
	"errors"

	"github.com/dalemusser/agreeverse/internal/app/store/oauthstate"
	identitystore "github.com/dalemusser/agreeverse/internal/app/store/identities"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Profile is the subset of the Google userinfo response we keep.
type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// RejectError is a reconciliation outcome the user should see.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string { return e.Reason }

func reject(reason string) error { return &RejectError{Reason: reason} }

func alreadyExists(role models.Role) error {
	return reject("User already exists in " + role.Title() + " collection")
}

// Outcome identifies the identity a successful reconciliation created.
type Outcome struct {
	ID   primitive.ObjectID
	Role models.Role
}

// Reconciler turns a Google profile plus the sign-in intent into exactly one
// new identity. It never signs in an existing account: an email present in
// any collection is rejected.
type Reconciler struct {
	Stores    *identitystore.Stores
	Directory *identitystore.Directory

	// LinkFarmer appends a new farmer to its coordinator's farmers list.
	LinkFarmer func(ctx context.Context, coordinatorID, farmerID primitive.ObjectID) error
}

func NewReconciler(s *identitystore.Stores) *Reconciler {
	return &Reconciler{
		Stores:     s,
		Directory:  identitystore.NewDirectory(s),
		LinkFarmer: s.Coordinators.AddFarmer,
	}
}

// Reconcile creates the identity described by intent. intent.Role must
// already be a known role.
func (rc *Reconciler) Reconcile(ctx context.Context, intent oauthstate.Intent, p Profile) (Outcome, error) {
	if p.Email == "" {
		return Outcome{}, reject("Google account has no email address")
	}

	holder, found, err := rc.Directory.Locate(ctx, p.Email)
	if err != nil {
		return Outcome{}, err
	}
	if found {
		return Outcome{}, alreadyExists(holder)
	}

	base := models.Identity{Name: p.Name, Email: p.Email}
	if base.Name == "" {
		base.Name = p.Email
	}
	if p.ID != "" {
		gid := p.ID
		base.GoogleID = &gid
	}
	if p.Picture != "" {
		pic := p.Picture
		base.PictureURL = &pic
	}

	var id primitive.ObjectID
	switch intent.Role {
	case models.RoleAdmin:
		a := &models.Admin{Identity: base}
		err = rc.Stores.Admins.Create(ctx, a)
		id = a.ID

	case models.RoleCoordinator:
		adminID, lerr := rc.link(ctx, intent.AdminObjectID, "Invalid admin ID", func(ctx context.Context, id primitive.ObjectID) error {
			_, err := rc.Stores.Admins.GetByID(ctx, id)
			return err
		})
		if lerr != nil {
			return Outcome{}, lerr
		}
		c := &models.Coordinator{Identity: base, AdminID: adminID, Farmers: []primitive.ObjectID{}}
		err = rc.Stores.Coordinators.Create(ctx, c)
		id = c.ID

	case models.RoleFarmer:
		coordID, lerr := rc.link(ctx, intent.CoordinatorObjectID, "Invalid coordinator ID", func(ctx context.Context, id primitive.ObjectID) error {
			_, err := rc.Stores.Coordinators.GetByID(ctx, id)
			return err
		})
		if lerr != nil {
			return Outcome{}, lerr
		}
		f := &models.Farmer{Identity: base, CoordinatorID: coordID}
		err = rc.Stores.Farmers.Create(ctx, f)
		id = f.ID
		if err == nil && coordID != nil {
			if err = rc.LinkFarmer(ctx, *coordID, f.ID); err != nil {
				// Remove the unlinked farmer so the sign-in can be retried.
				if _, derr := rc.Stores.Farmers.Delete(ctx, f.ID); derr != nil {
					err = errors.Join(err, derr)
				}
			}
		}

	default:
		u := &models.User{Identity: base}
		err = rc.Stores.Users.Create(ctx, u)
		id = u.ID
	}

	if errors.Is(err, identitystore.ErrDuplicateEmail) {
		// Lost a race with a concurrent sign-up.
		return Outcome{}, alreadyExists(intent.Role)
	}
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{ID: id, Role: intent.Role}, nil
}

// link validates an optional parent reference. Malformed or dangling ids are
// rejected with msg.
func (rc *Reconciler) link(ctx context.Context, parse func() (primitive.ObjectID, bool, error), msg string, exists func(context.Context, primitive.ObjectID) error) (*primitive.ObjectID, error) {
	id, ok, err := parse()
	if !ok {
		return nil, nil
	}
	if err != nil {
		return nil, reject(msg)
	}
	if err := exists(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reject(msg)
		}
		return nil, err
	}
	return &id, nil
}
