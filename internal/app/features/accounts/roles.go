// internal/app/features/accounts/roles.go
package accounts

import (
	"context"
	"errors"

	identitystore "github.com/dalemusser/agreeverse/internal/app/store/identities"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/app/system/inputval"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdminRole: phone optional, no links.
func AdminRole(s *identitystore.Stores, g *auth.Guard[models.Admin]) Role[models.Admin, *models.Admin] {
	return Role[models.Admin, *models.Admin]{
		Store: s.Admins,
		Guard: g,
		Phone: PhoneOptional,
		Build: func(_ context.Context, in SignupInput, base models.Identity, _ *inputval.Result) (*models.Admin, error) {
			return &models.Admin{Identity: base, Phone: in.Phone}, nil
		},
	}
}

// CoordinatorRole: phone required, optional link to an existing admin.
func CoordinatorRole(s *identitystore.Stores, g *auth.Guard[models.Coordinator]) Role[models.Coordinator, *models.Coordinator] {
	return Role[models.Coordinator, *models.Coordinator]{
		Store: s.Coordinators.Store,
		Guard: g,
		Phone: PhoneRequired,
		Build: func(ctx context.Context, in SignupInput, base models.Identity, res *inputval.Result) (*models.Coordinator, error) {
			adminID, err := resolveLink(ctx, in.AdminID, "adminId", "Admin", res, func(ctx context.Context, id primitive.ObjectID) error {
				_, err := s.Admins.GetByID(ctx, id)
				return err
			})
			if err != nil {
				return nil, err
			}
			return &models.Coordinator{Identity: base, Phone: in.Phone, AdminID: adminID, Farmers: []primitive.ObjectID{}}, nil
		},
	}
}

// FarmerRole: phone required, optional link to an existing coordinator. The
// new farmer is appended to that coordinator's farmers list.
func FarmerRole(s *identitystore.Stores, g *auth.Guard[models.Farmer]) Role[models.Farmer, *models.Farmer] {
	return Role[models.Farmer, *models.Farmer]{
		Store: s.Farmers.Store,
		Guard: g,
		Phone: PhoneRequired,
		Build: func(ctx context.Context, in SignupInput, base models.Identity, res *inputval.Result) (*models.Farmer, error) {
			coordID, err := resolveLink(ctx, in.CoordinatorID, "coordinatorId", "Coordinator", res, func(ctx context.Context, id primitive.ObjectID) error {
				_, err := s.Coordinators.GetByID(ctx, id)
				return err
			})
			if err != nil {
				return nil, err
			}
			return &models.Farmer{Identity: base, Phone: in.Phone, CoordinatorID: coordID}, nil
		},
		Created: func(ctx context.Context, f *models.Farmer) error {
			if f.CoordinatorID == nil {
				return nil
			}
			return s.Coordinators.AddFarmer(ctx, *f.CoordinatorID, f.ID)
		},
	}
}

// UserRole: name, email and password only.
func UserRole(s *identitystore.Stores, g *auth.Guard[models.User]) Role[models.User, *models.User] {
	return Role[models.User, *models.User]{
		Store: s.Users,
		Guard: g,
		Phone: PhoneIgnored,
		Build: func(_ context.Context, _ SignupInput, base models.Identity, _ *inputval.Result) (*models.User, error) {
			return &models.User{Identity: base}, nil
		},
	}
}

// resolveLink parses an optional parent id and confirms the parent exists.
// A malformed or dangling id becomes a violation on field; storage failures
// are returned.
func resolveLink(ctx context.Context, raw, field, label string, res *inputval.Result, exists func(context.Context, primitive.ObjectID) error) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		res.Add(field, label+" id must be a valid id.")
		return nil, nil
	}
	if err := exists(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			res.Add(field, label+" not found.")
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}
