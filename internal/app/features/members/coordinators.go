// internal/app/features/members/coordinators.go
package members

import (
	"context"

	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/formutil"
	"github.com/dalemusser/agreeverse/internal/app/system/txn"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const coordinatorNotFound = "Coordinator not found"

// AddCoordinator creates a coordinator owned by adminID.
func (s *Service) AddCoordinator(ctx context.Context, in formutil.MemberInput, adminID *primitive.ObjectID) (*models.Coordinator, error) {
	if err := s.checkEmail(ctx, in.Email); err != nil {
		return nil, err
	}
	if err := checkPhone(ctx, s.Stores.Coordinators, models.RoleCoordinator, in.Phone, nil); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	c := &models.Coordinator{
		Identity: models.Identity{Name: in.Name, Email: in.Email, PasswordHash: hash},
		Phone:    in.Phone,
		AdminID:  adminID,
		Farmers:  []primitive.ObjectID{},
	}
	if err := s.Stores.Coordinators.Create(ctx, c); err != nil {
		return nil, storeErr(err, models.RoleCoordinator, "", "create coordinator")
	}
	return c, nil
}

// UpdateCoordinator applies p to coordinator id. The password is re-hashed
// only when p carries one; a coordinator id in p is ignored.
func (s *Service) UpdateCoordinator(ctx context.Context, id primitive.ObjectID, p formutil.MemberPatch) (*models.Coordinator, error) {
	cur, err := s.Stores.Coordinators.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, models.RoleCoordinator, coordinatorNotFound, "load coordinator")
	}
	if p.Email != nil && *p.Email != cur.Email {
		if err := s.checkEmail(ctx, *p.Email); err != nil {
			return nil, err
		}
	}
	if p.Phone != nil && *p.Phone != cur.Phone {
		if err := checkPhone(ctx, s.Stores.Coordinators, models.RoleCoordinator, *p.Phone, &id); err != nil {
			return nil, err
		}
	}

	set := p.Set()
	if p.Password != nil {
		hash, err := hashPassword(*p.Password)
		if err != nil {
			return nil, err
		}
		set["password"] = *hash
	}
	if len(set) == 0 {
		return nil, apierr.New(apierr.Validation, "Nothing to update.")
	}

	out, err := s.Stores.Coordinators.Update(ctx, id, set)
	if err != nil {
		return nil, storeErr(err, models.RoleCoordinator, coordinatorNotFound, "update coordinator")
	}
	return out, nil
}

// DeleteCoordinator unsets coordinator_id on the coordinator's farmers and
// then deletes it, inside one transaction when the deployment supports
// transactions. It returns how many farmers were detached. Deleting an
// already deleted coordinator fails with NotFound.
func (s *Service) DeleteCoordinator(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if _, err := s.Stores.Coordinators.GetByID(ctx, id); err != nil {
		return 0, storeErr(err, models.RoleCoordinator, coordinatorNotFound, "load coordinator")
	}

	var detached int64
	err := txn.Run(ctx, s.Client, s.Log, "delete coordinator", func(ctx context.Context) error {
		n, err := s.Stores.Farmers.DetachCoordinator(ctx, id)
		if err != nil {
			return err
		}
		deleted, err := s.Stores.Coordinators.Delete(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return mongo.ErrNoDocuments
		}
		detached = n
		return nil
	})
	if err != nil {
		return 0, storeErr(err, models.RoleCoordinator, coordinatorNotFound, "delete coordinator")
	}
	return detached, nil
}
