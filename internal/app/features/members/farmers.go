// internal/app/features/members/farmers.go
package members

import (
	"context"
	"errors"

	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/formutil"
	"github.com/dalemusser/agreeverse/internal/app/system/txn"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Scope limits farmer operations to one coordinator's farmers. A nil
// Coordinator (admin) reaches every farmer.
type Scope struct {
	Coordinator *primitive.ObjectID
}

func (sc Scope) notFound() string {
	if sc.Coordinator != nil {
		return "Farmer not found or not authorized"
	}
	return "Farmer not found"
}

func (s *Service) loadFarmer(ctx context.Context, id primitive.ObjectID, sc Scope) (*models.Farmer, error) {
	var (
		f   *models.Farmer
		err error
	)
	if sc.Coordinator != nil {
		f, err = s.Stores.Farmers.GetForCoordinator(ctx, id, *sc.Coordinator)
	} else {
		f, err = s.Stores.Farmers.GetByID(ctx, id)
	}
	if err != nil {
		return nil, storeErr(err, models.RoleFarmer, sc.notFound(), "load farmer")
	}
	return f, nil
}

func (s *Service) requireCoordinator(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.Stores.Coordinators.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apierr.New(apierr.Validation, "Invalid coordinator ID")
	}
	if err != nil {
		return apierr.Wrap(err, "load coordinator")
	}
	return nil
}

// AddFarmer creates a farmer, linked to coordinatorID when it is not nil,
// and appends it to that coordinator's farmers list.
func (s *Service) AddFarmer(ctx context.Context, in formutil.MemberInput, coordinatorID *primitive.ObjectID) (*models.Farmer, error) {
	if coordinatorID != nil {
		if err := s.requireCoordinator(ctx, *coordinatorID); err != nil {
			return nil, err
		}
	}
	if err := s.checkEmail(ctx, in.Email); err != nil {
		return nil, err
	}
	if err := checkPhone(ctx, s.Stores.Farmers, models.RoleFarmer, in.Phone, nil); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	f := &models.Farmer{
		Identity:      models.Identity{Name: in.Name, Email: in.Email, PasswordHash: hash},
		Phone:         in.Phone,
		CoordinatorID: coordinatorID,
	}
	if err := s.Stores.Farmers.Create(ctx, f); err != nil {
		return nil, storeErr(err, models.RoleFarmer, "", "create farmer")
	}
	if coordinatorID != nil {
		if err := s.Stores.Coordinators.AddFarmer(ctx, *coordinatorID, f.ID); err != nil {
			s.Log.Error("add farmer: coordinator list not updated",
				zap.String("farmer", f.ID.Hex()),
				zap.String("coordinator", coordinatorID.Hex()),
				zap.Error(err))
		}
	}
	return f, nil
}

// UpdateFarmer applies p to farmer id within sc. A coordinator change moves
// the farmer between coordinators' lists. The password is re-hashed only
// when p carries one.
func (s *Service) UpdateFarmer(ctx context.Context, id primitive.ObjectID, sc Scope, p formutil.MemberPatch) (*models.Farmer, error) {
	cur, err := s.loadFarmer(ctx, id, sc)
	if err != nil {
		return nil, err
	}
	if p.Email != nil && *p.Email != cur.Email {
		if err := s.checkEmail(ctx, *p.Email); err != nil {
			return nil, err
		}
	}
	if p.Phone != nil && *p.Phone != cur.Phone {
		if err := checkPhone(ctx, s.Stores.Farmers, models.RoleFarmer, *p.Phone, &id); err != nil {
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

	var moveTo *primitive.ObjectID
	if next := p.CoordinatorObjectID(); next != nil && (cur.CoordinatorID == nil || *cur.CoordinatorID != *next) {
		if err := s.requireCoordinator(ctx, *next); err != nil {
			return nil, err
		}
		set["coordinator_id"] = *next
		moveTo = next
	}
	if len(set) == 0 {
		return nil, apierr.New(apierr.Validation, "Nothing to update.")
	}

	var out *models.Farmer
	if sc.Coordinator != nil {
		out, err = s.Stores.Farmers.UpdateForCoordinator(ctx, id, *sc.Coordinator, set)
	} else {
		out, err = s.Stores.Farmers.Update(ctx, id, set)
	}
	if err != nil {
		return nil, storeErr(err, models.RoleFarmer, sc.notFound(), "update farmer")
	}

	if moveTo != nil {
		if err := s.Stores.Coordinators.RemoveFarmer(ctx, id); err != nil {
			return nil, apierr.Wrap(err, "pull farmer from coordinator")
		}
		if err := s.Stores.Coordinators.AddFarmer(ctx, *moveTo, id); err != nil {
			return nil, storeErr(err, models.RoleCoordinator, "Invalid coordinator ID", "push farmer to coordinator")
		}
	}
	return out, nil
}

// DeleteFarmer removes farmer id within sc, pulls it from every
// coordinator's list and deletes its crops. It returns the deleted farmer.
func (s *Service) DeleteFarmer(ctx context.Context, id primitive.ObjectID, sc Scope) (*models.Farmer, error) {
	f, err := s.loadFarmer(ctx, id, sc)
	if err != nil {
		return nil, err
	}

	err = txn.Run(ctx, s.Client, s.Log, "delete farmer", func(ctx context.Context) error {
		n, err := s.Stores.Farmers.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return mongo.ErrNoDocuments
		}
		if err := s.Stores.Coordinators.RemoveFarmer(ctx, id); err != nil {
			return err
		}
		_, err = s.Crops.DeleteByFarmer(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeErr(err, models.RoleFarmer, sc.notFound(), "delete farmer")
	}
	return f, nil
}
