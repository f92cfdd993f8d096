// internal/app/features/members/service.go
package members

import (
	"context"
	"errors"

	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	identitystore "github.com/dalemusser/agreeverse/internal/app/store/identities"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/passwords"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service applies the membership rules shared by the coordinator and admin
// handlers. An email identifies at most one identity across every role, a
// phone at most one farmer or coordinator, and a coordinator's farmers list
// follows each farmer's coordinator_id.
//
// Every error it returns is an *apierr.Error.
type Service struct {
	Stores    *identitystore.Stores
	Directory *identitystore.Directory
	Crops     *cropstore.Store
	Client    *mongo.Client
	Log       *zap.Logger
}

func NewService(stores *identitystore.Stores, crops *cropstore.Store, client *mongo.Client, logger *zap.Logger) *Service {
	return &Service{
		Stores:    stores,
		Directory: identitystore.NewDirectory(stores),
		Crops:     crops,
		Client:    client,
		Log:       logger,
	}
}

// checkEmail fails with Conflict when any role already holds email.
func (s *Service) checkEmail(ctx context.Context, email string) error {
	holder, found, err := s.Directory.Locate(ctx, email)
	if err != nil {
		return apierr.Wrap(err, "locate email")
	}
	if found {
		return apierr.New(apierr.Conflict, "User already exists in "+holder.Title()+" collection")
	}
	return nil
}

type phoneChecker interface {
	PhoneExists(ctx context.Context, phone string, exclude *primitive.ObjectID) (bool, error)
}

func checkPhone(ctx context.Context, store phoneChecker, role models.Role, phone string, exclude *primitive.ObjectID) error {
	taken, err := store.PhoneExists(ctx, phone, exclude)
	if err != nil {
		return apierr.Wrap(err, "check phone")
	}
	if taken {
		return phoneConflict(role)
	}
	return nil
}

func phoneConflict(role models.Role) error {
	return apierr.New(apierr.Conflict, role.Title()+" already exists with this phone number")
}

// storeErr maps store errors for role. ErrNoDocuments becomes notFound.
func storeErr(err error, role models.Role, notFound, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apierr.New(apierr.NotFound, notFound)
	case errors.Is(err, identitystore.ErrDuplicateEmail):
		return apierr.New(apierr.Conflict, "User already exists in "+role.Title()+" collection")
	case errors.Is(err, identitystore.ErrDuplicatePhone):
		return phoneConflict(role)
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apierr.Wrap(err, op)
}

func hashPassword(plain string) (*string, error) {
	h, err := passwords.Hash(plain)
	if err != nil {
		return nil, apierr.Wrap(err, "hash password")
	}
	return &h, nil
}
