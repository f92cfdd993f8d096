// internal/app/store/identities/directory.go
package identitystore

import (
	"context"

	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stores bundles the four role collections.
type Stores struct {
	Admins       *Admins
	Coordinators *Coordinators
	Farmers      *Farmers
	Users        *Users
}

// NewStores opens every role store on db.
func NewStores(db *mongo.Database) *Stores {
	return &Stores{
		Admins:       NewAdmins(db),
		Coordinators: NewCoordinators(db),
		Farmers:      NewFarmers(db),
		Users:        NewUsers(db),
	}
}

type emailChecker interface {
	Role() models.Role
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Directory answers "which collection, if any, holds this email" across all
// four roles. Collections are searched in models.Roles order and the first
// hit wins.
type Directory struct {
	checkers []emailChecker
}

// NewDirectory builds a Directory over s.
func NewDirectory(s *Stores) *Directory {
	return &Directory{checkers: []emailChecker{s.Admins, s.Coordinators, s.Farmers, s.Users}}
}

// Locate returns the role whose collection holds email. found is false when
// no collection does. A storage error stops the search.
func (d *Directory) Locate(ctx context.Context, email string) (role models.Role, found bool, err error) {
	for _, c := range d.checkers {
		ok, err := c.EmailExists(ctx, email)
		if err != nil {
			return "", false, err
		}
		if ok {
			return c.Role(), true, nil
		}
	}
	return "", false, nil
}
