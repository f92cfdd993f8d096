// internal/app/store/identities/store.go
package identitystore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/agreeverse/internal/app/system/inputval"
	"github.com/dalemusser/agreeverse/internal/app/system/normalize"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail is returned when the email is already taken in the collection.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	// ErrDuplicatePhone is returned when the phone number is already taken in the collection.
	ErrDuplicatePhone = errors.New("an account with this phone number already exists")
)

// Store is the persistence for one role collection. T is the role record
// (models.Admin, models.Coordinator, ...), P its pointer type.
//
// Lookups that find nothing return mongo.ErrNoDocuments.
type Store[T any, P interface {
	*T
	models.Account
}] struct {
	c    *mongo.Collection
	role models.Role
}

func newStore[T any, P interface {
	*T
	models.Account
}](db *mongo.Database, role models.Role) *Store[T, P] {
	return &Store[T, P]{c: db.Collection(role.Collection()), role: role}
}

// Role returns the role whose collection this store reads.
func (s *Store[T, P]) Role() models.Role { return s.role }

// withoutPassword keeps password hashes out of list reads.
var withoutPassword = bson.M{"password": 0}

func (s *Store[T, P]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	var v T
	if err := s.c.FindOne(ctx, filter).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByID loads an identity by ObjectID.
func (s *Store[T, P]) GetByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up an identity by case-insensitive email.
func (s *Store[T, P]) GetByEmail(ctx context.Context, email string) (*T, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// GetByLogin resolves a sign-in identifier. Roles that carry a phone accept
// a 10-digit number as well as an email.
func (s *Store[T, P]) GetByLogin(ctx context.Context, identifier string) (*T, error) {
	if s.role.HasPhone() {
		if p := normalize.Phone(identifier); inputval.IsValidPhone(p) && !strings.Contains(identifier, "@") {
			return s.findOne(ctx, bson.M{"phone": p})
		}
	}
	return s.GetByEmail(ctx, identifier)
}

// EmailExists reports whether any identity in the collection uses email.
func (s *Store[T, P]) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"email": normalize.Email(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PhoneExists reports whether phone is used by an identity other than exclude.
func (s *Store[T, P]) PhoneExists(ctx context.Context, phone string, exclude *primitive.ObjectID) (bool, error) {
	filter := bson.M{"phone": normalize.Phone(phone)}
	if exclude != nil {
		filter["_id"] = bson.M{"$ne": *exclude}
	}
	n, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create assigns an ID, role and timestamps, normalizes name and email, and
// inserts v. A unique-index violation maps to ErrDuplicateEmail or
// ErrDuplicatePhone.
func (s *Store[T, P]) Create(ctx context.Context, v P) error {
	base := v.Base()
	base.ID = primitive.NewObjectID()
	base.Role = s.role
	base.Name = normalize.Name(base.Name)
	base.Email = normalize.Email(base.Email)
	now := time.Now().UTC()
	base.CreatedAt = now
	base.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, v); err != nil {
		base.ID = primitive.NilObjectID
		return mapDup(err)
	}
	return nil
}

// List returns every identity in the collection, newest first, without
// password hashes.
func (s *Store[T, P]) List(ctx context.Context) ([]T, error) {
	return s.find(ctx, bson.M{})
}

func (s *Store[T, P]) find(ctx context.Context, filter bson.M) ([]T, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(withoutPassword)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies set (plus updated_at) to the identity with id and returns
// the updated record. Returns mongo.ErrNoDocuments when id does not exist.
func (s *Store[T, P]) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	return s.updateWhere(ctx, bson.M{"_id": id}, set)
}

func (s *Store[T, P]) updateWhere(ctx context.Context, filter bson.M, set bson.M) (*T, error) {
	doc := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range set {
		switch k {
		case "email":
			if e, ok := v.(string); ok {
				v = normalize.Email(e)
			}
		case "name":
			if n, ok := v.(string); ok {
				v = normalize.Name(n)
			}
		}
		doc[k] = v
	}

	var out T
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": doc},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return nil, mapDup(err)
	}
	return &out, nil
}

// Delete removes the identity with id and returns the number deleted.
func (s *Store[T, P]) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func mapDup(err error) error {
	if !wafflemongo.IsDup(err) {
		return err
	}
	if strings.Contains(err.Error(), "phone") {
		return ErrDuplicatePhone
	}
	return ErrDuplicateEmail
}
