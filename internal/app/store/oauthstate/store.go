// internal/app/store/oauthstate/store.go
package oauthstate

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Intent is what the browser asked for when it started a Google sign-in:
// the collection the new identity belongs in and the optional link to its
// parent record.
type Intent struct {
	Role          models.Role `bson:"role"`
	CoordinatorID string      `bson:"coordinator_id,omitempty"`
	AdminID       string      `bson:"admin_id,omitempty"`
}

// State is a single-use OAuth2 state token bound to an Intent.
type State struct {
	State     string    `bson:"state"`
	Intent    Intent    `bson:"intent"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Store manages OAuth2 state tokens in MongoDB. Expiry is enforced on read;
// the TTL index on expires_at and CleanupExpired remove stale rows.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

// New creates a new OAuth state Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauth_states"), now: time.Now}
}

// Save stores a state token with its intent until expiresAt.
func (s *Store) Save(ctx context.Context, state string, intent Intent, expiresAt time.Time) error {
	if state == "" {
		return errors.New("oauthstate: empty state")
	}
	_, err := s.c.InsertOne(ctx, State{
		State:     state,
		Intent:    intent,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: s.now().UTC(),
	})
	return err
}

// Consume returns the intent saved under state and deletes it. ok is false
// when the state is unknown, already used or expired.
func (s *Store) Consume(ctx context.Context, state string) (intent Intent, ok bool, err error) {
	if state == "" {
		return Intent{}, false, nil
	}
	var st State
	err = s.c.FindOneAndDelete(ctx, bson.M{
		"state":      state,
		"expires_at": bson.M{"$gt": s.now().UTC()},
	}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Intent{}, false, nil
	}
	if err != nil {
		return Intent{}, false, err
	}
	return st.Intent, true, nil
}

// CleanupExpired removes expired state tokens.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.c.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": s.now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// CoordinatorObjectID parses the coordinator link. ok is false when none was
// requested; err is set when one was requested but is not a valid id.
func (i Intent) CoordinatorObjectID() (id primitive.ObjectID, ok bool, err error) {
	return parseLink(i.CoordinatorID)
}

// AdminObjectID parses the admin link the same way.
func (i Intent) AdminObjectID() (id primitive.ObjectID, ok bool, err error) {
	return parseLink(i.AdminID)
}

func parseLink(s string) (primitive.ObjectID, bool, error) {
	if s == "" {
		return primitive.NilObjectID, false, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, true, err
	}
	return id, true, nil
}
