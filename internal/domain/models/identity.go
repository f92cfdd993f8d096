// internal/domain/models/identity.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role tags an identity with the collection it lives in. The tag is embedded
// in session tokens but authorization always resolves against the collection.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleFarmer      Role = "farmer"
	RoleUser        Role = "user"
)

// Roles lists every role in lookup order (the order federated sign-in
// searches the collections in).
var Roles = []Role{RoleAdmin, RoleCoordinator, RoleFarmer, RoleUser}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleCoordinator, RoleFarmer, RoleUser:
		return r, true
	}
	return "", false
}

// Collection returns the MongoDB collection that stores identities of r.
func (r Role) Collection() string {
	return string(r) + "s"
}

// Title returns the capitalized role name used in user-facing messages.
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// HasPhone reports whether identities of r carry a unique phone number.
func (r Role) HasPhone() bool {
	return r == RoleCoordinator || r == RoleFarmer
}

// Identity holds the attributes shared by all four role collections.
//
// PasswordHash is nil for identities created through Google sign-in.
// Email is stored lower-cased and is unique within its collection.
type Identity struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash *string            `bson:"password,omitempty" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	GoogleID     *string            `bson:"google_id,omitempty" json:"googleId,omitempty"`
	PictureURL   *string            `bson:"picture_url,omitempty" json:"googleProfilePicture,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Base lets every role record expose its shared fields.
func (i *Identity) Base() *Identity { return i }

// HasPassword reports whether the identity can sign in with local credentials.
func (i *Identity) HasPassword() bool {
	return i.PasswordHash != nil && *i.PasswordHash != ""
}

// Account is implemented by pointers to the four role records.
type Account interface {
	Base() *Identity
}

// Admin oversees coordinators, farmers, crops and payments.
type Admin struct {
	Identity `bson:",inline"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Coordinator manages a set of farmers.
type Coordinator struct {
	Identity `bson:",inline"`
	Phone    string               `bson:"phone,omitempty" json:"phone,omitempty"`
	AdminID  *primitive.ObjectID  `bson:"admin_id,omitempty" json:"adminId,omitempty"`
	Farmers  []primitive.ObjectID `bson:"farmers,omitempty" json:"farmers"`
}

// Farmer lists crops. CoordinatorID, when set, references an existing
// coordinator; deleting that coordinator unsets it.
type Farmer struct {
	Identity      `bson:",inline"`
	Phone         string              `bson:"phone,omitempty" json:"phone,omitempty"`
	CoordinatorID *primitive.ObjectID `bson:"coordinator_id,omitempty" json:"coordinatorId,omitempty"`
}

// User browses and purchases crops.
type User struct {
	Identity `bson:",inline"`
}
