// internal/app/system/auth/tokens.go
package auth

import (
	"errors"
	"time"

	"github.com/dalemusser/agreeverse/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidToken covers every verification failure: malformed,
	// expired, wrong signature or wrong algorithm.
	ErrInvalidToken = errors.New("invalid token")

	errNoSecret = errors.New("token signing secret is empty")
)

// Claims is the session token payload.
type Claims struct {
	ID   string      `json:"id"`
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens with one process-wide
// secret. It is immutable after construction and safe for concurrent use.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens returns a Tokens signing with secret. An empty secret is a
// startup error.
func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, errNoSecret
	}
	return &Tokens{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs {id, role, iat, exp} with exp = now + ttl.
func (t *Tokens) Issue(id primitive.ObjectID, role models.Role, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		ID:   id.Hex(),
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks signature and expiry and returns the claims.
func (t *Tokens) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := primitive.ObjectIDFromHex(claims.ID); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Subject returns the identity id carried by c.
func (c *Claims) Subject() primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(c.ID)
	return id
}
