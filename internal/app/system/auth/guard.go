// internal/app/system/auth/guard.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/metrics"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Loader fetches an identity by id from one role's collection. It returns
// mongo.ErrNoDocuments when the record does not exist.
type Loader[T any] func(ctx context.Context, id primitive.ObjectID) (*T, error)

type guardKey models.Role

// Guard resolves the session token to a live record in its role's
// collection. Because it only ever queries its own collection, a token
// issued for another role fails with IdentityNotFound.
type Guard[T any] struct {
	Role    models.Role
	Load    Loader[T]
	Tokens  *Tokens
	Cookies Cookies
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// NewGuard builds a guard for role.
func NewGuard[T any](role models.Role, load Loader[T], tokens *Tokens, cookies Cookies, m *metrics.Metrics, logger *zap.Logger) *Guard[T] {
	return &Guard[T]{
		Role:    role,
		Load:    load,
		Tokens:  tokens,
		Cookies: cookies,
		Metrics: m,
		Log:     logger,
	}
}

// Require is the middleware form of the guard.
func (g *Guard[T]) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, err := g.Resolve(r)
		if err != nil {
			g.reject(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), guardKey(g.Role), ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Resolve runs the guard steps without writing a response.
func (g *Guard[T]) Resolve(r *http.Request) (*T, error) {
	raw, ok := g.Cookies.Read(r)
	if !ok {
		return nil, apierr.New(apierr.Unauthenticated, "Unauthorized: No token provided")
	}
	claims, err := g.Tokens.Verify(raw)
	if err != nil {
		return nil, &apierr.Error{Kind: apierr.InvalidToken, Message: "Unauthorized: Invalid token", Err: err}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ident, err := g.Load(ctx, claims.Subject())
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.New(apierr.IdentityNotFound, g.Role.Title()+" not found")
	}
	if err != nil {
		return nil, apierr.Wrap(err, "load "+string(g.Role))
	}
	return ident, nil
}

func (g *Guard[T]) reject(w http.ResponseWriter, r *http.Request, err error) {
	kind := apierr.KindOf(err)
	g.Metrics.Rejected(string(g.Role), kind.String())
	if kind == apierr.Internal {
		g.Log.Error("guard: identity lookup failed",
			zap.String("role", string(g.Role)),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	} else {
		g.Log.Debug("guard: rejected",
			zap.String("role", string(g.Role)),
			zap.String("reason", kind.String()),
			zap.String("path", r.URL.Path))
	}
	apierr.Write(w, err)
}

// From returns the identity the guard attached to r.
func (g *Guard[T]) From(r *http.Request) (*T, bool) {
	v, ok := r.Context().Value(guardKey(g.Role)).(*T)
	return v, ok
}

// WithIdentity attaches ident to r as if g had resolved it. Used by handler
// tests that bypass the cookie round trip.
func (g *Guard[T]) WithIdentity(r *http.Request, ident *T) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), guardKey(g.Role), ident))
}
