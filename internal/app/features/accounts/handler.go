// internal/app/features/accounts/handler.go
package accounts

import (
	"context"
	"time"

	identitystore "github.com/dalemusser/agreeverse/internal/app/store/identities"
	"github.com/dalemusser/agreeverse/internal/app/system/auditlog"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/app/system/inputval"
	"github.com/dalemusser/agreeverse/internal/app/system/metrics"
	"github.com/dalemusser/agreeverse/internal/app/system/ratelimit"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.uber.org/zap"
)

const maxBody = 1 << 20

// Deps are shared by the four role handlers.
type Deps struct {
	Tokens    *auth.Tokens
	Cookies   auth.Cookies
	TokenTTL  time.Duration
	Directory *identitystore.Directory
	Limiter   *ratelimit.LoginLimiter
	Audit     *auditlog.Logger
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

// PhonePolicy says how a role treats the phone field on sign-up.
type PhonePolicy int

const (
	PhoneIgnored PhonePolicy = iota
	PhoneOptional
	PhoneRequired
)

// SignupInput is the sign-up body. Link ids are only read by the roles that
// use them.
type SignupInput struct {
	Name          string `json:"name" validate:"required,max=100" label:"Name"`
	Email         string `json:"email" validate:"required,emailaddr" label:"Email"`
	Password      string `json:"password" validate:"required,min=6,max=72" label:"Password"`
	Phone         string `json:"phone" label:"Phone"`
	CoordinatorID string `json:"coordinatorId"`
	AdminID       string `json:"adminId"`
}

// Role plugs one collection into the generic handler.
type Role[T any, P interface {
	*T
	models.Account
}] struct {
	Store *identitystore.Store[T, P]
	Guard *auth.Guard[T]
	Phone PhonePolicy

	// Build fills the role-specific fields of a new record. It reports bad
	// link ids as violations on res.
	Build func(ctx context.Context, in SignupInput, base models.Identity, res *inputval.Result) (P, error)

	// Created runs after the record is stored. Optional.
	Created func(ctx context.Context, rec P) error
}

// Handler serves sign-up, sign-in, sign-out and the dashboard for one role.
type Handler[T any, P interface {
	*T
	models.Account
}] struct {
	Deps
	role Role[T, P]
}

func NewHandler[T any, P interface {
	*T
	models.Account
}](d Deps, role Role[T, P]) *Handler[T, P] {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Handler[T, P]{Deps: d, role: role}
}

func (h *Handler[T, P]) roleName() models.Role { return h.role.Store.Role() }
