// internal/app/features/accounts/signup.go
package accounts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	identitystore "github.com/dalemusser/agreeverse/internal/app/store/identities"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/inputval"
	"github.com/dalemusser/agreeverse/internal/app/system/normalize"
	"github.com/dalemusser/agreeverse/internal/app/system/passwords"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signup                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// Signup validates the body, rejects emails held by any role and phones held
// in this role, then stores the new identity. It does not sign the caller in.
func (h *Handler[T, P]) Signup(w http.ResponseWriter, r *http.Request) {
	role := h.roleName()

	var in SignupInput
	if err := respond.Decode(w, r, &in, maxBody); err != nil {
		h.Metrics.Auth(string(role), "signup", "invalid")
		apierr.Write(w, apierr.New(apierr.Validation, "Invalid request body"))
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalize.Email(in.Email)
	in.Phone = normalize.PhoneInput(in.Phone)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res := inputval.Validate(&in)
	h.checkPhone(in.Phone, res)

	base := models.Identity{Name: in.Name, Email: in.Email}
	rec, err := h.role.Build(ctx, in, base, res)
	if err != nil {
		h.fail(w, "signup", err)
		return
	}
	if res.HasErrors() {
		h.Metrics.Auth(string(role), "signup", "invalid")
		apierr.Write(w, res.Err())
		return
	}

	if err := h.checkUnique(ctx, in); err != nil {
		h.fail(w, "signup", err)
		return
	}

	hash, err := passwords.Hash(in.Password)
	if err != nil {
		h.fail(w, "signup", apierr.Wrap(err, "hash password"))
		return
	}
	rec.Base().PasswordHash = &hash

	if err := h.role.Store.Create(ctx, rec); err != nil {
		h.fail(w, "signup", conflictOr(role, err))
		return
	}
	if h.role.Created != nil {
		if err := h.role.Created(ctx, rec); err != nil {
			id := rec.Base().ID
			if _, derr := h.role.Store.Delete(ctx, id); derr != nil {
				h.Log.Error("signup: remove unlinked identity failed",
					zap.String("role", string(role)),
					zap.String("id", id.Hex()),
					zap.Error(derr))
			}
			h.fail(w, "signup", apierr.Wrap(err, "link new "+string(role)))
			return
		}
	}

	h.Audit.SignupSucceeded(ctx, r, role, rec.Base().ID)
	h.Metrics.Auth(string(role), "signup", "success")
	respond.OK(w, http.StatusCreated, "New "+string(role)+" created successfully", nil)
}

func (h *Handler[T, P]) checkPhone(phone string, res *inputval.Result) {
	switch h.role.Phone {
	case PhoneRequired:
		if phone == "" {
			res.Add("phone", "Phone is required.")
		} else if !inputval.IsValidPhone(phone) {
			res.Add("phone", "Phone must be exactly 10 digits.")
		}
	case PhoneOptional:
		if phone != "" && !inputval.IsValidPhone(phone) {
			res.Add("phone", "Phone must be exactly 10 digits.")
		}
	}
}

// checkUnique enforces one identity per email across every role and one
// identity per phone within this role.
func (h *Handler[T, P]) checkUnique(ctx context.Context, in SignupInput) error {
	if holder, found, err := h.Directory.Locate(ctx, in.Email); err != nil {
		return apierr.Wrap(err, "locate email")
	} else if found {
		return apierr.New(apierr.Conflict, "User already exists in "+holder.Title()+" collection")
	}
	if h.role.Phone != PhoneIgnored && in.Phone != "" {
		taken, err := h.role.Store.PhoneExists(ctx, in.Phone, nil)
		if err != nil {
			return apierr.Wrap(err, "check phone")
		}
		if taken {
			return apierr.New(apierr.Conflict, h.roleName().Title()+" already exists with this phone number")
		}
	}
	return nil
}

// conflictOr maps unique-index violations that slipped past checkUnique.
func conflictOr(role models.Role, err error) error {
	switch {
	case errors.Is(err, identitystore.ErrDuplicateEmail):
		return apierr.New(apierr.Conflict, "User already exists in "+role.Title()+" collection")
	case errors.Is(err, identitystore.ErrDuplicatePhone):
		return apierr.New(apierr.Conflict, role.Title()+" already exists with this phone number")
	}
	return apierr.Wrap(err, "create identity")
}

func (h *Handler[T, P]) fail(w http.ResponseWriter, op string, err error) {
	role := string(h.roleName())
	kind := apierr.KindOf(err)
	switch kind {
	case apierr.Internal:
		h.Log.Error(op+" failed", zap.String("role", role), zap.Error(err))
		h.Metrics.Auth(role, op, "error")
	case apierr.Conflict:
		h.Metrics.Auth(role, op, "conflict")
	default:
		h.Metrics.Auth(role, op, "invalid")
	}
	apierr.Write(w, err)
}
