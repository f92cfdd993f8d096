// Package apierr is the error taxonomy of the JSON API. Handlers return or
// write *Error values; anything else is reported as an internal failure.
package apierr

import (
	"errors"
	"net/http"

	"github.com/dalemusser/agreeverse/internal/app/system/respond"
)

// Kind classifies an API error and fixes its HTTP status.
type Kind int

const (
	Internal Kind = iota
	Validation
	Conflict
	Unauthenticated
	InvalidToken
	IdentityNotFound
	NotFound
	InvalidCredentials
	Forbidden
	RateLimited
)

var kindNames = map[Kind]string{
	Internal:           "InternalFailure",
	Validation:         "ValidationError",
	Conflict:           "Conflict",
	Unauthenticated:    "Unauthenticated",
	InvalidToken:       "InvalidToken",
	IdentityNotFound:   "IdentityNotFound",
	NotFound:           "NotFound",
	InvalidCredentials: "InvalidCredentials",
	Forbidden:          "Forbidden",
	RateLimited:        "RateLimited",
}

func (k Kind) String() string { return kindNames[k] }

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case Validation, InvalidCredentials:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Unauthenticated, InvalidToken:
		return http.StatusUnauthorized
	case IdentityNotFound, NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Violation is one failed input rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an expected, user-visible failure.
type Error struct {
	Kind       Kind
	Message    string
	Violations []Violation
	Err        error // underlying cause, logged but never rendered
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of kind k.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Wrap builds an internal Error carrying cause.
func Wrap(cause error, msg string) *Error {
	return &Error{Kind: Internal, Message: msg, Err: cause}
}

// Invalid builds a Validation error listing every violation.
func Invalid(v []Violation) *Error {
	return &Error{Kind: Validation, Message: "Validation failed", Violations: v}
}

// KindOf returns the kind of err, Internal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

type body struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Errors  []Violation `json:"errors,omitempty"`
}

// Write renders err as the standard failure body. Errors that are not
// *Error render as a generic internal failure so causes never leak.
func Write(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) || e.Kind == Internal {
		respond.JSON(w, http.StatusInternalServerError, body{Message: "Internal server error"})
		return
	}
	respond.JSON(w, e.Kind.Status(), body{Message: e.Message, Errors: e.Violations})
}
