// internal/app/system/inputval/inputval.go
package inputval

import (
	"net/mail"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PhoneDigits is the exact length of a farmer or coordinator phone number.
const PhoneDigits = 10

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return IsValidHTTPURL(fl.Field().String())
		})
	})
	return v
}

// FieldError is one failed rule, keyed by the JSON field name.
type FieldError struct {
	Field   string
	Message string
}

// Result collects every violation of one input.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Add appends a violation found outside the struct tags.
func (r *Result) Add(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

// Err returns nil when the input is valid, otherwise an apierr Validation
// error listing every violation.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	vs := make([]apierr.Violation, len(r.Errors))
	for i, e := range r.Errors {
		vs[i] = apierr.Violation{Field: e.Field, Message: e.Message}
	}
	return apierr.Invalid(vs)
}

// Validate checks s (a struct or pointer to struct) against its `validate`
// tags. Messages use the `label` tag, falling back to the field name.
func Validate(s any) *Result {
	res := &Result{}
	err := engine().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Add("", "Invalid input.")
		return res
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, fe := range verrs {
		label := fe.StructField()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if l := sf.Tag.Get("label"); l != "" {
				label = l
			}
		}
		res.Add(fe.Field(), message(label, fe))
	}
	return res
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "min":
		if fe.Kind() == reflect.String {
			return label + " must be at least " + fe.Param() + " characters."
		}
		return label + " must be at least " + fe.Param() + "."
	case "max":
		if fe.Kind() == reflect.String {
			return label + " must be at most " + fe.Param() + " characters."
		}
		return label + " must be at most " + fe.Param() + "."
	case "gt":
		return label + " must be greater than " + fe.Param() + "."
	case "lte":
		return label + " must be at most " + fe.Param() + "."
	case "emailaddr":
		return "A valid email address is required."
	case "phone":
		return label + " must be exactly 10 digits."
	case "objectid":
		return label + " must be a valid id."
	case "httpurl":
		return label + " must be an http or https URL."
	default:
		return label + " is invalid."
	}
}

// IsValidEmail accepts a bare addr-spec (no display name) with a non-empty
// local part and domain and no stray dots.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// IsValidPhone reports whether s is exactly PhoneDigits ASCII digits.
func IsValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != PhoneDigits {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidHTTPURL reports whether s is an absolute http(s) URL with a host.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
