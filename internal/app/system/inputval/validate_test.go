package inputval

import (
	"testing"

	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
)

type signupInput struct {
	Name     string `json:"name" validate:"required" label:"Name"`
	Email    string `json:"email" validate:"required,emailaddr" label:"Email"`
	Phone    string `json:"phone" validate:"omitempty,phone" label:"Phone"`
	Password string `json:"password" validate:"required,min=6" label:"Password"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		input     signupInput
		wantCount int
		wantFirst string
	}{
		{
			name:  "valid",
			input: signupInput{Name: "A", Email: "a@x.com", Phone: "9999999999", Password: "secret1"},
		},
		{
			name:      "short password",
			input:     signupInput{Name: "A", Email: "a@x.com", Password: "abc"},
			wantCount: 1,
			wantFirst: "Password must be at least 6 characters.",
		},
		{
			name:      "bad email",
			input:     signupInput{Name: "A", Email: "nope", Password: "secret1"},
			wantCount: 1,
			wantFirst: "A valid email address is required.",
		},
		{
			name:      "collects every violation",
			input:     signupInput{Phone: "123", Password: "x"},
			wantCount: 4,
			wantFirst: "Name is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.input)
			if len(res.Errors) != tt.wantCount {
				t.Fatalf("errors = %v, want %d", res.Errors, tt.wantCount)
			}
			if tt.wantCount > 0 && res.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", res.First(), tt.wantFirst)
			}
		})
	}
}

func TestValidate_FieldUsesJSONName(t *testing.T) {
	res := Validate(&signupInput{Name: "A", Email: "a@x.com", Password: "secret1", Phone: "12"})
	if len(res.Errors) != 1 || res.Errors[0].Field != "phone" {
		t.Fatalf("errors = %v, want one on field phone", res.Errors)
	}
}

func TestResult_Err(t *testing.T) {
	if err := (&Result{}).Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	r := &Result{}
	r.Add("coordinatorId", "Coordinator not found.")
	if !apierr.Is(r.Err(), apierr.Validation) {
		t.Errorf("expected Validation error, got %v", r.Err())
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{}
	r.Add("a", "Error 1")
	r.Add("b", "Error 2")
	if got := r.All(); got != "Error 1; Error 2" {
		t.Errorf("All() = %q", got)
	}
}
