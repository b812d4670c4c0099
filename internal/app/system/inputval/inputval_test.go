package inputval

import (
	"strings"
	"testing"

	"github.com/dalemusser/liderplan/internal/app/system/apperr"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"test@example.com", true},
		{"name.surname@company.co.uk", true},
		{"a@b.co", true},
		{"", false},
		{"testexample.com", false},
		{"test@@example.com", false},
		{"@example.com", false},
		{"test@example", false},
		{"test@example.", false},
		{"test@.com", false},
		{"Ana <ana@example.com>", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

type sample struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,appemail"`
	Role      string `json:"role" validate:"omitempty,role"`
	StartDate string `json:"startDate" validate:"required,ymd"`
	EndDate   string `json:"endDate" validate:"required,ymd"`
	Pct       int    `json:"completionPercentage" validate:"min=0,max=100"`
}

func TestValidate_OK(t *testing.T) {
	s := sample{Name: "x", Email: "a@b.co", Role: "leader", StartDate: "2025-01-01", EndDate: "2025-01-01", Pct: 100}
	if err := Validate(s); err != nil {
		t.Fatalf("Validate returned %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	s := sample{Role: "OWNER", StartDate: "2025-13-01", EndDate: "2025-01-01", Pct: 101}
	err := Validate(s)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	ae := err.(*apperr.Error)
	for _, f := range []string{"name", "role", "startDate", "completionPercentage"} {
		if _, ok := ae.Fields[f]; !ok {
			t.Errorf("expected field error for %q, got %v", f, ae.Fields)
		}
	}
}

type passwordForm struct {
	Password string `json:"password" validate:"required,password"`
}

func TestValidate_PasswordTag(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		ok   bool
	}{
		{"six characters", "secret", true},
		{"72 bytes", strings.Repeat("x", 72), true},
		{"too short", "abc", false},
		{"73 bytes", strings.Repeat("x", 73), false},
		{"multibyte over 72 bytes", strings.Repeat("é", 40), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(passwordForm{Password: tt.pw})
			if tt.ok {
				if err != nil {
					t.Fatalf("Validate returned %v", err)
				}
				return
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if msg := err.(*apperr.Error).Fields["password"]; !strings.Contains(msg, "72 bytes") {
				t.Errorf("password message = %q", msg)
			}
		})
	}
}
