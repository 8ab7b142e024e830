package validation

import (
	"errors"
	"strings"
	"testing"

	"eldercare/internal/errs"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "John Doe",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "John",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   "J",
			wantErr: true,
		},
		{
			name:    "name with hyphen",
			input:   "Mary-Jane",
			wantErr: false,
		},
		{
			name:    "name with apostrophe",
			input:   "O'Brien",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "short password",
			password: "1234",
			wantErr:  false,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "password over bcrypt limit",
			password: strings.Repeat("a", 73),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRole(t *testing.T) {
	formal, nurse, empty := "formal", "nurse", ""

	tests := []struct {
		name    string
		role    string
		subrole *string
		field   string
	}{
		{name: "family", role: "family"},
		{name: "formal caregiver", role: "caregiver", subrole: &formal},
		{name: "missing role", role: "", field: "role"},
		{name: "unknown role", role: "admin", field: "role"},
		{name: "caregiver without subrole", role: "caregiver", field: "subrole"},
		{name: "caregiver with empty subrole", role: "caregiver", subrole: &empty, field: "subrole"},
		{name: "unknown subrole", role: "caregiver", subrole: &nurse, field: "subrole"},
		{name: "family with subrole", role: "family", subrole: &formal, field: "subrole"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRole(tt.role, tt.subrole)
			if tt.field == "" {
				if err != nil {
					t.Errorf("ValidateRole() error = %v, want nil", err)
				}
				return
			}
			var ve errs.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("ValidateRole() error = %v, want field %q", err, tt.field)
			}
			if !errors.Is(err, errs.ErrValidation) {
				t.Errorf("ValidateRole() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRequired(t *testing.T) {
	if err := Required("time", "  "); err == nil {
		t.Error("Required() accepted blank value")
	}
	if err := Required("time", "08:00"); err != nil {
		t.Errorf("Required() error = %v", err)
	}
	if err := ValidateNationalID(""); err == nil {
		t.Error("ValidateNationalID() accepted empty id")
	}
}

func TestValidateText(t *testing.T) {
	if err := ValidateText("notes", "café às 8h"); err != nil {
		t.Errorf("ValidateText() error = %v", err)
	}
	for _, value := range []string{"111\xff", "caf\xe9"} {
		err := ValidateText("national_id", value)
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("ValidateText(%q) error = %v, want validation error", value, err)
		}
	}
	if err := Required("name", "caf\xe9"); err == nil {
		t.Error("Required() accepted invalid UTF-8")
	}
	if err := ValidateNationalID("111\xff"); err == nil {
		t.Error("ValidateNationalID() accepted invalid UTF-8")
	}
}
