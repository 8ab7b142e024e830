// Package validation holds the field checks run by the services before any
// write reaches storage.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"eldercare/internal/errs"
	"eldercare/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// maxPasswordBytes is the bcrypt input limit
const maxPasswordBytes = 72

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errs.Invalid("email", "email is required")
	}
	if !emailRegex.MatchString(email) {
		return errs.Invalid("email", "invalid email format")
	}
	return nil
}

// ValidatePassword checks if a password can be hashed
func ValidatePassword(password string) error {
	if password == "" {
		return errs.Invalid("password", "password is required")
	}
	if len(password) > maxPasswordBytes {
		return errs.Invalid("password", "password must be at most 72 bytes")
	}
	return nil
}

// ValidateText rejects text that is not valid UTF-8, which no backend can
// store and compare byte for byte
func ValidateText(field, value string) error {
	if !utf8.ValidString(value) {
		return errs.Invalid(field, field+" must be valid UTF-8")
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	if err := ValidateText("name", name); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.Invalid("name", "name is required")
	}
	if len(name) < 2 {
		return errs.Invalid("name", "name must be at least 2 characters")
	}
	return nil
}

// ValidateNationalID checks the national identity document number
func ValidateNationalID(nationalID string) error {
	if err := ValidateText("national_id", nationalID); err != nil {
		return err
	}
	if strings.TrimSpace(nationalID) == "" {
		return errs.Invalid("national_id", "national id is required")
	}
	return nil
}

// ValidateRole checks the role and its subrole together
func ValidateRole(role string, subrole *string) error {
	switch role {
	case "":
		return errs.Invalid("role", "role is required")
	case models.RoleFamily:
		if subrole != nil {
			return errs.Invalid("subrole", "family accounts have no subrole")
		}
	case models.RoleCaregiver:
		if subrole == nil || *subrole == "" {
			return errs.Invalid("subrole", "caregivers must choose formal or informal")
		}
		if *subrole != models.SubroleFormal && *subrole != models.SubroleInformal {
			return errs.Invalid("subrole", "subrole must be formal or informal")
		}
	default:
		return errs.Invalid("role", "role must be family or caregiver")
	}
	return nil
}

// Required checks that a free-text field is present and readable
func Required(field, value string) error {
	if err := ValidateText(field, value); err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return errs.Invalid(field, field+" is required")
	}
	return nil
}
