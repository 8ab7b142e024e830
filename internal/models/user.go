package models

import "time"

// Roles a user can register with.
const (
	RoleFamily    = "family"
	RoleCaregiver = "caregiver"
)

// Caregiver subroles.
const (
	SubroleFormal   = "formal"
	SubroleInformal = "informal"
)

// User represents a registered account, either a guardian ("family") or a caregiver.
type User struct {
	ID               int64
	Name             string
	NationalID       *string
	Email            *string
	CredentialDigest string
	Role             string
	Subrole          *string // set only when Role is caregiver
	CreatedAt        time.Time
}

// Summary strips the credential digest and contact fields.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		NationalID: u.NationalID,
		Role:       u.Role,
		Subrole:    u.Subrole,
	}
}

// UserSummary is what gets stored in the session and returned from login.
type UserSummary struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	NationalID *string `json:"national_id,omitempty"`
	Role       string  `json:"role"`
	Subrole    *string `json:"subrole,omitempty"`
}

// IsFamily reports whether the user is a guardian account.
func (s *UserSummary) IsFamily() bool {
	return s.Role == RoleFamily
}

// IsCaregiver reports whether the user is a caregiver account.
func (s *UserSummary) IsCaregiver() bool {
	return s.Role == RoleCaregiver
}

// Caregiver is the projection returned when listing the caregivers linked to an elder.
type Caregiver struct {
	ID      int64
	Name    string
	Subrole *string
}
