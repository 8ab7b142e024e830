package models

import "time"

// CaregiverLink grants a caregiver read access to one elder
type CaregiverLink struct {
	ID          int64
	ElderID     int64
	CaregiverID int64
}

// LinkCode is the invitation a family account shares with a caregiver.
// Issuing a new code for an elder replaces the previous one.
type LinkCode struct {
	Code      string
	ElderID   int64
	CreatedBy int64
	CreatedAt time.Time
}
