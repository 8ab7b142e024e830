package models

// Elder represents a dependent person registered by a family account
type Elder struct {
	ID                  int64
	FullName            string
	Age                 *int64
	Address             *string
	MedicalConditions   *string
	Allergies           *string
	Notes               *string
	ResponsibleFamilyID int64
}

// MedicationReminder is a named medication taken at a time of day ("08:00")
type MedicationReminder struct {
	ID      int64
	ElderID int64
	Name    string
	Time    string
}
