package service

import (
	"eldercare/internal/models"
	"eldercare/internal/storage"
)

func userFromRecord(r storage.Record) *models.User {
	return &models.User{
		ID:               r.Int64("id"),
		Name:             r.String("name"),
		NationalID:       r.NullString("national_id"),
		Email:            r.NullString("email"),
		CredentialDigest: r.String("credential_digest"),
		Role:             r.String("role"),
		Subrole:          r.NullString("subrole"),
		CreatedAt:        r.Time("created_at"),
	}
}

func summaryFromRecord(r storage.Record) *models.UserSummary {
	return &models.UserSummary{
		ID:         r.Int64("id"),
		Name:       r.String("name"),
		NationalID: r.NullString("national_id"),
		Role:       r.String("role"),
		Subrole:    r.NullString("subrole"),
	}
}

func elderFromRecord(r storage.Record) models.Elder {
	return models.Elder{
		ID:                  r.Int64("id"),
		FullName:            r.String("full_name"),
		Age:                 r.NullInt64("age"),
		Address:             r.NullString("address"),
		MedicalConditions:   r.NullString("medical_conditions"),
		Allergies:           r.NullString("allergies"),
		Notes:               r.NullString("notes"),
		ResponsibleFamilyID: r.Int64("responsible_family_id"),
	}
}

func eldersFromRecords(records []storage.Record) []models.Elder {
	elders := make([]models.Elder, len(records))
	for i, r := range records {
		elders[i] = elderFromRecord(r)
	}
	return elders
}

func reminderFromRecord(r storage.Record) models.MedicationReminder {
	return models.MedicationReminder{
		ID:      r.Int64("id"),
		ElderID: r.Int64("elder_id"),
		Name:    r.String("name"),
		Time:    r.String("time"),
	}
}

func caregiverFromRecord(r storage.Record) models.Caregiver {
	return models.Caregiver{
		ID:      r.Int64("id"),
		Name:    r.String("name"),
		Subrole: r.NullString("subrole"),
	}
}

func linkCodeFromRecord(r storage.Record) models.LinkCode {
	return models.LinkCode{
		Code:      r.String("code"),
		ElderID:   r.Int64("elder_id"),
		CreatedBy: r.Int64("created_by"),
		CreatedAt: r.Time("created_at"),
	}
}
