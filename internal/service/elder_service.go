package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"eldercare/internal/errs"
	"eldercare/internal/models"
	"eldercare/internal/storage"
	"eldercare/internal/validation"
)

// ElderService manages elder profiles, their medication reminders and the
// caregivers linked to them
type ElderService struct {
	store  *storage.Dispatcher
	logger *zap.Logger
}

// NewElderService creates a new elder service
func NewElderService(store *storage.Dispatcher, logger *zap.Logger) *ElderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ElderService{store: store, logger: logger}
}

// ElderInput is the editable part of an elder profile. Blank optional text
// is stored as absent.
type ElderInput struct {
	FullName          string
	Age               *int64
	Address           *string
	MedicalConditions *string
	Allergies         *string
	Notes             *string
}

func (in ElderInput) normalize() (ElderInput, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validation.Required("full_name", in.FullName); err != nil {
		return in, err
	}
	if in.Age != nil && *in.Age <= 0 {
		in.Age = nil
	}
	in.Address = optional(in.Address)
	in.MedicalConditions = optional(in.MedicalConditions)
	in.Allergies = optional(in.Allergies)
	in.Notes = optional(in.Notes)
	for field, value := range map[string]*string{
		"address":            in.Address,
		"medical_conditions": in.MedicalConditions,
		"allergies":          in.Allergies,
		"notes":              in.Notes,
	} {
		if value == nil {
			continue
		}
		if err := validation.ValidateText(field, *value); err != nil {
			return in, err
		}
	}
	return in, nil
}

// CreateElder registers an elder under a family account
func (s *ElderService) CreateElder(ctx context.Context, familyID int64, in ElderInput) (int64, error) {
	in, err := in.normalize()
	if err != nil {
		return 0, err
	}
	res, err := s.store.Mutate(ctx, storage.InsertElder{
		FullName:            in.FullName,
		Age:                 in.Age,
		Address:             in.Address,
		MedicalConditions:   in.MedicalConditions,
		Allergies:           in.Allergies,
		Notes:               in.Notes,
		ResponsibleFamilyID: familyID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create elder: %w", err)
	}
	s.logger.Info("elder created", zap.Int64("elder_id", res.GeneratedID), zap.Int64("family_id", familyID))
	return res.GeneratedID, nil
}

// UpdateElder overwrites every editable field of an elder
func (s *ElderService) UpdateElder(ctx context.Context, elderID int64, in ElderInput) error {
	in, err := in.normalize()
	if err != nil {
		return err
	}
	res, err := s.store.Mutate(ctx, storage.UpdateElder{
		ElderID:           elderID,
		FullName:          in.FullName,
		Age:               in.Age,
		Address:           in.Address,
		MedicalConditions: in.MedicalConditions,
		Allergies:         in.Allergies,
		Notes:             in.Notes,
	})
	if err != nil {
		return fmt.Errorf("failed to update elder: %w", err)
	}
	if res.Affected == 0 {
		return fmt.Errorf("elder %d: %w", elderID, errs.ErrNotFound)
	}
	return nil
}

// ListElders returns the family's elders, newest first
func (s *ElderService) ListElders(ctx context.Context, familyID int64) ([]models.Elder, error) {
	records, err := s.store.Query(ctx, storage.ListEldersByFamily{FamilyID: familyID})
	if err != nil {
		return nil, fmt.Errorf("failed to list elders: %w", err)
	}
	return eldersFromRecords(records), nil
}

// GetElder retrieves one elder
func (s *ElderService) GetElder(ctx context.Context, elderID int64) (*models.Elder, error) {
	rec, err := s.store.QueryOne(ctx, storage.FindElderByID{ElderID: elderID})
	if err != nil {
		return nil, fmt.Errorf("elder %d: %w", elderID, err)
	}
	elder := elderFromRecord(rec)
	return &elder, nil
}

// AddReminder schedules a medication at a time of day
func (s *ElderService) AddReminder(ctx context.Context, elderID int64, name, time string) (int64, error) {
	name, time = strings.TrimSpace(name), strings.TrimSpace(time)
	if err := validation.Required("name", name); err != nil {
		return 0, err
	}
	if err := validation.Required("time", time); err != nil {
		return 0, err
	}
	res, err := s.store.Mutate(ctx, storage.InsertReminder{ElderID: elderID, Name: name, Time: time})
	if err != nil {
		return 0, fmt.Errorf("failed to add reminder: %w", err)
	}
	return res.GeneratedID, nil
}

// UpdateReminder renames or reschedules a reminder
func (s *ElderService) UpdateReminder(ctx context.Context, reminderID int64, name, time string) error {
	name, time = strings.TrimSpace(name), strings.TrimSpace(time)
	if err := validation.Required("name", name); err != nil {
		return err
	}
	if err := validation.Required("time", time); err != nil {
		return err
	}
	res, err := s.store.Mutate(ctx, storage.UpdateReminder{ReminderID: reminderID, Name: name, Time: time})
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if res.Affected == 0 {
		return fmt.Errorf("reminder %d: %w", reminderID, errs.ErrNotFound)
	}
	return nil
}

// DeleteReminder removes a reminder
func (s *ElderService) DeleteReminder(ctx context.Context, reminderID int64) error {
	res, err := s.store.Mutate(ctx, storage.DeleteReminder{ReminderID: reminderID})
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if res.Affected == 0 {
		return fmt.Errorf("reminder %d: %w", reminderID, errs.ErrNotFound)
	}
	return nil
}

// ListReminders returns an elder's reminders in time-of-day order
func (s *ElderService) ListReminders(ctx context.Context, elderID int64) ([]models.MedicationReminder, error) {
	records, err := s.store.Query(ctx, storage.ListRemindersByElder{ElderID: elderID})
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	reminders := make([]models.MedicationReminder, len(records))
	for i, r := range records {
		reminders[i] = reminderFromRecord(r)
	}
	return reminders, nil
}

// ListCaregivers returns the caregivers linked to an elder
func (s *ElderService) ListCaregivers(ctx context.Context, elderID int64) ([]models.Caregiver, error) {
	records, err := s.store.Query(ctx, storage.ListCaregiversForElder{ElderID: elderID})
	if err != nil {
		return nil, fmt.Errorf("failed to list caregivers: %w", err)
	}
	caregivers := make([]models.Caregiver, len(records))
	for i, r := range records {
		caregivers[i] = caregiverFromRecord(r)
	}
	return caregivers, nil
}
