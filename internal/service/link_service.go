package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"eldercare/internal/credentials"
	"eldercare/internal/errs"
	"eldercare/internal/models"
	"eldercare/internal/storage"
	"eldercare/internal/validation"
)

// Mailer delivers link codes to caregivers.
type Mailer interface {
	SendLinkCode(ctx context.Context, toEmail, elderName, code string) error
}

// LinkService issues invitation codes and links caregivers to elders
type LinkService struct {
	store    *storage.Dispatcher
	mailer   Mailer
	logger   *zap.Logger
	now      func() time.Time
	generate func(elderID int64) (string, error)
}

// NewLinkService creates a new link service. mailer may be nil when codes
// are never shared by email.
func NewLinkService(store *storage.Dispatcher, mailer Mailer, logger *zap.Logger) *LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkService{
		store:    store,
		mailer:   mailer,
		logger:   logger,
		now:      time.Now,
		generate: credentials.GenerateLinkCode,
	}
}

// IssueCode creates a new code for the elder, invalidating any previous one
func (s *LinkService) IssueCode(ctx context.Context, elderID, issuerID int64) (string, error) {
	code, err := s.generate(elderID)
	if err != nil {
		return "", fmt.Errorf("failed to generate link code: %w", err)
	}
	_, err = s.store.Mutate(ctx, storage.ReplaceLinkCode{
		Code:      code,
		ElderID:   elderID,
		CreatedBy: issuerID,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store link code: %w", err)
	}
	s.logger.Info("link code issued", zap.Int64("elder_id", elderID), zap.Int64("issuer_id", issuerID))
	return code, nil
}

// FindCode looks up a code as typed by the caregiver
func (s *LinkService) FindCode(ctx context.Context, code string) (*models.LinkCode, error) {
	if err := validation.ValidateText("code", code); err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validation.Required("code", code); err != nil {
		return nil, err
	}
	rec, err := s.store.QueryOne(ctx, storage.FindLinkCodeByCode{Code: code})
	if err != nil {
		return nil, fmt.Errorf("link code %q: %w", code, err)
	}
	lc := linkCodeFromRecord(rec)
	return &lc, nil
}

// Redeem links the caregiver to the code's elder and returns the elder id.
// Redeeming again is a no-op.
func (s *LinkService) Redeem(ctx context.Context, caregiverID int64, code string) (int64, error) {
	lc, err := s.FindCode(ctx, code)
	if err != nil {
		return 0, err
	}

	existing, err := s.store.Query(ctx, storage.FindCaregiverLink{ElderID: lc.ElderID, CaregiverID: caregiverID})
	if err != nil {
		return 0, fmt.Errorf("failed to check link: %w", err)
	}
	if len(existing) > 0 {
		return lc.ElderID, nil
	}

	_, err = s.store.Mutate(ctx, storage.InsertCaregiverLink{ElderID: lc.ElderID, CaregiverID: caregiverID})
	// A concurrent redeem of the same pair already linked it
	if err != nil && !errors.Is(err, errs.ErrConflict) {
		return 0, fmt.Errorf("failed to link caregiver: %w", err)
	}
	s.logger.Info("caregiver linked", zap.Int64("elder_id", lc.ElderID), zap.Int64("caregiver_id", caregiverID))
	return lc.ElderID, nil
}

// ListLinkedElders returns the elders a caregiver can see, newest first
func (s *LinkService) ListLinkedElders(ctx context.Context, caregiverID int64) ([]models.Elder, error) {
	records, err := s.store.Query(ctx, storage.ListEldersForCaregiver{CaregiverID: caregiverID})
	if err != nil {
		return nil, fmt.Errorf("failed to list linked elders: %w", err)
	}
	return eldersFromRecords(records), nil
}

// ShareCode issues a fresh code and emails it to a caregiver
func (s *LinkService) ShareCode(ctx context.Context, elderID, issuerID int64, toEmail string) (string, error) {
	toEmail = strings.TrimSpace(toEmail)
	if err := validation.ValidateEmail(toEmail); err != nil {
		return "", err
	}
	if s.mailer == nil {
		return "", errors.New("email delivery is not configured")
	}

	rec, err := s.store.QueryOne(ctx, storage.FindElderByID{ElderID: elderID})
	if err != nil {
		return "", fmt.Errorf("elder %d: %w", elderID, err)
	}
	elder := elderFromRecord(rec)

	code, err := s.IssueCode(ctx, elderID, issuerID)
	if err != nil {
		return "", err
	}
	if err := s.mailer.SendLinkCode(ctx, toEmail, elder.FullName, code); err != nil {
		return "", err
	}
	return code, nil
}
