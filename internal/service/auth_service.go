package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"eldercare/internal/errs"
	"eldercare/internal/models"
	"eldercare/internal/session"
	"eldercare/internal/storage"
	"eldercare/internal/validation"
)

// Hasher turns credentials into digests and checks them.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// AuthService handles registration, login and the current session
type AuthService struct {
	store    *storage.Dispatcher
	hasher   Hasher
	sessions session.Store
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(store *storage.Dispatcher, hasher Hasher, sessions session.Store, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:    store,
		hasher:   hasher,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterInput carries the registration form. Subrole is required for
// caregivers and must be nil for family accounts.
type RegisterInput struct {
	Name       string
	NationalID string
	Email      *string
	Password   string
	Role       string
	Subrole    *string
}

// Register creates a new account and returns its summary
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.UserSummary, error) {
	name := strings.TrimSpace(in.Name)
	nationalID := strings.TrimSpace(in.NationalID)
	subrole := optional(in.Subrole)

	// Validate inputs
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateNationalID(nationalID); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateRole(in.Role, subrole); err != nil {
		return nil, err
	}
	email := optional(in.Email)
	if email != nil {
		if err := validation.ValidateEmail(*email); err != nil {
			return nil, err
		}
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.store.Mutate(ctx, storage.InsertUser{
		Name:             name,
		NationalID:       &nationalID,
		Email:            email,
		CredentialDigest: digest,
		Role:             in.Role,
		Subrole:          subrole,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	rec, err := s.store.QueryOne(ctx, storage.FindUserSummaryByNationalID{NationalID: nationalID})
	if err != nil {
		return nil, fmt.Errorf("failed to load new user: %w", err)
	}
	summary := summaryFromRecord(rec)
	s.logger.Info("user registered", zap.Int64("user_id", summary.ID), zap.String("role", summary.Role))
	return summary, nil
}

// Login authenticates by national id or name and opens a session
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.UserSummary, error) {
	identifier = strings.TrimSpace(identifier)
	if err := validation.Required("identifier", identifier); err != nil {
		return nil, err
	}

	rec, err := s.store.QueryOne(ctx, storage.FindUserByIdentifier{Identifier: identifier})
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("user %q: %w", identifier, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	user := userFromRecord(rec)

	if !s.hasher.Verify(password, user.CredentialDigest) {
		s.logger.Info("login rejected", zap.Int64("user_id", user.ID))
		return nil, errs.ErrAuthentication
	}

	summary := user.Summary()
	if err := s.sessions.Set(ctx, summary); err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return &summary, nil
}

// Logout clears the current session
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// CurrentUser returns the signed-in user, or nil
func (s *AuthService) CurrentUser(ctx context.Context) (*models.UserSummary, error) {
	return s.sessions.Get(ctx)
}

// optional maps blank optional text to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
