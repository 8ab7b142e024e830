// Package session keeps the signed-in user between CLI invocations. The
// user summary travels inside an HS256 JWT stored under one key of a KV
// store, so a tampered or expired entry is simply treated as signed out.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"eldercare/internal/kv"
	"eldercare/internal/models"
)

// Key is the KV key holding the current session token.
const Key = "session_user"

// Store persists the signed-in user.
type Store interface {
	Set(ctx context.Context, user models.UserSummary) error
	// Get returns nil when nobody is signed in.
	Get(ctx context.Context) (*models.UserSummary, error)
	Clear(ctx context.Context) error
}

type claims struct {
	User models.UserSummary `json:"user"`
	jwt.RegisteredClaims
}

// TokenStore is a Store of signed tokens.
type TokenStore struct {
	store   kv.Store
	signKey []byte
	ttl     time.Duration
	now     func() time.Time
}

var _ Store = (*TokenStore)(nil)

// NewTokenStore signs sessions with secret; they expire after ttl.
func NewTokenStore(store kv.Store, secret string, ttl time.Duration) *TokenStore {
	return &TokenStore{store: store, signKey: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (s *TokenStore) WithClock(now func() time.Time) *TokenStore {
	s.now = now
	return s
}

// GenerateSessionID creates a new UUID for session identification
func GenerateSessionID() string {
	return uuid.New().String()
}

func (s *TokenStore) Set(ctx context.Context, user models.UserSummary) error {
	now := s.now().UTC()
	c := claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        GenerateSessionID(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.signKey)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}
	if err := s.store.Set(ctx, kv.Entry{Key: Key, Value: []byte(token)}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *TokenStore) Get(ctx context.Context) (*models.UserSummary, error) {
	raw, ok, err := s.store.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var c claims
	_, err = jwt.ParseWithClaims(string(raw), &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		// Expired or forged sessions sign the user out.
		if err := s.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &c.User, nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := kv.Delete(ctx, s.store, Key); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
