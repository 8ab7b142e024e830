package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"eldercare/internal/errs"
	"eldercare/internal/models"
)

func registerAna(t *testing.T, s *services) *models.UserSummary {
	t.Helper()
	ana, err := s.auth.Register(context.Background(), RegisterInput{
		Name:       "Ana",
		NationalID: "111",
		Email:      ptr("ana@example.com"),
		Password:   "secret",
		Role:       models.RoleFamily,
	})
	require.NoError(t, err)
	return ana
}

func registerRenato(t *testing.T, s *services) *models.UserSummary {
	t.Helper()
	renato, err := s.auth.Register(context.Background(), RegisterInput{
		Name:       "Renato",
		NationalID: "222",
		Password:   "secret",
		Role:       models.RoleCaregiver,
		Subrole:    ptr(models.SubroleFormal),
	})
	require.NoError(t, err)
	return renato
}

func TestAuthService_Register(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *services) {
		ana := registerAna(t, s)
		require.Equal(t, "Ana", ana.Name)
		require.Equal(t, models.RoleFamily, ana.Role)
		require.Nil(t, ana.Subrole)
		require.Equal(t, "111", *ana.NationalID)

		renato := registerRenato(t, s)
		require.Greater(t, renato.ID, ana.ID)
		require.Equal(t, models.SubroleFormal, *renato.Subrole)
	})
}

func TestAuthService_RegisterRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name:    "missing name",
			input:   RegisterInput{NationalID: "9", Password: "pw", Role: models.RoleFamily},
			wantErr: errs.ErrValidation,
		},
		{
			name:    "missing national id",
			input:   RegisterInput{Name: "Bia", Password: "pw", Role: models.RoleFamily},
			wantErr: errs.ErrValidation,
		},
		{
			name:    "missing password",
			input:   RegisterInput{Name: "Bia", NationalID: "9", Role: models.RoleFamily},
			wantErr: errs.ErrValidation,
		},
		{
			name:    "caregiver without subrole",
			input:   RegisterInput{Name: "Bia", NationalID: "9", Password: "pw", Role: models.RoleCaregiver},
			wantErr: errs.ErrValidation,
		},
		{
			name:    "unknown role",
			input:   RegisterInput{Name: "Bia", NationalID: "9", Password: "pw", Role: "nurse"},
			wantErr: errs.ErrValidation,
		},
		{
			name:    "bad email",
			input:   RegisterInput{Name: "Bia", NationalID: "9", Password: "pw", Role: models.RoleFamily, Email: ptr("bia")},
			wantErr: errs.ErrValidation,
		},
		{
			name:    "national id not valid UTF-8",
			input:   RegisterInput{Name: "Bia", NationalID: "111\xff", Password: "pw", Role: models.RoleFamily},
			wantErr: errs.ErrValidation,
		},
		{
			name:    "duplicate national id",
			input:   RegisterInput{Name: "Bia", NationalID: "111", Password: "pw", Role: models.RoleFamily},
			wantErr: errs.ErrConflict,
		},
	}

	forEachBackend(t, func(t *testing.T, s *services) {
		registerAna(t, s)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := s.auth.Register(context.Background(), tt.input)
				require.ErrorIs(t, err, tt.wantErr)
			})
		}
	})
}

func TestAuthService_RegisterFamilyIgnoresBlankSubrole(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *services) {
		user, err := s.auth.Register(context.Background(), RegisterInput{
			Name:       "Bia",
			NationalID: "333",
			Password:   "pw",
			Role:       models.RoleFamily,
			Subrole:    ptr("  "),
		})
		require.NoError(t, err)
		require.Nil(t, user.Subrole)
	})
}

func TestAuthService_LoginAndSession(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *services) {
		ctx := context.Background()
		ana := registerAna(t, s)

		current, err := s.auth.CurrentUser(ctx)
		require.NoError(t, err)
		require.Nil(t, current)

		byID, err := s.auth.Login(ctx, "111", "secret")
		require.NoError(t, err)
		require.Equal(t, ana, byID)

		byName, err := s.auth.Login(ctx, " Ana ", "secret")
		require.NoError(t, err)
		require.Equal(t, ana.ID, byName.ID)

		current, err = s.auth.CurrentUser(ctx)
		require.NoError(t, err)
		require.Equal(t, ana, current)

		require.NoError(t, s.auth.Logout(ctx))
		current, err = s.auth.CurrentUser(ctx)
		require.NoError(t, err)
		require.Nil(t, current)
	})
}

func TestAuthService_LoginFailures(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *services) {
		ctx := context.Background()
		registerAna(t, s)

		_, err := s.auth.Login(ctx, "111", "wrong")
		require.ErrorIs(t, err, errs.ErrAuthentication)

		_, err = s.auth.Login(ctx, "nobody", "secret")
		require.ErrorIs(t, err, errs.ErrNotFound)

		_, err = s.auth.Login(ctx, "  ", "secret")
		require.ErrorIs(t, err, errs.ErrValidation)

		current, err := s.auth.CurrentUser(ctx)
		require.NoError(t, err)
		require.Nil(t, current)
	})
}
