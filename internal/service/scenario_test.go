package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"eldercare/internal/models"
)

func TestScenario_FamilyInvitesCaregiver(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		_, err := s.auth.Register(ctx, RegisterInput{Name: "Ana", NationalID: "111", Password: "secret1", Role: models.RoleFamily})
		require.NoError(t, err)
		ana, err := s.auth.Login(ctx, "111", "secret1")
		require.NoError(t, err)
		require.Equal(t, models.RoleFamily, ana.Role)

		carlos, err := s.elder.CreateElder(ctx, ana.ID, ElderInput{FullName: "Sr. Carlos"})
		require.NoError(t, err)
		elders, err := s.elder.ListElders(ctx, ana.ID)
		require.NoError(t, err)
		require.Len(t, elders, 1)
		require.Equal(t, "Sr. Carlos", elders[0].FullName)
		require.Nil(t, elders[0].Age)

		code, err := s.link.IssueCode(ctx, carlos, ana.ID)
		require.NoError(t, err)

		renato, err := s.auth.Register(ctx, RegisterInput{
			Name:       "Renato",
			NationalID: "222",
			Password:   "secret2",
			Role:       models.RoleCaregiver,
			Subrole:    ptr(models.SubroleInformal),
		})
		require.NoError(t, err)

		elderID, err := s.link.Redeem(ctx, renato.ID, code)
		require.NoError(t, err)
		require.Equal(t, carlos, elderID)

		linked, err := s.link.ListLinkedElders(ctx, renato.ID)
		require.NoError(t, err)
		require.Len(t, linked, 1)
		require.Equal(t, carlos, linked[0].ID)
	})
}
