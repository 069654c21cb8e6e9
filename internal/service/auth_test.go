package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/service"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	params := validUserParams()
	params.Role = model.RoleAdmin
	user, err := env.users.CreateUser(ctx, params)
	require.NoError(t, err)

	t.Run("Should issue tokens for valid credentials", func(t *testing.T) {
		before := time.Now()

		res, err := env.auth.Login(ctx, service.LoginParams{Username: "alice", Password: "secret1"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.NotEmpty(t, res.RefreshToken)
		assert.Equal(t, []model.Role{model.RoleAdmin}, res.Roles)
		assert.WithinDuration(t, before.Add(time.Hour), res.ExpiresAt, time.Minute)

		claims, err := env.auth.Authenticate(ctx, res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject)
		assert.True(t, claims.HasRole(model.RoleAdmin))
	})

	t.Run("Should not tell a wrong password from an unknown user", func(t *testing.T) {
		_, wrongPassword := env.auth.Login(ctx, service.LoginParams{Username: "alice", Password: "wrong"})
		_, unknownUser := env.auth.Login(ctx, service.LoginParams{Username: "ghost", Password: "x"})

		assert.ErrorIs(t, wrongPassword, apperr.InvalidCredentialsErr)
		assert.ErrorIs(t, unknownUser, apperr.InvalidCredentialsErr)
		assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	})

	t.Run("Should issue a new refresh token on every login", func(t *testing.T) {
		first, err := env.auth.Login(ctx, service.LoginParams{Username: "alice", Password: "secret1"})
		require.NoError(t, err)
		second, err := env.auth.Login(ctx, service.LoginParams{Username: "alice", Password: "secret1"})
		require.NoError(t, err)

		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, apperr.MissingTokenErr)

	_, err = env.auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, apperr.InvalidTokenErr)
}
