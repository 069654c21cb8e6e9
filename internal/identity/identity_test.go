package identity_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuanvumaihuynh/storefront/internal/auth"
	"github.com/tuanvumaihuynh/storefront/internal/identity"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/storage/memstore"
)

func newProvider() identity.Provider {
	return identity.NewProvider(memstore.New(), auth.NewPasswordHasher(bcrypt.MinCost))
}

func TestProvider(t *testing.T) {
	ctx := context.Background()
	p := newProvider()

	user, err := p.CreateUser(ctx, model.User{
		Name:     "Alice",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     model.RoleCustomer,
	}, "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	t.Run("Should find user by username and id", func(t *testing.T) {
		found, err := p.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		found, err = p.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)

		_, err = p.FindByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})

	t.Run("Should check password", func(t *testing.T) {
		assert.True(t, p.CheckPassword(ctx, user, "secret1"))
		assert.False(t, p.CheckPassword(ctx, user, "secret2"))
		assert.False(t, p.CheckPassword(ctx, model.User{}, ""))
	})

	t.Run("Should reject duplicate username", func(t *testing.T) {
		_, err := p.CreateUser(ctx, model.User{Name: "A", Username: "alice", Email: "a2@example.com", Role: model.RoleCustomer}, "secret1")
		assert.ErrorIs(t, err, identity.ErrDuplicateUser)
		assert.ErrorIs(t, err, identity.ErrRejected)
	})

	t.Run("Should add role idempotently", func(t *testing.T) {
		require.NoError(t, p.AddToRole(ctx, user, model.RoleAdmin))
		require.NoError(t, p.AddToRole(ctx, user, model.RoleAdmin))

		roles, err := p.Roles(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []model.Role{model.RoleAdmin}, roles)
	})

	t.Run("Should reject unknown role", func(t *testing.T) {
		err := p.AddToRole(ctx, user, model.Role("Root"))
		assert.ErrorIs(t, err, identity.ErrRejected)
	})
}
