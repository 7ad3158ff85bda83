package accounts

import (
	"context"
	"testing"

	"github.com/anoixa/imagehost/database/dbtest"
	"github.com/anoixa/imagehost/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()

	user := &models.User{Email: "alice@EXAMPLE.com", Name: "alice", Password: "hash", IsActive: true}
	require.NoError(t, repo.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.CreateUser(ctx, &models.User{Email: "alice@example.com", Name: "other", Password: "hash"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("duplicate name", func(t *testing.T) {
		err := repo.CreateUser(ctx, &models.User{Email: "other@example.com", Name: "alice", Password: "hash"})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("invalid email", func(t *testing.T) {
		err := repo.CreateUser(ctx, &models.User{Email: "nope", Name: "bob", Password: "hash"})
		assert.Error(t, err)
	})
}

func TestGetUser(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	ctx := context.Background()
	user := dbtest.CreateUser(t, provider, "carol")

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Name)

	got, err = repo.GetUserByEmail(ctx, "carol@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetUserByID(ctx, user.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	ctx := context.Background()
	dave := dbtest.CreateUser(t, provider, "dave")
	dbtest.CreateUser(t, provider, "erin")

	dave.Name = "david"
	require.NoError(t, repo.UpdateUser(ctx, dave))
	got, err := repo.GetUserByID(ctx, dave.ID)
	require.NoError(t, err)
	assert.Equal(t, "david", got.Name)

	dave.Email = "erin@example.com"
	assert.ErrorIs(t, repo.UpdateUser(ctx, dave), ErrDuplicateEmail)

	ghost := &models.User{ID: 999, Email: "ghost@example.com", Name: "ghost"}
	assert.ErrorIs(t, repo.UpdateUser(ctx, ghost), ErrNotFound)
}

func TestDeleteUserWithTx(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	user := dbtest.CreateUser(t, provider, "frank")

	require.NoError(t, repo.DeleteUserWithTx(provider.DB(), user.ID))
	_, err := repo.GetUserByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteUserWithTx(provider.DB(), user.ID), ErrNotFound)
}
