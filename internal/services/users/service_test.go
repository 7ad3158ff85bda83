package users

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/anoixa/imagehost/database/dbtest"
	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/database/repo/accounts"
	"github.com/anoixa/imagehost/database/repo/images"
	"github.com/anoixa/imagehost/internal/auth"
	"github.com/anoixa/imagehost/storage"
	cryptopackage "github.com/anoixa/imagehost/utils/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = cryptopackage.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type fixture struct {
	svc     *Service
	storage *storage.LocalStorage
	images  *images.Repository
	removed []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	provider := dbtest.NewProvider(t)
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	accountsRepo := accounts.NewRepository(provider)
	imagesRepo := images.NewRepository(provider)
	f := &fixture{storage: local, images: imagesRepo}

	remove := func(ctx context.Context, paths []string) error {
		for _, p := range paths {
			if err := local.DeleteWithContext(ctx, p); err != nil && !storage.IsNotFound(err) {
				return err
			}
		}
		f.removed = append(f.removed, paths...)
		return nil
	}
	f.svc = NewService(provider, accountsRepo, imagesRepo, auth.NewUserLookup(accountsRepo, nil, 0), remove)
	f.svc.hash = func(pw string) (string, error) { return cryptopackage.HashPasswordWithParams(pw, testParams) }
	return f
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, RegisterInput{Email: "Bob@EXAMPLE.com", Name: "bob", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "Bob@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.NotEqual(t, "password123", user.Password)

	ok, err := cryptopackage.VerifyPassword("password123", user.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.Register(ctx, RegisterInput{Email: "Bob@example.com", Name: "bobby", Password: "password123"})
	assert.ErrorIs(t, err, accounts.ErrDuplicateEmail)

	_, err = f.svc.Register(ctx, RegisterInput{Email: "other@example.com", Name: "bob", Password: "password123"})
	assert.ErrorIs(t, err, accounts.ErrDuplicateName)

	_, err = f.svc.Register(ctx, RegisterInput{Email: "short@example.com", Name: "short", Password: "1234567"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestCreateSuperuser(t *testing.T) {
	f := newFixture(t)
	user, err := f.svc.CreateSuperuser(context.Background(), RegisterInput{Email: "root@example.com", Name: "root", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, RegisterInput{Email: "bob@example.com", Name: "bob", Password: "password123"})
	require.NoError(t, err)
	oldHash := user.Password

	name := "robert"
	updated, err := f.svc.Update(ctx, user.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "robert", updated.Name)
	assert.Equal(t, oldHash, updated.Password)

	password := "new-password"
	updated, err = f.svc.Update(ctx, user.ID, UpdateInput{Password: &password})
	require.NoError(t, err)
	ok, err := cryptopackage.VerifyPassword("new-password", updated.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	short := "short"
	_, err = f.svc.Update(ctx, user.ID, UpdateInput{Password: &short})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = f.svc.Register(ctx, RegisterInput{Email: "alice@example.com", Name: "alice", Password: "password123"})
	require.NoError(t, err)
	taken := "alice@example.com"
	_, err = f.svc.Update(ctx, user.ID, UpdateInput{Email: &taken})
	assert.ErrorIs(t, err, accounts.ErrDuplicateEmail)

	_, err = f.svc.Update(ctx, 9999, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, RegisterInput{Email: "bob@example.com", Name: "bob", Password: "password123"})
	require.NoError(t, err)

	path := "uploads/images/1/a_original.png"
	require.NoError(t, f.storage.SaveWithContext(ctx, path, bytes.NewReader([]byte("x"))))
	img := &models.Image{UserID: user.ID, Path: path, Name: "a.png", Width: 1, Height: 1, Format: "PNG", Size: 1}
	require.NoError(t, f.images.Create(ctx, img))

	require.NoError(t, f.svc.Delete(ctx, user.ID))
	assert.Equal(t, []string{path}, f.removed)

	_, err = f.storage.GetWithContext(ctx, path)
	assert.True(t, storage.IsNotFound(err))

	_, err = f.svc.Get(ctx, user.ID)
	assert.ErrorIs(t, err, accounts.ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, user.ID), accounts.ErrNotFound)
}

func TestDelete_RollsBackOnStorageFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, RegisterInput{Email: "bob@example.com", Name: "bob", Password: "password123"})
	require.NoError(t, err)
	img := &models.Image{UserID: user.ID, Path: "uploads/images/1/a_original.png", Name: "a.png", Width: 1, Height: 1, Format: "PNG", Size: 1}
	require.NoError(t, f.images.Create(ctx, img))

	boom := errors.New("storage offline")
	f.svc.remove = func(context.Context, []string) error { return boom }

	assert.ErrorIs(t, f.svc.Delete(ctx, user.ID), boom)

	_, err = f.svc.Get(ctx, user.ID)
	require.NoError(t, err)
	list, err := f.images.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
