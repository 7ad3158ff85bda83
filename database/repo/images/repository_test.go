package images

import (
	"context"
	"errors"
	"testing"

	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/database/dbtest"
	"github.com/anoixa/imagehost/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedImage(t *testing.T, repo *Repository, userID uint, path string) *models.Image {
	t.Helper()
	img := &models.Image{
		UserID: userID,
		Path:   path,
		Name:   "photo.png",
		Width:  100,
		Height: 50,
		Format: "PNG",
		Size:   2048,
	}
	require.NoError(t, repo.Create(context.Background(), img))
	return img
}

func seedResized(t *testing.T, repo *ResizedRepository, img *models.Image, path string) *models.Resized {
	t.Helper()
	r := &models.Resized{
		UserID:  img.UserID,
		ImageID: &img.ID,
		Path:    path,
		Quality: 75,
		Width:   50,
		Height:  25,
		Size:    512,
	}
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}

func newRepos(t *testing.T) (database.Provider, *Repository, *ResizedRepository) {
	provider := dbtest.NewProvider(t)
	return provider, NewRepository(provider), NewResizedRepository(provider)
}

func TestCreate_ValidatesInvariants(t *testing.T) {
	provider, repo, resizedRepo := newRepos(t)
	owner := dbtest.CreateUser(t, provider, "owner")

	err := repo.Create(context.Background(), &models.Image{UserID: owner.ID, Path: "a.png", Format: "PNG", Width: 0, Height: 1, Size: 1})
	assert.Error(t, err)

	img := seedImage(t, repo, owner.ID, "a.png")
	err = resizedRepo.Create(context.Background(), &models.Resized{UserID: owner.ID, ImageID: &img.ID, Path: "b.png", Quality: 101, Width: 1, Height: 1, Size: 1})
	assert.Error(t, err)
}

func TestOwnershipScoping(t *testing.T) {
	provider, repo, resizedRepo := newRepos(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, provider, "alice")
	bob := dbtest.CreateUser(t, provider, "bob")

	img := seedImage(t, repo, alice.ID, "alice.png")
	seedImage(t, repo, bob.ID, "bob.png")
	resized := seedResized(t, resizedRepo, img, "alice_small.png")

	list, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, img.ID, list[0].ID)

	got, err := repo.GetByIDAndUser(ctx, img.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.User.Name)

	_, err = repo.GetByIDAndUser(ctx, img.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = resizedRepo.GetByIDAndUser(ctx, resized.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	r, err := resizedRepo.GetByIDAndUser(ctx, resized.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, r.Image)
	assert.Equal(t, "photo.png", r.ParentName())

	resizedList, err := resizedRepo.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, resizedList)

	_, err = repo.UpdateDescription(ctx, img.ID, bob.ID, "hijack")
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := repo.UpdateDescription(ctx, img.ID, alice.ID, "sunset")
	require.NoError(t, err)
	assert.Equal(t, "sunset", updated.Description)
}

func TestDeleteCascade(t *testing.T) {
	provider, repo, resizedRepo := newRepos(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, provider, "owner")

	img := seedImage(t, repo, owner.ID, "orig.png")
	seedResized(t, resizedRepo, img, "small1.png")
	seedResized(t, resizedRepo, img, "small2.png")

	var removed [][]string
	remover := func(_ context.Context, paths []string) error {
		removed = append(removed, paths)
		return nil
	}

	require.NoError(t, repo.DeleteCascade(ctx, img.ID, owner.ID, remover))
	require.Len(t, removed, 1)
	assert.Equal(t, []string{"small1.png", "small2.png", "orig.png"}, removed[0])

	var count int64
	provider.DB().Model(&models.Resized{}).Count(&count)
	assert.Zero(t, count)
	provider.DB().Model(&models.Image{}).Count(&count)
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.DeleteCascade(ctx, img.ID, owner.ID, remover), ErrNotFound)
}

func TestDeleteCascade_LeavesOtherImagesAlone(t *testing.T) {
	provider, repo, resizedRepo := newRepos(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, provider, "owner")
	other := dbtest.CreateUser(t, provider, "other")

	victim := seedImage(t, repo, owner.ID, "victim.png")
	seedResized(t, resizedRepo, victim, "victim_small.png")
	kept := seedImage(t, repo, owner.ID, "kept.png")
	keptSmall := seedResized(t, resizedRepo, kept, "kept_small.png")
	foreign := seedImage(t, repo, other.ID, "foreign.png")
	foreignSmall := []*models.Resized{
		seedResized(t, resizedRepo, foreign, "foreign_small1.png"),
		seedResized(t, resizedRepo, foreign, "foreign_small2.png"),
	}

	var removed []string
	require.NoError(t, repo.DeleteCascade(ctx, victim.ID, owner.ID, func(_ context.Context, paths []string) error {
		removed = append(removed, paths...)
		return nil
	}))
	assert.ElementsMatch(t, []string{"victim_small.png", "victim.png"}, removed)

	_, err := repo.GetByIDAndUser(ctx, kept.ID, owner.ID)
	assert.NoError(t, err)
	_, err = resizedRepo.GetByIDAndUser(ctx, keptSmall.ID, owner.ID)
	assert.NoError(t, err)

	_, err = repo.GetByIDAndUser(ctx, foreign.ID, other.ID)
	assert.NoError(t, err)
	for _, r := range foreignSmall {
		got, err := resizedRepo.GetByIDAndUser(ctx, r.ID, other.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ImageID)
		assert.Equal(t, foreign.ID, *got.ImageID)
	}

	var count int64
	provider.DB().Model(&models.Resized{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestDeleteCascade_RollsBackOnPayloadFailure(t *testing.T) {
	provider, repo, resizedRepo := newRepos(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, provider, "owner")

	img := seedImage(t, repo, owner.ID, "orig.png")
	seedResized(t, resizedRepo, img, "small.png")

	boom := errors.New("storage down")
	err := repo.DeleteCascade(ctx, img.ID, owner.ID, func(context.Context, []string) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetByIDAndUser(ctx, img.ID, owner.ID)
	assert.NoError(t, err)
	list, err := resizedRepo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteCascade_ForeignOwner(t *testing.T) {
	provider, repo, _ := newRepos(t)
	alice := dbtest.CreateUser(t, provider, "alice")
	bob := dbtest.CreateUser(t, provider, "bob")
	img := seedImage(t, repo, alice.ID, "alice.png")

	err := repo.DeleteCascade(context.Background(), img.ID, bob.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResizedDelete(t *testing.T) {
	provider, repo, resizedRepo := newRepos(t)
	ctx := context.Background()
	owner := dbtest.CreateUser(t, provider, "owner")
	img := seedImage(t, repo, owner.ID, "orig.png")
	r := seedResized(t, resizedRepo, img, "small.png")

	var removed []string
	require.NoError(t, resizedRepo.Delete(ctx, r.ID, owner.ID, func(_ context.Context, paths []string) error {
		removed = append(removed, paths...)
		return nil
	}))
	assert.Equal(t, []string{"small.png"}, removed)

	_, err := resizedRepo.GetByIDAndUser(ctx, r.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByIDAndUser(ctx, img.ID, owner.ID)
	assert.NoError(t, err)
}

func TestDeleteAllForUserWithTx(t *testing.T) {
	provider, repo, resizedRepo := newRepos(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, provider, "alice")
	bob := dbtest.CreateUser(t, provider, "bob")

	img := seedImage(t, repo, alice.ID, "a1.png")
	seedResized(t, resizedRepo, img, "a1_small.png")
	seedImage(t, repo, bob.ID, "b1.png")

	paths, err := repo.DeleteAllForUserWithTx(provider.DB(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1_small.png", "a1.png"}, paths)

	list, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = repo.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
