package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/testhelpers"
	"github.com/pageza/snapfeed/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProfileTest(t *testing.T) (*gorm.DB, *service.ProfileService) {
	db := testhelpers.SetupTestDB(t)
	images := service.NewImageService(service.NewDBStore(db), 0)
	return db, service.NewProfileService(db, images)
}

func TestGetOrCreateProfile(t *testing.T) {
	db, profiles := setupProfileTest(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")
	require.NoError(t, db.Where("user_id = ?", alice.ID).Delete(&models.Profile{}).Error)

	first, err := profiles.GetOrCreateProfile(ctx, alice.ID)
	require.NoError(t, err)
	second, err := profiles.GetOrCreateProfile(ctx, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, alice.ID, first.UserID)
	assert.Empty(t, first.Bio)
}

func TestViewProfile(t *testing.T) {
	db, profiles := setupProfileTest(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testhelpers.CreatePost(t, db, bob, "older", base)
	testhelpers.CreatePost(t, db, bob, "newer", base.Add(time.Hour))
	testhelpers.CreatePost(t, db, alice, "not bob's", base)
	testhelpers.Follow(t, db, alice, bob)

	view, err := profiles.ViewProfile(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.False(t, view.IsOwnProfile)
	assert.True(t, view.IsFollowing)
	assert.Equal(t, int64(1), view.FollowerCount)
	assert.Equal(t, int64(0), view.FollowingCount)
	require.Len(t, view.Posts, 2)
	assert.Equal(t, "newer", view.Posts[0].Content)
	assert.Equal(t, "older", view.Posts[1].Content)

	own, err := profiles.ViewProfile(ctx, alice.ID, "alice")
	require.NoError(t, err)
	assert.True(t, own.IsOwnProfile)
	assert.False(t, own.IsFollowing)
	assert.Equal(t, int64(1), own.FollowingCount)

	_, err = profiles.ViewProfile(ctx, alice.ID, "nobody")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	db, profiles := setupProfileTest(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")

	updated, err := profiles.UpdateProfile(ctx, alice.ID, "alice", &types.ProfileUpdate{
		Bio:     "hello there",
		Picture: &types.ImageUpload{Filename: "me.png", Data: testhelpers.PNGData},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", updated.Bio)
	assert.Regexp(t, `^profile_pics/[0-9a-f-]{36}\.png$`, updated.PictureKey)
	firstPicture := updated.PictureKey

	updated, err = profiles.UpdateProfile(ctx, alice.ID, "alice", &types.ProfileUpdate{
		Bio:     "replaced",
		Picture: &types.ImageUpload{Filename: "me.gif", Data: testhelpers.GIFData},
	})
	require.NoError(t, err)
	assert.NotEqual(t, firstPicture, updated.PictureKey)

	var images int64
	require.NoError(t, db.Model(&models.Image{}).Count(&images).Error)
	assert.Equal(t, int64(1), images, "old picture should be removed")

	// Without a new picture the current one is kept.
	updated, err = profiles.UpdateProfile(ctx, alice.ID, "alice", &types.ProfileUpdate{Bio: ""})
	require.NoError(t, err)
	assert.Empty(t, updated.Bio)
	assert.NotEmpty(t, updated.PictureKey)
}

func TestUpdateProfileForbidden(t *testing.T) {
	db, profiles := setupProfileTest(t)
	ctx := context.Background()
	testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")

	_, err := profiles.UpdateProfile(ctx, bob.ID, "alice", &types.ProfileUpdate{Bio: "hacked"})
	assert.ErrorIs(t, err, service.ErrForbidden)

	var profile models.Profile
	require.NoError(t, db.Joins("JOIN users ON users.id = profiles.user_id").Where("users.username = ?", "alice").First(&profile).Error)
	assert.Empty(t, profile.Bio)

	_, err = profiles.UpdateProfile(ctx, bob.ID, "nobody", &types.ProfileUpdate{})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateProfileValidation(t *testing.T) {
	db, profiles := setupProfileTest(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")

	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'a'
	}
	_, err := profiles.UpdateProfile(ctx, alice.ID, "alice", &types.ProfileUpdate{Bio: string(long)})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "bio")

	_, err = profiles.UpdateProfile(ctx, alice.ID, "alice", &types.ProfileUpdate{
		Picture: &types.ImageUpload{Filename: "notes.txt", Data: []byte("just some text")},
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "picture")
}

func TestToggleFollow(t *testing.T) {
	db, profiles := setupProfileTest(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")
	testhelpers.CreateUser(t, db, "bob")

	following, err := profiles.ToggleFollow(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := profiles.ListFollowers(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	following, err = profiles.ToggleFollow(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.False(t, following)

	followers, err = profiles.ListFollowers(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, followers)

	_, err = profiles.ToggleFollow(ctx, alice.ID, "nobody")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

// Following yourself is allowed.
func TestToggleFollowSelf(t *testing.T) {
	db, profiles := setupProfileTest(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")

	following, err := profiles.ToggleFollow(ctx, alice.ID, "alice")
	require.NoError(t, err)
	assert.True(t, following)

	list, err := profiles.ListFollowing(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, alice.ID, list[0].ID)
}

func TestListFollowing(t *testing.T) {
	db, profiles := setupProfileTest(t)
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	carol := testhelpers.CreateUser(t, db, "carol")
	testhelpers.Follow(t, db, alice, carol)
	testhelpers.Follow(t, db, alice, bob)

	// A profile whose user row is gone.
	orphan := models.Profile{UserID: 9999}
	require.NoError(t, db.Create(&orphan).Error)
	require.NoError(t, db.Create(&models.ProfileFollower{ProfileID: orphan.ID, UserID: alice.ID}).Error)

	list, err := profiles.ListFollowing(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].Username)
	assert.Equal(t, "carol", list[1].Username)

	_, err = profiles.ListFollowing(ctx, "nobody")
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = profiles.ListFollowers(ctx, "nobody")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
