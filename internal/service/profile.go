package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"unicode/utf8"

	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/types"
	"gorm.io/gorm"
)

const (
	maxBioLength       = 1000
	profilePicturePath = "profile_pics"
)

// ProfileService handles profiles and the follower relation
type ProfileService struct {
	db     *gorm.DB
	images IImageService
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB, images IImageService) *ProfileService {
	return &ProfileService{
		db:     db,
		images: images,
	}
}

// ensureProfile returns the user's profile, creating an empty one if absent.
func ensureProfile(db *gorm.DB, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := db.Where(models.Profile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		// Lost a creation race on the unique user_id index.
		if retryErr := db.Where("user_id = ?", userID).First(&profile).Error; retryErr != nil {
			return nil, err
		}
	}
	return &profile, nil
}

func userByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetOrCreateProfile returns the profile for userID, creating it if missing.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := ensureProfile(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// ViewProfile loads the target user's profile page as seen by principalID.
func (s *ProfileService) ViewProfile(ctx context.Context, principalID uint, username string) (*types.ProfileView, error) {
	db := s.db.WithContext(ctx)

	user, err := userByUsername(db, username)
	if err != nil {
		return nil, err
	}
	profile, err := ensureProfile(db, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	view := &types.ProfileView{
		User:         user,
		Profile:      profile,
		IsOwnProfile: principalID == user.ID,
	}

	if err := db.Model(&models.ProfileFollower{}).Where("profile_id = ?", profile.ID).Count(&view.FollowerCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ProfileFollower{}).Where("user_id = ?", user.ID).Count(&view.FollowingCount).Error; err != nil {
		return nil, err
	}

	var following int64
	if err := db.Model(&models.ProfileFollower{}).
		Where("profile_id = ? AND user_id = ?", profile.ID, principalID).
		Count(&following).Error; err != nil {
		return nil, err
	}
	view.IsFollowing = following > 0

	if err := preloadPost(db).Where("posts.user_id = ?", user.ID).Order(newestFirst).Find(&view.Posts).Error; err != nil {
		return nil, err
	}

	return view, nil
}

// UpdateProfile changes the bio and picture. Only the owner may do so.
func (s *ProfileService) UpdateProfile(ctx context.Context, principalID uint, username string, update *types.ProfileUpdate) (*models.Profile, error) {
	db := s.db.WithContext(ctx)

	user, err := userByUsername(db, username)
	if err != nil {
		return nil, err
	}
	if user.ID != principalID {
		log.Printf("[ProfileService] User %d tried to edit the profile of %q", principalID, username)
		return nil, ErrForbidden
	}
	if utf8.RuneCountInString(update.Bio) > maxBioLength {
		return nil, fieldError("bio", fmt.Sprintf("Ensure this value has at most %d characters.", maxBioLength))
	}

	profile, err := ensureProfile(db, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	oldPicture := profile.PictureKey
	newPicture := ""
	if update.Picture != nil {
		newPicture, err = s.images.Upload(ctx, profilePicturePath, update.Picture)
		if err != nil {
			return nil, err
		}
		profile.PictureKey = newPicture
	}
	profile.Bio = update.Bio

	if err := db.Model(profile).Select("bio", "picture_key").Updates(profile).Error; err != nil {
		if newPicture != "" {
			s.images.Delete(ctx, newPicture)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if update.Picture != nil && oldPicture != "" {
		s.images.Delete(ctx, oldPicture)
	}
	return profile, nil
}

// ToggleFollow adds principalID to the target's followers, or removes it if
// already there. It returns whether the principal follows the target
// afterwards. Following yourself is allowed.
func (s *ProfileService) ToggleFollow(ctx context.Context, principalID uint, username string) (bool, error) {
	db := s.db.WithContext(ctx)

	user, err := userByUsername(db, username)
	if err != nil {
		return false, err
	}
	profile, err := ensureProfile(db, user.ID)
	if err != nil {
		return false, fmt.Errorf("failed to get profile: %w", err)
	}

	following, err := toggleMembership(db, &models.ProfileFollower{ProfileID: profile.ID, UserID: principalID})
	if err != nil {
		return false, fmt.Errorf("failed to toggle follow: %w", err)
	}
	return following, nil
}

// ListFollowers returns the users following username, ordered by username.
func (s *ProfileService) ListFollowers(ctx context.Context, username string) ([]models.User, error) {
	db := s.db.WithContext(ctx)

	user, err := userByUsername(db, username)
	if err != nil {
		return nil, err
	}
	profile, err := ensureProfile(db, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var followers []models.User
	err = db.Joins("JOIN profile_followers ON profile_followers.user_id = users.id").
		Where("profile_followers.profile_id = ?", profile.ID).
		Order("users.username").
		Find(&followers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return followers, nil
}

// ListFollowing returns the users whose profiles username follows, ordered by
// username. Profiles without a user row are skipped.
func (s *ProfileService) ListFollowing(ctx context.Context, username string) ([]models.User, error) {
	db := s.db.WithContext(ctx)

	user, err := userByUsername(db, username)
	if err != nil {
		return nil, err
	}

	followed := db.Model(&models.ProfileFollower{}).Select("profile_id").Where("user_id = ?", user.ID)

	var profiles []models.Profile
	if err := db.Preload("User").Where("id IN (?)", followed).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}

	following := make([]models.User, 0, len(profiles))
	for _, p := range profiles {
		if p.User == nil {
			continue
		}
		following = append(following, *p.User)
	}
	sort.Slice(following, func(i, j int) bool {
		return following[i].Username < following[j].Username
	})
	return following, nil
}
