package testhelpers

import (
	"testing"
	"time"

	"github.com/pageza/snapfeed/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every user made by CreateUser.
const TestPassword = "correct-horse-battery"

// CreateUser inserts a user and its profile.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	if err := db.Create(&models.Profile{UserID: user.ID}).Error; err != nil {
		t.Fatalf("failed to create profile for %s: %v", username, err)
	}
	return user
}

// CreatePost inserts a post owned by user with the given creation time.
func CreatePost(t *testing.T, db *gorm.DB, user *models.User, content string, createdAt time.Time) *models.Post {
	t.Helper()

	post := &models.Post{
		UserID:    user.ID,
		Content:   content,
		CreatedAt: createdAt,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	return post
}

// Follow makes follower a follower of target.
func Follow(t *testing.T, db *gorm.DB, follower, target *models.User) {
	t.Helper()

	var profile models.Profile
	if err := db.Where("user_id = ?", target.ID).First(&profile).Error; err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}
	row := models.ProfileFollower{ProfileID: profile.ID, UserID: follower.ID}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("failed to follow: %v", err)
	}
}

// PNGData is the start of a PNG file, enough for content sniffing.
var PNGData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// GIFData is the start of a GIF file, enough for content sniffing.
var GIFData = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04")
