package service

import (
	"context"
	"time"

	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/types"
)

// IAuthService defines the interface for account and session operations
type IAuthService interface {
	Register(ctx context.Context, form *types.RegisterForm) (*models.User, string, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
}

// IProfileService defines the interface for profile and follow operations
type IProfileService interface {
	GetOrCreateProfile(ctx context.Context, userID uint) (*models.Profile, error)
	ViewProfile(ctx context.Context, principalID uint, username string) (*types.ProfileView, error)
	UpdateProfile(ctx context.Context, principalID uint, username string, update *types.ProfileUpdate) (*models.Profile, error)
	ToggleFollow(ctx context.Context, principalID uint, username string) (bool, error)
	ListFollowers(ctx context.Context, username string) ([]models.User, error)
	ListFollowing(ctx context.Context, username string) ([]models.User, error)
}

// IPostService defines the interface for post operations
type IPostService interface {
	CreatePost(ctx context.Context, principalID uint, input *types.PostInput) (*models.Post, error)
	GetEditablePost(ctx context.Context, principalID, postID uint) (*models.Post, error)
	EditPost(ctx context.Context, principalID, postID uint, input *types.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, principalID, postID uint) (bool, error)
	ToggleLike(ctx context.Context, principalID, postID uint) (bool, error)
	ToggleSave(ctx context.Context, principalID, postID uint) (bool, error)
	Feed(ctx context.Context, principalID uint, filter string) ([]models.Post, error)
	SavedPosts(ctx context.Context, principalID uint) ([]models.Post, error)
}

// ICommentService defines the interface for comment operations
type ICommentService interface {
	AddComment(ctx context.Context, principalID, postID uint, text string) (*models.Comment, error)
}

// ISearchService defines the interface for search
type ISearchService interface {
	Search(ctx context.Context, query string) (*types.SearchResults, error)
}

// IImageService defines the interface for uploaded image storage
type IImageService interface {
	Upload(ctx context.Context, prefix string, upload *types.ImageUpload) (string, error)
	Open(ctx context.Context, key string) ([]byte, string, error)
	URL(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Delete(ctx context.Context, key string)
}
