package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/types"
	"gorm.io/gorm"
)

// Feed filters.
const (
	FeedAll       = ""
	FeedFollowing = "following"
	FeedMine      = "mine"
)

const (
	maxPostLength   = 5000
	postImagePath   = "post_images"
	newestFirst     = "posts.created_at DESC, posts.id DESC"
	commentsInOrder = "comments.created_at ASC, comments.id ASC"
)

// PostService handles posts, likes, saves and the feed
type PostService struct {
	db     *gorm.DB
	images IImageService
	now    func() time.Time
}

// Ensure PostService implements IPostService
var _ IPostService = (*PostService)(nil)

// NewPostService creates a new PostService instance
func NewPostService(db *gorm.DB, images IImageService) *PostService {
	return &PostService{
		db:     db,
		images: images,
		now:    time.Now,
	}
}

// preloadPost loads everything a rendered post needs.
func preloadPost(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Preload("User").
		Preload("Likes").
		Preload("SavedBy").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order(commentsInOrder)
		}).
		Preload("Comments.User")
}

func validatePostContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fieldError("content", "This field is required.")
	}
	if utf8.RuneCountInString(content) > maxPostLength {
		return "", fieldError("content", fmt.Sprintf("Ensure this value has at most %d characters.", maxPostLength))
	}
	return content, nil
}

// CreatePost stores a new post owned by principalID.
func (s *PostService) CreatePost(ctx context.Context, principalID uint, input *types.PostInput) (*models.Post, error) {
	content, err := validatePostContent(input.Content)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:    principalID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if input.Image != nil {
		if post.ImageKey, err = s.images.Upload(ctx, postImagePath, input.Image); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		if post.ImageKey != "" {
			s.images.Delete(ctx, post.ImageKey)
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	log.Printf("[PostService] User %d created post %d", principalID, post.ID)
	return post, nil
}

// GetEditablePost returns the post only if principalID owns it.
func (s *PostService) GetEditablePost(ctx context.Context, principalID, postID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", postID, principalID).First(&post).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// EditPost replaces the content and, when an image is supplied, the image of
// a post owned by principalID. Posts owned by others are reported as missing.
func (s *PostService) EditPost(ctx context.Context, principalID, postID uint, input *types.PostInput) (*models.Post, error) {
	post, err := s.GetEditablePost(ctx, principalID, postID)
	if err != nil {
		return nil, err
	}
	content, err := validatePostContent(input.Content)
	if err != nil {
		return nil, err
	}

	oldImage := post.ImageKey
	newImage := ""
	if input.Image != nil {
		if newImage, err = s.images.Upload(ctx, postImagePath, input.Image); err != nil {
			return nil, err
		}
		post.ImageKey = newImage
	}
	post.Content = content

	if err := s.db.WithContext(ctx).Model(post).Select("content", "image_key").Updates(post).Error; err != nil {
		if newImage != "" {
			s.images.Delete(ctx, newImage)
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if newImage != "" && oldImage != "" {
		s.images.Delete(ctx, oldImage)
	}
	return post, nil
}

// DeletePost removes a post with its comments, likes and saves. A missing
// post is ErrNotFound; a post owned by someone else is left alone and
// reported as not deleted.
func (s *PostService) DeletePost(ctx context.Context, principalID, postID uint) (bool, error) {
	db := s.db.WithContext(ctx)

	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		return false, translate(err)
	}
	if post.UserID != principalID {
		log.Printf("[PostService] User %d tried to delete post %d owned by %d", principalID, postID, post.UserID)
		return false, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostSave{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}

	if post.ImageKey != "" {
		s.images.Delete(ctx, post.ImageKey)
	}
	return true, nil
}

func (s *PostService) requirePost(db *gorm.DB, postID uint) error {
	var count int64
	if err := db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleLike likes or unlikes a post and reports whether it is liked
// afterwards.
func (s *PostService) ToggleLike(ctx context.Context, principalID, postID uint) (bool, error) {
	db := s.db.WithContext(ctx)
	if err := s.requirePost(db, postID); err != nil {
		return false, err
	}
	liked, err := toggleMembership(db, &models.PostLike{PostID: postID, UserID: principalID})
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}

// ToggleSave saves or unsaves a post and reports whether it is saved
// afterwards.
func (s *PostService) ToggleSave(ctx context.Context, principalID, postID uint) (bool, error) {
	db := s.db.WithContext(ctx)
	if err := s.requirePost(db, postID); err != nil {
		return false, err
	}
	saved, err := toggleMembership(db, &models.PostSave{PostID: postID, UserID: principalID})
	if err != nil {
		return false, fmt.Errorf("failed to toggle save: %w", err)
	}
	return saved, nil
}

// Feed returns posts newest first. Unknown filters show every post.
func (s *PostService) Feed(ctx context.Context, principalID uint, filter string) ([]models.Post, error) {
	db := s.db.WithContext(ctx)
	q := preloadPost(db)

	switch filter {
	case FeedFollowing:
		followed := db.Model(&models.Profile{}).
			Select("profiles.user_id").
			Joins("JOIN profile_followers ON profile_followers.profile_id = profiles.id").
			Where("profile_followers.user_id = ?", principalID)
		q = q.Where("posts.user_id IN (?)", followed)
	case FeedMine:
		q = q.Where("posts.user_id = ?", principalID)
	}

	var posts []models.Post
	if err := q.Order(newestFirst).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	return posts, nil
}

// SavedPosts returns the posts principalID has saved, newest first.
func (s *PostService) SavedPosts(ctx context.Context, principalID uint) ([]models.Post, error) {
	var posts []models.Post
	err := preloadPost(s.db.WithContext(ctx)).
		Joins("JOIN post_saves ON post_saves.post_id = posts.id").
		Where("post_saves.user_id = ?", principalID).
		Order(newestFirst).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load saved posts: %w", err)
	}
	return posts, nil
}
