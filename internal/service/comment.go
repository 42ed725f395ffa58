package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pageza/snapfeed/backend/internal/models"
	"gorm.io/gorm"
)

const maxCommentLength = 2000

// CommentService handles comments on posts
type CommentService struct {
	db  *gorm.DB
	now func() time.Time
}

// Ensure CommentService implements ICommentService
var _ ICommentService = (*CommentService)(nil)

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db, now: time.Now}
}

// AddComment attaches a comment by principalID to a post.
func (s *CommentService) AddComment(ctx context.Context, principalID, postID uint, text string) (*models.Comment, error) {
	db := s.db.WithContext(ctx)

	var post models.Post
	if err := db.Select("id").First(&post, postID).Error; err != nil {
		return nil, translate(err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fieldError("text", "This field is required.")
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return nil, fieldError("text", fmt.Sprintf("Ensure this value has at most %d characters.", maxCommentLength))
	}

	comment := &models.Comment{
		PostID:    post.ID,
		UserID:    principalID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}
