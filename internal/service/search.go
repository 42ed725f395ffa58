package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/types"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchService runs substring searches over users and posts
type SearchService struct {
	db *gorm.DB
}

// Ensure SearchService implements ISearchService
var _ ISearchService = (*SearchService)(nil)

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

// containsPattern builds a case-insensitive LIKE pattern matching query
// anywhere in a column.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}

// Search matches users by username or name and posts by content or author
// username. A blank query matches nothing.
func (s *SearchService) Search(ctx context.Context, query string) (*types.SearchResults, error) {
	query = strings.TrimSpace(query)
	results := &types.SearchResults{
		Query: query,
		Users: []models.User{},
		Posts: []models.Post{},
	}
	if query == "" {
		return results, nil
	}

	db := s.db.WithContext(ctx)
	pattern := containsPattern(query)

	err := db.Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\'`,
		pattern, pattern, pattern).
		Order("username").
		Find(&results.Users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	err = preloadPost(db).
		Joins("JOIN users ON users.id = posts.user_id").
		Where(`LOWER(posts.content) LIKE ? ESCAPE '\' OR LOWER(users.username) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order(newestFirst).
		Find(&results.Posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	return results, nil
}
