package types

import "github.com/pageza/snapfeed/backend/internal/models"

// ProfileView is everything the profile page shows.
type ProfileView struct {
	User           *models.User
	Profile        *models.Profile
	IsOwnProfile   bool
	IsFollowing    bool
	FollowerCount  int64
	FollowingCount int64
	Posts          []models.Post
}

// SearchResults holds the two result sets of a search.
type SearchResults struct {
	Query string
	Users []models.User
	Posts []models.Post
}
