package types

import (
	"mime/multipart"
	"regexp"
)

// RegisterForm is bound from the registration page.
type RegisterForm struct {
	Username        string `form:"username" binding:"required,max=150,username"`
	Email           string `form:"email" binding:"omitempty,email,max=254"`
	FirstName       string `form:"first_name" binding:"max=150"`
	LastName        string `form:"last_name" binding:"max=150"`
	Password        string `form:"password1" binding:"required,min=8,max=128"`
	PasswordConfirm string `form:"password2" binding:"required,eqfield=Password"`
}

// LoginForm is bound from the login page.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// PostForm is bound from the create and edit post pages.
type PostForm struct {
	Content string                `form:"content" binding:"required,max=5000"`
	Image   *multipart.FileHeader `form:"image"`
}

// CommentForm is bound from the comment box under each post in the feed.
type CommentForm struct {
	PostID uint   `form:"post_id" binding:"required"`
	Text   string `form:"text" binding:"required,max=2000"`
}

// ProfileForm is bound from the profile edit form.
type ProfileForm struct {
	Bio     string                `form:"bio" binding:"max=1000"`
	Picture *multipart.FileHeader `form:"picture"`
}

// FeedQuery selects the feed filter.
type FeedQuery struct {
	Filter string `form:"filter"`
}

// SearchQuery carries the search box input.
type SearchQuery struct {
	Q string `form:"q"`
}

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// ValidUsername reports whether s is made only of letters, digits and @.+-_.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}
