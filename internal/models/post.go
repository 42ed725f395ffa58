package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageKey  string    `gorm:"size:255" json:"image_key"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Likes     []User    `gorm:"many2many:post_likes;" json:"-"`
	SavedBy   []User    `gorm:"many2many:post_saves;" json:"-"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

// LikedBy reports whether userID is in the preloaded Likes set.
func (p *Post) LikedBy(userID uint) bool {
	return containsUser(p.Likes, userID)
}

// SavedByUser reports whether userID is in the preloaded SavedBy set.
func (p *Post) SavedByUser(userID uint) bool {
	return containsUser(p.SavedBy, userID)
}

func containsUser(users []User, id uint) bool {
	for i := range users {
		if users[i].ID == id {
			return true
		}
	}
	return false
}

// PostLike is the join row for Post.Likes.
type PostLike struct {
	PostID    uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

func (PostLike) TableName() string {
	return "post_likes"
}

// PostSave is the join row for Post.SavedBy.
type PostSave struct {
	PostID    uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

func (PostSave) TableName() string {
	return "post_saves"
}
