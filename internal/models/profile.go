package models

import (
	"time"
)

// Profile holds the public, user-editable part of an account. Every user has
// exactly one profile.
type Profile struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Bio        string    `gorm:"type:text" json:"bio"`
	PictureKey string    `gorm:"size:255" json:"picture_key"`
	Followers  []User    `gorm:"many2many:profile_followers;" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileFollower is the join row recording that UserID follows the owner of
// ProfileID.
type ProfileFollower struct {
	ProfileID uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

func (ProfileFollower) TableName() string {
	return "profile_followers"
}
