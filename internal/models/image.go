package models

import "time"

// Image stores uploaded image bytes when the database image store is in use.
type Image struct {
	Key         string `gorm:"primaryKey;size:255"`
	ContentType string `gorm:"size:100;not null"`
	Size        int64  `gorm:"not null"`
	Data        []byte `gorm:"not null"`
	CreatedAt   time.Time
}

func (Image) TableName() string {
	return "images"
}
