package models

import "time"

// Like relates one user to one post.
// The combination of UserID and PostID must be unique; the index enforces it under concurrent toggles.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post,priority:1" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post,priority:2;index" json:"post_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
