package models

import "time"

// User is the identity record the thread store trusts as already authenticated.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Handle    string    `gorm:"size:64;not null" json:"handle"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
