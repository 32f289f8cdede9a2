package model

import "time"

// SessionToken is one active session for a user. A user may hold any number
// of tokens at once; logout deletes exactly the presented one.
type SessionToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"size:512;not null;index" json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
