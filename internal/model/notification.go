package model

import "time"

// Notification kinds recorded by the lifecycle worker.
const (
	NotificationWelcome = "welcome"
	NotificationGoodbye = "goodbye"
)

// UserEvent is the payload published to the lifecycle queue on signup and
// account deletion.
type UserEvent struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Kind   string `json:"kind"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Email     string    `gorm:"size:128;not null" json:"email"`
	Kind      string    `gorm:"size:16;not null;index" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
