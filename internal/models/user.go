package models

import "time"

// User is a player, created lazily the first time an unseen player name
// shows up in a request. Never updated or deleted by this service.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;column:user_id"`
	Name      string    `json:"name" gorm:"column:user_name;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }
