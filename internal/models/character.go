package models

import "time"

// Character is a persona a player can talk to. Characters are seed data:
// this service only ever reads them.
type Character struct {
	ID          uint      `json:"id" gorm:"primaryKey;column:character_id"`
	Name        string    `json:"name" gorm:"column:character_name;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"column:character_description;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Character) TableName() string { return "characters" }
