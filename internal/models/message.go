package models

import "time"

// Message direction tags. A turn always writes one of each.
const (
	DirectionUserToCharacter = "user_to_character"
	DirectionCharacterToUser = "character_to_user"
)

// Message is one half of a turn between a player and a character.
// Rows are append-only; (CharacterID, UserID) identifies the conversation
// thread and CreatedAt orders it.
type Message struct {
	ID          uint      `json:"id" gorm:"primaryKey;column:message_id"`
	ExternalID  string    `json:"external_id" gorm:"index"`
	CharacterID uint      `json:"character_id" gorm:"column:character_id;index;not null"`
	UserID      uint      `json:"user_id" gorm:"column:user_id;index;not null"`
	Text        string    `json:"text" gorm:"column:message_text;type:text;not null"`
	Direction   string    `json:"direction" gorm:"column:message_direction;type:varchar(32);not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:message_timestamp"`
}

func (Message) TableName() string { return "messages" }

// HistoryEntry is one rendered line of a conversation thread: a speaker
// label plus the message text, ready for prompt assembly.
type HistoryEntry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}
