package store

import (
	"context"
	"errors"
	"time"

	"character-dialog-service/backend/internal/models"

	"gorm.io/gorm"
)

// PlayerLabel is the localized speaker label used for inbound turns when
// rendering history. Outbound turns are labeled with the character's name.
const PlayerLabel = "Игрок"

// ErrNotFound is returned when a referenced character or user does not exist.
var ErrNotFound = errors.New("record not found")

// Store owns all rows of the characters/users/messages tables. The turn
// orchestrator is the only writer.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates the schema if absent. Ran once at process start.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.Character{},
		&models.User{},
		&models.Message{},
	)
}

// WithTurn runs fn against a transaction-scoped Store. Every write made by
// fn is committed only if fn returns nil; any error rolls the whole turn
// back, so a failed turn leaves zero new rows behind.
func (s *Store) WithTurn(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// FindCharacter looks a character up by its unique name.
func (s *Store) FindCharacter(ctx context.Context, name string) (*models.Character, error) {
	var character models.Character
	err := s.db.WithContext(ctx).
		Where("character_name = ?", name).
		First(&character).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &character, nil
}

// FindOrCreateUser returns the user with the given name, creating it on
// first sight. The check-then-insert is not guarded by a uniqueness race;
// writes are serialized by the single-writer turn discipline.
func (s *Store) FindOrCreateUser(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("user_name = ?", name).
		First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{Name: name, CreatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AppendMessage records one half of a turn against an existing character
// and user.
func (s *Store) AppendMessage(ctx context.Context, characterID, userID uint, externalID, text, direction string) error {
	message := models.Message{
		ExternalID:  externalID,
		CharacterID: characterID,
		UserID:      userID,
		Text:        text,
		Direction:   direction,
		CreatedAt:   time.Now(),
	}
	return s.db.WithContext(ctx).Create(&message).Error
}

// ListHistory returns the full thread for a (character, user) pair, oldest
// first. Inbound turns carry the fixed player label, outbound turns the
// character's own name. There is no pagination; threads grow unbounded.
func (s *Store) ListHistory(ctx context.Context, character *models.Character, userID uint) ([]models.HistoryEntry, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("character_id = ? AND user_id = ?", character.ID, userID).
		Order("message_timestamp ASC, message_id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	history := make([]models.HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		speaker := character.Name
		if msg.Direction == models.DirectionUserToCharacter {
			speaker = PlayerLabel
		}
		history = append(history, models.HistoryEntry{Speaker: speaker, Text: msg.Text})
	}
	return history, nil
}

// CountMessages reports the message total for health reporting.
func (s *Store) CountMessages(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).Count(&n).Error
	return n, err
}

// Ping verifies the underlying connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
