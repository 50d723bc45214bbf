package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"character-dialog-service/backend/internal/models"

	"gorm.io/gorm"
)

// seedCharacter mirrors one entry of the bundled seed file.
type seedCharacter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SeedCharacters loads characters from a JSON file into the store.
// Characters already present (by name) are left untouched, so reseeding on
// every start is safe.
func (s *Store) SeedCharacters(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var seeds []seedCharacter
	if err := json.Unmarshal(data, &seeds); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	created := 0
	for _, seed := range seeds {
		if seed.Name == "" || seed.Description == "" {
			continue
		}
		_, err := s.FindCharacter(ctx, seed.Name)
		if err == nil {
			continue
		}
		if err != ErrNotFound {
			return created, err
		}
		character := models.Character{
			Name:        seed.Name,
			Description: seed.Description,
			CreatedAt:   time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(&character).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// DB exposes the raw handle for test setup and health checks.
func (s *Store) DB() *gorm.DB { return s.db }
