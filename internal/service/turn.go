package service

import (
	"context"
	"errors"
	"time"

	"character-dialog-service/backend/internal/models"
	"character-dialog-service/backend/internal/prompt"
	"character-dialog-service/backend/internal/store"
	"character-dialog-service/backend/llm"
	apperrors "character-dialog-service/backend/pkg/errors"
	"character-dialog-service/backend/pkg/logger"
	"character-dialog-service/backend/pkg/observability"

	"github.com/google/uuid"
)

// Turn outcome labels for metrics.
const (
	outcomeSuccess           = "success"
	outcomeCharacterNotFound = "character_not_found"
	outcomeUpstreamError     = "upstream_error"
	outcomePersistenceError  = "persistence_error"
)

// TurnService runs one question-then-reply exchange end to end: persona
// lookup, history load, prompt assembly, the completion call, and the two
// history inserts.
type TurnService struct {
	store   *store.Store
	client  llm.Client
	cache   DescriptionCache
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewTurnService wires the orchestrator. cache and metrics may be nil-like
// (noop) in tests.
func NewTurnService(st *store.Store, client llm.Client, cache DescriptionCache, log *logger.Logger, metrics *observability.Metrics) *TurnService {
	if cache == nil {
		cache = NewNoopCache()
	}
	return &TurnService{
		store:   st,
		client:  client,
		cache:   cache,
		log:     log,
		metrics: metrics,
	}
}

// HandleTurn answers one player question in character. The whole turn runs
// inside a single store transaction: on full success exactly two message
// rows (question, then reply) are committed; on any failure every write of
// the turn — including a lazily created user — is rolled back, so no
// partial turn is ever visible in history.
func (s *TurnService) HandleTurn(ctx context.Context, charName, playerName, question string) (string, error) {
	var reply string

	err := s.store.WithTurn(ctx, func(tx *store.Store) error {
		character, err := s.lookupCharacter(ctx, tx, charName)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Fail fast: the completion client is never invoked
				// for an unknown character.
				return apperrors.NewCharacterNotFoundError(charName)
			}
			return apperrors.NewPersistenceError(err)
		}

		user, err := tx.FindOrCreateUser(ctx, playerName)
		if err != nil {
			return apperrors.NewPersistenceError(err)
		}

		history, err := tx.ListHistory(ctx, character, user.ID)
		if err != nil {
			return apperrors.NewPersistenceError(err)
		}

		promptText := prompt.Build(character.Name, character.Description, history, question)

		start := time.Now()
		reply, err = s.client.Complete(ctx, promptText)
		s.metrics.RecordUpstreamLatency(ctx, s.client.Vendor(), time.Since(start))
		if err != nil {
			return apperrors.NewUpstreamError(err)
		}

		if err := tx.AppendMessage(ctx, character.ID, user.ID, uuid.New().String(), question, models.DirectionUserToCharacter); err != nil {
			return apperrors.NewPersistenceError(err)
		}
		if err := tx.AppendMessage(ctx, character.ID, user.ID, uuid.New().String(), reply, models.DirectionCharacterToUser); err != nil {
			return apperrors.NewPersistenceError(err)
		}
		return nil
	})

	s.metrics.RecordTurn(ctx, outcomeFor(err))

	if err != nil {
		s.log.LogError(err, "turn failed", "character", charName, "player", playerName)
		return "", err
	}
	return reply, nil
}

// lookupCharacter resolves a character through the description cache,
// falling back to the transaction-scoped store on a miss.
func (s *TurnService) lookupCharacter(ctx context.Context, tx *store.Store, name string) (*models.Character, error) {
	if cached, ok := s.cache.Get(ctx, name); ok {
		return &models.Character{ID: cached.ID, Name: name, Description: cached.Description}, nil
	}

	character, err := tx.FindCharacter(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, name, CachedCharacter{ID: character.ID, Description: character.Description})
	return character, nil
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case apperrors.IsCode(err, apperrors.CodeCharacterNotFound):
		return outcomeCharacterNotFound
	case apperrors.IsCode(err, apperrors.CodeUpstream):
		return outcomeUpstreamError
	default:
		return outcomePersistenceError
	}
}
