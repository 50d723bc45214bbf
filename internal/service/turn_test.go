package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"character-dialog-service/backend/internal/models"
	"character-dialog-service/backend/internal/store"
	apperrors "character-dialog-service/backend/pkg/errors"
	"character-dialog-service/backend/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeClient records every prompt it receives and answers with a canned
// reply or error.
type fakeClient struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeClient) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeClient) Vendor() string { return "fake" }

func newTestService(t *testing.T, client *fakeClient) (*TurnService, *store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	st := store.New(db)
	require.NoError(t, st.AutoMigrate())

	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	return NewTurnService(st, client, nil, log, nil), st
}

func seedCharacter(t *testing.T, st *store.Store, name, description string) {
	t.Helper()
	require.NoError(t, st.DB().Create(&models.Character{Name: name, Description: description}).Error)
}

func TestHandleTurnSuccessCommitsBothMessages(t *testing.T) {
	client := &fakeClient{reply: "Я продаю мечи."}
	svc, st := newTestService(t, client)
	ctx := context.Background()
	seedCharacter(t, st, "Mira", "a stoic blacksmith")

	reply, err := svc.HandleTurn(ctx, "Mira", "bob", "Что ты продаёшь?")
	require.NoError(t, err)
	assert.Equal(t, "Я продаю мечи.", reply)

	var messages []models.Message
	require.NoError(t, st.DB().Order("message_id ASC").Find(&messages).Error)
	require.Len(t, messages, 2)
	assert.Equal(t, models.DirectionUserToCharacter, messages[0].Direction)
	assert.Equal(t, "Что ты продаёшь?", messages[0].Text)
	assert.Equal(t, models.DirectionCharacterToUser, messages[1].Direction)
	assert.Equal(t, "Я продаю мечи.", messages[1].Text)
	assert.NotEmpty(t, messages[0].ExternalID)
	assert.NotEqual(t, messages[0].ExternalID, messages[1].ExternalID)
}

func TestHandleTurnPromptCarriesHistory(t *testing.T) {
	client := &fakeClient{reply: "ответ"}
	svc, st := newTestService(t, client)
	ctx := context.Background()
	seedCharacter(t, st, "Mira", "a stoic blacksmith")

	_, err := svc.HandleTurn(ctx, "Mira", "bob", "Кто ты?")
	require.NoError(t, err)
	_, err = svc.HandleTurn(ctx, "Mira", "bob", "А что ты умеешь?")
	require.NoError(t, err)

	require.Len(t, client.prompts, 2)
	assert.NotContains(t, client.prompts[0], "История диалога:")
	assert.Contains(t, client.prompts[1], "История диалога:")
	assert.Contains(t, client.prompts[1], store.PlayerLabel+": Кто ты?")
	assert.Contains(t, client.prompts[1], "Mira: ответ")
	assert.True(t, strings.HasSuffix(client.prompts[1], "Текущий вопрос:\nА что ты умеешь?"))
}

func TestHandleTurnUnknownCharacterSkipsClient(t *testing.T) {
	client := &fakeClient{reply: "never"}
	svc, st := newTestService(t, client)
	ctx := context.Background()

	_, err := svc.HandleTurn(ctx, "Nobody", "bob", "Кто ты?")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCharacterNotFound))
	assert.Empty(t, client.prompts)

	// The lookup failure leaves no trace: no user, no messages.
	var users int64
	require.NoError(t, st.DB().Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestHandleTurnUpstreamFailureRollsBack(t *testing.T) {
	client := &fakeClient{err: errors.New("gateway timeout")}
	svc, st := newTestService(t, client)
	ctx := context.Background()
	seedCharacter(t, st, "Mira", "a stoic blacksmith")

	_, err := svc.HandleTurn(ctx, "Mira", "bob", "Кто ты?")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstream))
	require.Len(t, client.prompts, 1)

	var messages int64
	require.NoError(t, st.DB().Model(&models.Message{}).Count(&messages).Error)
	assert.Zero(t, messages)

	var users int64
	require.NoError(t, st.DB().Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestHandleTurnUsesDescriptionCache(t *testing.T) {
	client := &fakeClient{reply: "ответ"}
	svc, st := newTestService(t, client)
	cache := &countingCache{inner: map[string]CachedCharacter{}}
	svc.cache = cache
	ctx := context.Background()
	seedCharacter(t, st, "Mira", "a stoic blacksmith")

	_, err := svc.HandleTurn(ctx, "Mira", "bob", "Кто ты?")
	require.NoError(t, err)
	_, err = svc.HandleTurn(ctx, "Mira", "bob", "Ещё вопрос?")
	require.NoError(t, err)

	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)
}

type countingCache struct {
	inner map[string]CachedCharacter
	hits  int
	sets  int
}

func (c *countingCache) Get(_ context.Context, name string) (CachedCharacter, bool) {
	cached, ok := c.inner[name]
	if ok {
		c.hits++
	}
	return cached, ok
}

func (c *countingCache) Set(_ context.Context, name string, cached CachedCharacter) {
	c.inner[name] = cached
	c.sets++
}
