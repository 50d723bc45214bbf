package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"character-dialog-service/backend/internal/models"
	"character-dialog-service/backend/internal/service"
	"character-dialog-service/backend/internal/store"
	"character-dialog-service/backend/pkg/config"
	"character-dialog-service/backend/pkg/health"
	"character-dialog-service/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubClient struct {
	calls int
	reply string
	err   error
}

func (s *stubClient) Complete(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubClient) Vendor() string { return "stub" }

func newTestRouter(t *testing.T, client *stubClient) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	st := store.New(db)
	require.NoError(t, st.AutoMigrate())
	require.NoError(t, st.DB().Create(&models.Character{Name: "Mira", Description: "a stoic blacksmith"}).Error)

	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	svc := service.NewTurnService(st, client, nil, log, nil)

	cfg := &config.Config{}
	cfg.Security.RateLimit = 100
	cfg.Security.RateLimitBurst = 100

	return NewRouter(cfg, log, NewTurnController(svc), health.NewChecker(log)), st
}

func doTurn(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTurnEndpointSuccess(t *testing.T) {
	client := &stubClient{reply: "Я продаю мечи."}
	router, st := newTestRouter(t, client)

	rec := doTurn(router, `{"charName":"Mira","playerName":"bob","question":"Что ты продаёшь?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"Я продаю мечи."}`, rec.Body.String())

	count, err := st.CountMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestTurnEndpointMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"no charName", `{"playerName":"bob","question":"q"}`, "charName is required"},
		{"empty charName", `{"charName":"","playerName":"bob","question":"q"}`, "charName is required"},
		{"no playerName", `{"charName":"Mira","question":"q"}`, "playerName is required"},
		{"no question", `{"charName":"Mira","playerName":"bob"}`, "question is required"},
		{"not json", `not json at all`, "request body must be a JSON object"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &stubClient{reply: "never"}
			router, st := newTestRouter(t, client)

			rec := doTurn(router, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.want), rec.Body.String())
			assert.Zero(t, client.calls)

			count, err := st.CountMessages(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestTurnEndpointUnknownCharacter(t *testing.T) {
	client := &stubClient{reply: "never"}
	router, _ := newTestRouter(t, client)

	rec := doTurn(router, `{"charName":"Nobody","playerName":"bob","question":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "Nobody")
	assert.Zero(t, client.calls)
}

func TestTurnEndpointUpstreamFailure(t *testing.T) {
	client := &stubClient{err: errors.New("gateway timeout")}
	router, st := newTestRouter(t, client)

	rec := doTurn(router, `{"charName":"Mira","playerName":"bob","question":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])

	count, err := st.CountMessages(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTurnEndpointMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())
}

func TestSmokeRoutes(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Сервер работает!", rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/data", strings.NewReader(`{"ping":"pong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"успешно","received":{"ping":"pong"}}`, rec.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
