package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/handler"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/service"
	"github.com/ignatzorin/proposal-backend/internal/usecase/chat"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Silence()
}

type countingRunner struct{ calls int }

func (r *countingRunner) Run(ctx context.Context, userID uuid.UUID, req chat.TurnRequest, emit chat.Emitter) error {
	r.calls++
	return emit(chat.Event{Type: chat.EventFinish})
}

type okPinger struct{}

func (okPinger) PingContext(ctx context.Context) error { return nil }

func setup(t *testing.T) (*gin.Engine, *service.TokenManager, *countingRunner) {
	t.Helper()
	cfg := &config.Config{
		Env:             "test",
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
		ChatRateLimit:   100,
	}
	tokens := service.NewTokenManager("access-secret-access-secret-000000", "refresh-secret-refresh-secret-0000", time.Minute, time.Hour)
	runner := &countingRunner{}
	r := SetupRouter(cfg, Handlers{
		Health: handler.NewHealthHandler(okPinger{}),
		Chat:   handler.NewChatHandler(runner),
	}, tokens)
	return r, tokens, runner
}

func bearer(t *testing.T, tokens *service.TokenManager, role valueobject.Role) string {
	t.Helper()
	pair, _, err := tokens.GeneratePair(&entity.User{ID: uuid.New(), Email: "a@b.co", Role: role})
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

const chatPayload = `{"id":"6f1c8c1e-2f0a-4f6e-9b7e-2f1d6c3a9b10","message":{"id":"m","role":"user","parts":[{"type":"text","text":"hi"}]}}`

func TestRouter_ChatRequiresAuth(t *testing.T) {
	r, tokens, runner := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(chatPayload))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Unauthorized"`)
	assert.Equal(t, 0, runner.calls)

	req = httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(chatPayload))
	req.Header.Set("Authorization", bearer(t, tokens, valueobject.RoleUser))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.calls)
	assert.True(t, strings.HasSuffix(w.Body.String(), "data: [DONE]\n\n"))
}

func TestRouter_AdminRoutesRequireAdmin(t *testing.T) {
	r, tokens, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/waitlist", nil)
	req.Header.Set("Authorization", bearer(t, tokens, valueobject.RoleUser))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_InvalidIDAndUnknownRoute(t *testing.T) {
	r, tokens, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/templates/nope", nil)
	req.Header.Set("Authorization", bearer(t, tokens, valueobject.RoleUser))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid id")

	req = httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Health(t *testing.T) {
	r, _, _ := setup(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}
