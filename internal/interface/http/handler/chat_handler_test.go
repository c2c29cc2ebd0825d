package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/chat"
)

type fakeRunner struct {
	events []chat.Event
	err    error
	got    chat.TurnRequest
	userID uuid.UUID
}

func (f *fakeRunner) Run(ctx context.Context, userID uuid.UUID, req chat.TurnRequest, emit chat.Emitter) error {
	f.got = req
	f.userID = userID
	for _, e := range f.events {
		if err := emit(e); err != nil {
			return err
		}
	}
	return f.err
}

func newChatRouter(runner ChatRunner, userID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(asUser(userID))
	r.POST("/api/chat", NewChatHandler(runner).Chat)
	return r
}

func chatBody(chatID uuid.UUID, text string) map[string]any {
	return map[string]any{
		"id": chatID,
		"message": map[string]any{
			"id":    "msg-1",
			"role":  "user",
			"parts": []map[string]any{{"type": "text", "text": text}},
		},
	}
}

func postChat(t *testing.T, r http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataLines(t *testing.T, body string) []string {
	t.Helper()
	var out []string
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		require.True(t, strings.HasPrefix(line, "data: "), line)
		out = append(out, strings.TrimPrefix(line, "data: "))
	}
	return out
}

func TestChatHandler_Unauthenticated(t *testing.T) {
	runner := &fakeRunner{}
	w := postChat(t, newChatRouter(runner, uuid.Nil), chatBody(uuid.New(), "hi"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, uuid.Nil, runner.userID)
}

func TestChatHandler_StreamsEventsThenDone(t *testing.T) {
	userID := uuid.New()
	chatID := uuid.New()
	runner := &fakeRunner{events: []chat.Event{
		{Type: chat.EventStart, MessageID: "m1"},
		{Type: chat.EventTextDelta, ID: "t1", Delta: "Hello"},
		{Type: chat.EventFinish},
	}}

	w := postChat(t, newChatRouter(runner, userID), chatBody(chatID, "Write a proposal"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v1", w.Header().Get("x-vercel-ai-ui-message-stream"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	lines := dataLines(t, w.Body.String())
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"type":"start","messageId":"m1"}`, lines[0])
	assert.JSONEq(t, `{"type":"text-delta","id":"t1","delta":"Hello"}`, lines[1])
	assert.JSONEq(t, `{"type":"finish"}`, lines[2])
	assert.Equal(t, "[DONE]", lines[3])

	assert.Equal(t, userID, runner.userID)
	assert.Equal(t, chatID, runner.got.ChatID)
	assert.Equal(t, "msg-1", runner.got.MessageID)
	assert.Equal(t, "Write a proposal", runner.got.Text)
}

func TestChatHandler_ErrorBeforeStreamIsJSON(t *testing.T) {
	runner := &fakeRunner{err: apperror.ErrForbidden}
	w := postChat(t, newChatRouter(runner, uuid.New()), chatBody(uuid.New(), "hi"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Unauthorized", env.Error.Message)
}

func TestChatHandler_InvalidBody(t *testing.T) {
	runner := &fakeRunner{}
	w := postChat(t, newChatRouter(runner, uuid.New()), map[string]any{"message": map[string]any{"parts": []any{}}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatMessageText(t *testing.T) {
	r := &fakeRunner{}
	body := chatBody(uuid.New(), "first")
	body["message"].(map[string]any)["parts"] = []map[string]any{
		{"type": "text", "text": "first"},
		{"type": "file", "text": "ignored"},
		{"type": "text", "text": "second"},
	}
	w := postChat(t, newChatRouter(r, uuid.New()), body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "first\nsecond", r.got.Text)
}
