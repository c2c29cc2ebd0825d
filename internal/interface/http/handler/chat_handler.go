package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/usecase/chat"
)

// ChatRunner выполняет один ход чата, отдавая события через emit.
type ChatRunner interface {
	Run(ctx context.Context, userID uuid.UUID, req chat.TurnRequest, emit chat.Emitter) error
}

type ChatHandler struct {
	agent ChatRunner
}

func NewChatHandler(agent ChatRunner) *ChatHandler {
	return &ChatHandler{agent: agent}
}

// sseWriter пишет заголовки потока при первом событии, чтобы ошибки до
// начала хода (валидация, чужой чат) ушли обычным JSON с нужным статусом.
type sseWriter struct {
	c       *gin.Context
	flusher http.Flusher
	started bool
}

func (w *sseWriter) start() {
	if w.started {
		return
	}
	h := w.c.Writer.Header()
	h.Set("Content-Type", "text/event-stream; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("x-vercel-ai-ui-message-stream", "v1")
	w.c.Status(http.StatusOK)
	w.started = true
}

func (w *sseWriter) write(payload []byte) error {
	w.start()
	if _, err := fmt.Fprintf(w.c.Writer, "data: %s\n\n", payload); err != nil {
		return err
	}
	w.flusher.Flush()
	return nil
}

func (w *sseWriter) emit(e chat.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return w.write(payload)
}

// Chat POST /api/chat, ответ потоком UI-сообщений.
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming is not supported"})
		return
	}

	w := &sseWriter{c: c, flusher: flusher}
	err := h.agent.Run(c.Request.Context(), userID, chat.TurnRequest{
		ChatID:    req.ID,
		MessageID: req.Message.ID,
		Text:      req.Message.Text(),
	}, w.emit)

	if !w.started {
		if err != nil {
			response.Error(c, err)
			return
		}
		w.start()
	}
	if err != nil {
		// поток уже начат, клиент скорее всего отключился
		logger.WithRequest(c).WithError(err).Warn("[CHAT] Поток прерван")
		return
	}
	_ = w.write([]byte("[DONE]"))
}
