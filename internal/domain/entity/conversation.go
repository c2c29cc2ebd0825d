package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

const maxConversationTitle = 60

// Conversation сессия AI-чата. ID приходит от клиента.
type Conversation struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewConversation(id, userID uuid.UUID, firstMessage string) (*Conversation, error) {
	if id == uuid.Nil {
		return nil, apperror.Validation("Chat id is required")
	}
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	now := time.Now().UTC()
	return &Conversation{
		ID:        id,
		UserID:    userID,
		Title:     TitleFromMessage(firstMessage),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c *Conversation) IsOwnedBy(userID uuid.UUID) bool {
	return c.UserID == userID
}

// TitleFromMessage берёт первую строку сообщения, обрезанную до 60 символов.
func TitleFromMessage(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if text == "" {
		return "New chat"
	}
	if utf8.RuneCountInString(text) <= maxConversationTitle {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxConversationTitle-1])) + "…"
}

// Типы частей сообщения.
const (
	PartText       = "text"
	PartToolCall   = "tool-call"
	PartToolResult = "tool-result"
)

// MessagePart часть сообщения: текст, вызов инструмента или его результат.
type MessagePart struct {
	Type       string         `json:"type"`
	Text       string         `json:"text,omitempty"`
	ToolCallID string         `json:"toolCallId,omitempty"`
	ToolName   string         `json:"toolName,omitempty"`
	Input      map[string]any `json:"input,omitempty"`
	Output     map[string]any `json:"output,omitempty"`
}

// Message сообщение чата. История только дописывается.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Role           valueobject.MessageRole
	Content        string
	Parts          []MessagePart
	CreatedAt      time.Time
}

func NewMessage(conversationID uuid.UUID, role valueobject.MessageRole, content string, parts []MessagePart) (*Message, error) {
	if !role.IsValid() {
		return nil, apperror.Validation("Invalid message role")
	}
	if strings.TrimSpace(content) == "" && len(parts) == 0 {
		return nil, apperror.Validation("Message cannot be empty")
	}
	if parts == nil {
		parts = []MessagePart{}
	}
	return &Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Parts:          parts,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// ToolCalls возвращает части с вызовами инструментов.
func (m *Message) ToolCalls() []MessagePart {
	var out []MessagePart
	for _, p := range m.Parts {
		if p.Type == PartToolCall {
			out = append(out, p)
		}
	}
	return out
}
