package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

// ChatRequest тело POST /api/chat в формате UI-сообщений.
type ChatRequest struct {
	ID      uuid.UUID       `json:"id" binding:"required"`
	Message ChatMessageBody `json:"message" binding:"required"`
}

type ChatMessageBody struct {
	ID    string         `json:"id"`
	Role  string         `json:"role" binding:"omitempty,eq=user"`
	Parts []ChatTextPart `json:"parts" binding:"required,min=1,dive"`
}

type ChatTextPart struct {
	Type string `json:"type" binding:"required"`
	Text string `json:"text"`
}

// Text склеивает текстовые части сообщения.
func (m ChatMessageBody) Text() string {
	var parts []string
	for _, p := range m.Parts {
		if p.Type == entity.PartText && strings.TrimSpace(p.Text) != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

type ConversationResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MessageResponse struct {
	ID        uuid.UUID            `json:"id"`
	Role      string               `json:"role"`
	Content   string               `json:"content"`
	Parts     []entity.MessagePart `json:"parts"`
	CreatedAt time.Time            `json:"createdAt"`
}

type ConversationDetailResponse struct {
	ConversationResponse
	Messages []MessageResponse `json:"messages"`
}

func ToConversationResponse(conv *entity.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}

func ToConversationResponses(convs []*entity.Conversation) []ConversationResponse {
	result := make([]ConversationResponse, len(convs))
	for i, conv := range convs {
		result[i] = ToConversationResponse(conv)
	}
	return result
}

func ToMessageResponse(msg *entity.Message) MessageResponse {
	parts := msg.Parts
	if parts == nil {
		parts = []entity.MessagePart{}
	}
	return MessageResponse{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		Parts:     parts,
		CreatedAt: msg.CreatedAt,
	}
}

func ToConversationDetail(conv *entity.Conversation, msgs []*entity.Message) ConversationDetailResponse {
	out := ConversationDetailResponse{
		ConversationResponse: ToConversationResponse(conv),
		Messages:             make([]MessageResponse, len(msgs)),
	}
	for i, msg := range msgs {
		out.Messages[i] = ToMessageResponse(msg)
	}
	return out
}
