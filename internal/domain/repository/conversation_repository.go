package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

type ConversationRepository interface {
	Create(ctx context.Context, conv *entity.Conversation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Conversation, int, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MessageRepository interface {
	// Append сохраняет сообщения одной пачкой в порядке следования.
	Append(ctx context.Context, messages []*entity.Message) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*entity.Message, error)
}
