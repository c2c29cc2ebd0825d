package conversation

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

type ListConversationsUseCase struct {
	convRepo repository.ConversationRepository
}

func NewListConversationsUseCase(convRepo repository.ConversationRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{convRepo: convRepo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*entity.Conversation, pagination.Page, error) {
	if userID == uuid.Nil {
		return nil, pagination.Page{}, apperror.ErrUnauthorized
	}
	params := pagination.Normalize(page, pageSize)
	items, total, err := uc.convRepo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pagination.Page{}, apperror.Internal(err, "list", "conversations")
	}
	return items, params.Meta(total), nil
}

// ConversationWithMessages беседа и её история по времени создания.
type ConversationWithMessages struct {
	Conversation *entity.Conversation
	Messages     []*entity.Message
}

type GetConversationUseCase struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
}

func NewGetConversationUseCase(convRepo repository.ConversationRepository, msgRepo repository.MessageRepository) *GetConversationUseCase {
	return &GetConversationUseCase{convRepo: convRepo, msgRepo: msgRepo}
}

func (uc *GetConversationUseCase) Execute(ctx context.Context, id, userID uuid.UUID) (*ConversationWithMessages, error) {
	conv, err := LoadOwned(ctx, uc.convRepo, id, userID)
	if err != nil {
		return nil, err
	}
	msgs, err := uc.msgRepo.ListByConversation(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "get", "conversation")
	}
	return &ConversationWithMessages{Conversation: conv, Messages: msgs}, nil
}

type DeleteConversationUseCase struct {
	convRepo repository.ConversationRepository
}

func NewDeleteConversationUseCase(convRepo repository.ConversationRepository) *DeleteConversationUseCase {
	return &DeleteConversationUseCase{convRepo: convRepo}
}

// Execute удаляет беседу. Сообщения удаляются каскадом.
func (uc *DeleteConversationUseCase) Execute(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := LoadOwned(ctx, uc.convRepo, id, userID); err != nil {
		return err
	}
	if err := uc.convRepo.Delete(ctx, id); err != nil {
		return apperror.Internal(err, "delete", "conversation")
	}
	return nil
}

// LoadOwned находит беседу и проверяет владельца.
func LoadOwned(ctx context.Context, repo repository.ConversationRepository, id, userID uuid.UUID) (*entity.Conversation, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	conv, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "get", "conversation")
	}
	if !conv.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}
	return conv, nil
}
