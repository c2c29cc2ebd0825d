package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

type ProposalFilter struct {
	Outcome  *valueobject.ProposalOutcome
	Platform string
	Page     pagination.Params
}

type ProposalRepository interface {
	// Create сохраняет предложение. Если указан TemplateID, в той же
	// транзакции увеличивается счётчик использований шаблона.
	Create(ctx context.Context, proposal *entity.ProposalTracking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ProposalTracking, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ProposalFilter) ([]*entity.ProposalTracking, int, error)
	Update(ctx context.Context, proposal *entity.ProposalTracking) error
	Delete(ctx context.Context, id uuid.UUID) error
}
