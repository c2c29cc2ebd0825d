package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type CreateProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	templateRepo repository.TemplateRepository
	events       repository.EventPublisher
}

func NewCreateProposalUseCase(
	proposalRepo repository.ProposalRepository,
	templateRepo repository.TemplateRepository,
	events repository.EventPublisher,
) *CreateProposalUseCase {
	return &CreateProposalUseCase{
		proposalRepo: proposalRepo,
		templateRepo: templateRepo,
		events:       events,
	}
}

// Execute сохраняет предложение. Шаблон, если указан, должен принадлежать
// пользователю; счётчик его использований растёт вместе со вставкой.
func (uc *CreateProposalUseCase) Execute(ctx context.Context, userID uuid.UUID, params entity.ProposalParams) (*entity.ProposalTracking, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	if params.TemplateID != nil {
		tpl, err := uc.templateRepo.FindByID(ctx, *params.TemplateID)
		if err != nil {
			return nil, apperror.Internal(err, "create", "proposal")
		}
		if !tpl.IsOwnedBy(userID) {
			return nil, apperror.ErrForbidden
		}
	}

	p, err := entity.NewProposalTracking(userID, params)
	if err != nil {
		return nil, err
	}
	if err := uc.proposalRepo.Create(ctx, p); err != nil {
		return nil, apperror.Internal(err, "create", "proposal")
	}

	publish(uc.events, userID, repository.EventProposalCreated, p)
	return p, nil
}
