package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

type GetProposalUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewGetProposalUseCase(proposalRepo repository.ProposalRepository) *GetProposalUseCase {
	return &GetProposalUseCase{proposalRepo: proposalRepo}
}

func (uc *GetProposalUseCase) Execute(ctx context.Context, id, userID uuid.UUID) (*entity.ProposalTracking, error) {
	return loadOwned(ctx, uc.proposalRepo, id, userID, "get")
}

type ListProposalsInput struct {
	Page     int
	PageSize int
	Outcome  string
	Platform string
}

type ListProposalsUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewListProposalsUseCase(proposalRepo repository.ProposalRepository) *ListProposalsUseCase {
	return &ListProposalsUseCase{proposalRepo: proposalRepo}
}

func (uc *ListProposalsUseCase) Execute(ctx context.Context, userID uuid.UUID, input ListProposalsInput) ([]*entity.ProposalTracking, pagination.Page, error) {
	if userID == uuid.Nil {
		return nil, pagination.Page{}, apperror.ErrUnauthorized
	}

	page := pagination.Normalize(input.Page, input.PageSize)
	filter := repository.ProposalFilter{
		Platform: entity.NormalizePlatform(input.Platform),
		Page:     page,
	}
	if input.Outcome != "" {
		outcome, err := valueobject.NewProposalOutcome(input.Outcome)
		if err != nil {
			return nil, pagination.Page{}, err
		}
		filter.Outcome = &outcome
	}

	items, total, err := uc.proposalRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, pagination.Page{}, apperror.Internal(err, "list", "proposals")
	}
	return items, page.Meta(total), nil
}
