package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type OutcomeChangedEvent struct {
	ProposalID uuid.UUID `json:"proposalId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
}

// UpdateProposalUseCase частичное обновление предложения, включая исход.
type UpdateProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	events       repository.EventPublisher
	strict       bool
}

func NewUpdateProposalUseCase(proposalRepo repository.ProposalRepository, events repository.EventPublisher, strict bool) *UpdateProposalUseCase {
	return &UpdateProposalUseCase{proposalRepo: proposalRepo, events: events, strict: strict}
}

func (uc *UpdateProposalUseCase) Execute(ctx context.Context, id, userID uuid.UUID, patch entity.ProposalPatch) (*entity.ProposalTracking, error) {
	p, err := loadOwned(ctx, uc.proposalRepo, id, userID, "update")
	if err != nil {
		return nil, err
	}
	before := p.CurrentOutcome

	if err := p.Apply(patch, uc.strict); err != nil {
		return nil, err
	}
	if err := uc.proposalRepo.Update(ctx, p); err != nil {
		return nil, apperror.Internal(err, "update", "proposal")
	}

	if p.CurrentOutcome != before {
		publish(uc.events, userID, repository.EventProposalOutcomeChanged, OutcomeChangedEvent{
			ProposalID: p.ID,
			From:       string(before),
			To:         string(p.CurrentOutcome),
		})
	}
	return p, nil
}

// UpdateProposalStatusUseCase меняет только исход.
type UpdateProposalStatusUseCase struct {
	update *UpdateProposalUseCase
}

func NewUpdateProposalStatusUseCase(proposalRepo repository.ProposalRepository, events repository.EventPublisher, strict bool) *UpdateProposalStatusUseCase {
	return &UpdateProposalStatusUseCase{update: NewUpdateProposalUseCase(proposalRepo, events, strict)}
}

func (uc *UpdateProposalStatusUseCase) Execute(ctx context.Context, id, userID uuid.UUID, outcome string) (*entity.ProposalTracking, error) {
	return uc.update.Execute(ctx, id, userID, entity.ProposalPatch{Outcome: &outcome})
}

type DeleteProposalUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewDeleteProposalUseCase(proposalRepo repository.ProposalRepository) *DeleteProposalUseCase {
	return &DeleteProposalUseCase{proposalRepo: proposalRepo}
}

func (uc *DeleteProposalUseCase) Execute(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := loadOwned(ctx, uc.proposalRepo, id, userID, "delete"); err != nil {
		return err
	}
	if err := uc.proposalRepo.Delete(ctx, id); err != nil {
		return apperror.Internal(err, "delete", "proposal")
	}
	return nil
}
