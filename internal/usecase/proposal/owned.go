package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

func loadOwned(ctx context.Context, repo repository.ProposalRepository, id, userID uuid.UUID, verb string) (*entity.ProposalTracking, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	p, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, verb, "proposal")
	}
	if !p.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}
	return p, nil
}

func publish(events repository.EventPublisher, userID uuid.UUID, event string, data any) {
	if events != nil {
		events.Publish(userID, event, data)
	}
}
