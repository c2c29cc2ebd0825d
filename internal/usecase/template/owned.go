package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// loadOwned находит шаблон и проверяет, что он принадлежит userID.
func loadOwned(ctx context.Context, repo repository.TemplateRepository, id, userID uuid.UUID, verb string) (*entity.Template, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	t, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, verb, "template")
	}
	if !t.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}
	return t, nil
}

func publish(events repository.EventPublisher, userID uuid.UUID, event string, data any) {
	if events != nil {
		events.Publish(userID, event, data)
	}
}
