package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type CreateTemplateUseCase struct {
	templateRepo repository.TemplateRepository
	events       repository.EventPublisher
}

func NewCreateTemplateUseCase(templateRepo repository.TemplateRepository, events repository.EventPublisher) *CreateTemplateUseCase {
	return &CreateTemplateUseCase{templateRepo: templateRepo, events: events}
}

func (uc *CreateTemplateUseCase) Execute(ctx context.Context, userID uuid.UUID, params entity.TemplateParams) (*entity.Template, error) {
	t, err := entity.NewTemplate(userID, params)
	if err != nil {
		return nil, err
	}
	if err := uc.templateRepo.Create(ctx, t); err != nil {
		return nil, apperror.Internal(err, "create", "template")
	}
	publish(uc.events, userID, repository.EventTemplateCreated, t)
	return t, nil
}
