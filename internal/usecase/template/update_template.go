package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type UpdateTemplateUseCase struct {
	templateRepo repository.TemplateRepository
}

func NewUpdateTemplateUseCase(templateRepo repository.TemplateRepository) *UpdateTemplateUseCase {
	return &UpdateTemplateUseCase{templateRepo: templateRepo}
}

func (uc *UpdateTemplateUseCase) Execute(ctx context.Context, id, userID uuid.UUID, patch entity.TemplatePatch) (*entity.Template, error) {
	t, err := loadOwned(ctx, uc.templateRepo, id, userID, "update")
	if err != nil {
		return nil, err
	}
	if err := t.Apply(patch); err != nil {
		return nil, err
	}
	if err := uc.templateRepo.Update(ctx, t); err != nil {
		return nil, apperror.Internal(err, "update", "template")
	}
	return t, nil
}

type DeleteTemplateUseCase struct {
	templateRepo repository.TemplateRepository
}

func NewDeleteTemplateUseCase(templateRepo repository.TemplateRepository) *DeleteTemplateUseCase {
	return &DeleteTemplateUseCase{templateRepo: templateRepo}
}

// Execute удаляет шаблон. Связанные предложения удаляются каскадом.
func (uc *DeleteTemplateUseCase) Execute(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := loadOwned(ctx, uc.templateRepo, id, userID, "delete"); err != nil {
		return err
	}
	if err := uc.templateRepo.Delete(ctx, id); err != nil {
		return apperror.Internal(err, "delete", "template")
	}
	return nil
}
