package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type DuplicateTemplateUseCase struct {
	templateRepo repository.TemplateRepository
	events       repository.EventPublisher
}

func NewDuplicateTemplateUseCase(templateRepo repository.TemplateRepository, events repository.EventPublisher) *DuplicateTemplateUseCase {
	return &DuplicateTemplateUseCase{templateRepo: templateRepo, events: events}
}

func (uc *DuplicateTemplateUseCase) Execute(ctx context.Context, id, userID uuid.UUID) (*entity.Template, error) {
	src, err := loadOwned(ctx, uc.templateRepo, id, userID, "duplicate")
	if err != nil {
		return nil, err
	}
	dup := src.Duplicate()
	if err := uc.templateRepo.Create(ctx, dup); err != nil {
		return nil, apperror.Internal(err, "duplicate", "template")
	}
	publish(uc.events, userID, repository.EventTemplateCreated, dup)
	return dup, nil
}

type ToggleFavoriteUseCase struct {
	templateRepo repository.TemplateRepository
}

func NewToggleFavoriteUseCase(templateRepo repository.TemplateRepository) *ToggleFavoriteUseCase {
	return &ToggleFavoriteUseCase{templateRepo: templateRepo}
}

func (uc *ToggleFavoriteUseCase) Execute(ctx context.Context, id, userID uuid.UUID) (*entity.Template, error) {
	if _, err := loadOwned(ctx, uc.templateRepo, id, userID, "update"); err != nil {
		return nil, err
	}
	t, err := uc.templateRepo.ToggleFavorite(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "update", "template")
	}
	return t, nil
}

// IncrementUsageUseCase отмечает ручное использование шаблона.
type IncrementUsageUseCase struct {
	templateRepo repository.TemplateRepository
}

func NewIncrementUsageUseCase(templateRepo repository.TemplateRepository) *IncrementUsageUseCase {
	return &IncrementUsageUseCase{templateRepo: templateRepo}
}

func (uc *IncrementUsageUseCase) Execute(ctx context.Context, id, userID uuid.UUID) (*entity.Template, error) {
	if _, err := loadOwned(ctx, uc.templateRepo, id, userID, "update"); err != nil {
		return nil, err
	}
	t, err := uc.templateRepo.IncrementUsage(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "update", "template")
	}
	return t, nil
}
