package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

type GetTemplateUseCase struct {
	templateRepo repository.TemplateRepository
}

func NewGetTemplateUseCase(templateRepo repository.TemplateRepository) *GetTemplateUseCase {
	return &GetTemplateUseCase{templateRepo: templateRepo}
}

func (uc *GetTemplateUseCase) Execute(ctx context.Context, id, userID uuid.UUID) (*entity.Template, error) {
	return loadOwned(ctx, uc.templateRepo, id, userID, "get")
}

type ListTemplatesInput struct {
	Page          int
	PageSize      int
	Status        string
	FavoritesOnly bool
}

type ListTemplatesUseCase struct {
	templateRepo repository.TemplateRepository
}

func NewListTemplatesUseCase(templateRepo repository.TemplateRepository) *ListTemplatesUseCase {
	return &ListTemplatesUseCase{templateRepo: templateRepo}
}

func (uc *ListTemplatesUseCase) Execute(ctx context.Context, userID uuid.UUID, input ListTemplatesInput) ([]*entity.Template, pagination.Page, error) {
	if userID == uuid.Nil {
		return nil, pagination.Page{}, apperror.ErrUnauthorized
	}

	page := pagination.Normalize(input.Page, input.PageSize)
	filter := repository.TemplateFilter{FavoritesOnly: input.FavoritesOnly, Page: page}
	if input.Status != "" {
		status, err := valueobject.NewTemplateStatus(input.Status)
		if err != nil {
			return nil, pagination.Page{}, err
		}
		filter.Status = &status
	}

	items, total, err := uc.templateRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, pagination.Page{}, apperror.Internal(err, "list", "templates")
	}
	return items, page.Meta(total), nil
}
