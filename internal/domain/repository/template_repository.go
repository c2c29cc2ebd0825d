package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

// TemplateFilter параметры выборки шаблонов владельца.
type TemplateFilter struct {
	Status        *valueobject.TemplateStatus
	FavoritesOnly bool
	Page          pagination.Params
}

// TemplateRepository не проверяет владельца: это делает слой use case.
type TemplateRepository interface {
	Create(ctx context.Context, template *entity.Template) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Template, error)
	// ListByUser сортирует по updated_at DESC и возвращает общее количество.
	ListByUser(ctx context.Context, userID uuid.UUID, filter TemplateFilter) ([]*entity.Template, int, error)
	Update(ctx context.Context, template *entity.Template) error
	// IncrementUsage атомарно добавляет 1 к usage_count и ставит last_used_at.
	IncrementUsage(ctx context.Context, id uuid.UUID) (*entity.Template, error)
	ToggleFavorite(ctx context.Context, id uuid.UUID) (*entity.Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
