package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Project, int, error)
	Update(ctx context.Context, project *entity.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TestimonialRepository interface {
	Create(ctx context.Context, testimonial *entity.Testimonial) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Testimonial, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Testimonial, int, error)
	Update(ctx context.Context, testimonial *entity.Testimonial) error
	Delete(ctx context.Context, id uuid.UUID) error
}
