package portfolio

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

type TestimonialUseCase struct {
	repo     repository.TestimonialRepository
	projects repository.ProjectRepository
}

func NewTestimonialUseCase(repo repository.TestimonialRepository, projects repository.ProjectRepository) *TestimonialUseCase {
	return &TestimonialUseCase{repo: repo, projects: projects}
}

func (uc *TestimonialUseCase) loadOwned(ctx context.Context, id, userID uuid.UUID, verb string) (*entity.Testimonial, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	t, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, verb, "testimonial")
	}
	if !t.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}
	return t, nil
}

// checkProject: ссылка на проект допустима только на свой проект.
func (uc *TestimonialUseCase) checkProject(ctx context.Context, projectID *uuid.UUID, userID uuid.UUID, verb string) error {
	if projectID == nil || uc.projects == nil {
		return nil
	}
	p, err := uc.projects.FindByID(ctx, *projectID)
	if err != nil {
		return apperror.Internal(err, verb, "testimonial")
	}
	if !p.IsOwnedBy(userID) {
		return apperror.ErrForbidden
	}
	return nil
}

func (uc *TestimonialUseCase) Create(ctx context.Context, userID uuid.UUID, params entity.TestimonialParams) (*entity.Testimonial, error) {
	t, err := entity.NewTestimonial(userID, params)
	if err != nil {
		return nil, err
	}
	if err := uc.checkProject(ctx, t.ProjectID, userID, "create"); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, apperror.Internal(err, "create", "testimonial")
	}
	return t, nil
}

func (uc *TestimonialUseCase) Get(ctx context.Context, id, userID uuid.UUID) (*entity.Testimonial, error) {
	return uc.loadOwned(ctx, id, userID, "get")
}

func (uc *TestimonialUseCase) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*entity.Testimonial, pagination.Page, error) {
	if userID == uuid.Nil {
		return nil, pagination.Page{}, apperror.ErrUnauthorized
	}
	params := pagination.Normalize(page, pageSize)
	items, total, err := uc.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pagination.Page{}, apperror.Internal(err, "list", "testimonials")
	}
	return items, params.Meta(total), nil
}

func (uc *TestimonialUseCase) Update(ctx context.Context, id, userID uuid.UUID, patch entity.TestimonialPatch) (*entity.Testimonial, error) {
	t, err := uc.loadOwned(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}
	if err := t.Apply(patch); err != nil {
		return nil, err
	}
	if err := uc.checkProject(ctx, patch.ProjectID, userID, "update"); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, t); err != nil {
		return nil, apperror.Internal(err, "update", "testimonial")
	}
	return t, nil
}

func (uc *TestimonialUseCase) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := uc.loadOwned(ctx, id, userID, "delete"); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err, "delete", "testimonial")
	}
	return nil
}
