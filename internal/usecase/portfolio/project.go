package portfolio

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

// ProjectUseCase CRUD кейсов портфолио.
type ProjectUseCase struct {
	repo    repository.ProjectRepository
	storage repository.ImageStorage
}

func NewProjectUseCase(repo repository.ProjectRepository, storage repository.ImageStorage) *ProjectUseCase {
	return &ProjectUseCase{repo: repo, storage: storage}
}

func (uc *ProjectUseCase) loadOwned(ctx context.Context, id, userID uuid.UUID, verb string) (*entity.Project, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, verb, "project")
	}
	if !p.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}
	return p, nil
}

func (uc *ProjectUseCase) Create(ctx context.Context, userID uuid.UUID, params entity.ProjectParams) (*entity.Project, error) {
	p, err := entity.NewProject(userID, params)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, apperror.Internal(err, "create", "project")
	}
	return p, nil
}

func (uc *ProjectUseCase) Get(ctx context.Context, id, userID uuid.UUID) (*entity.Project, error) {
	return uc.loadOwned(ctx, id, userID, "get")
}

func (uc *ProjectUseCase) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*entity.Project, pagination.Page, error) {
	if userID == uuid.Nil {
		return nil, pagination.Page{}, apperror.ErrUnauthorized
	}
	params := pagination.Normalize(page, pageSize)
	items, total, err := uc.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pagination.Page{}, apperror.Internal(err, "list", "projects")
	}
	return items, params.Meta(total), nil
}

func (uc *ProjectUseCase) Update(ctx context.Context, id, userID uuid.UUID, patch entity.ProjectPatch) (*entity.Project, error) {
	p, err := uc.loadOwned(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}
	if err := p.Apply(patch); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, apperror.Internal(err, "update", "project")
	}
	return p, nil
}

func (uc *ProjectUseCase) Delete(ctx context.Context, id, userID uuid.UUID) error {
	p, err := uc.loadOwned(ctx, id, userID, "delete")
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err, "delete", "project")
	}
	if p.CoverImage != nil {
		uc.removeImage(ctx, *p.CoverImage)
	}
	return nil
}

// SetCover сохраняет новую обложку и удаляет прежнюю.
func (uc *ProjectUseCase) SetCover(ctx context.Context, id, userID uuid.UUID, filename, contentType string, r io.Reader) (*entity.Project, error) {
	if uc.storage == nil {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "File storage is not configured")
	}
	p, err := uc.loadOwned(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	key, _, err := uc.storage.Save(ctx, userID, filename, contentType, r)
	if err != nil {
		return nil, apperror.Internal(err, "upload", "cover image")
	}

	previous := p.CoverImage
	p.SetCover(key)
	if err := uc.repo.Update(ctx, p); err != nil {
		uc.removeImage(ctx, key)
		return nil, apperror.Internal(err, "update", "project")
	}
	if previous != nil {
		uc.removeImage(ctx, *previous)
	}
	return p, nil
}

// CoverURL публичный адрес обложки или пустая строка.
func (uc *ProjectUseCase) CoverURL(p *entity.Project) string {
	if p.CoverImage == nil || uc.storage == nil {
		return ""
	}
	return uc.storage.URL(*p.CoverImage)
}

func (uc *ProjectUseCase) removeImage(ctx context.Context, key string) {
	if uc.storage == nil {
		return
	}
	if err := uc.storage.Delete(ctx, key); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("[PORTFOLIO] Не удалось удалить файл обложки")
	}
}
