package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

const projectColumns = `id, user_id, title, description, client_name, url, technologies, results,
	cover_image, completed_at, created_at, updated_at`

type ProjectRepositoryAdapter struct {
	db *sqlx.DB
}

func NewProjectRepositoryAdapter(db *sqlx.DB) *ProjectRepositoryAdapter {
	return &ProjectRepositoryAdapter{db: db}
}

var _ repository.ProjectRepository = (*ProjectRepositoryAdapter)(nil)

func (r *ProjectRepositoryAdapter) Create(ctx context.Context, p *entity.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Title, p.Description, p.ClientName, p.URL, pq.StringArray(p.Technologies),
		p.Results, p.CoverImage, p.CompletedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to create project")
	}
	return nil
}

func (r *ProjectRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	var row projectRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get project")
	}
	return row.toEntity(), nil
}

func (r *ProjectRepositoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Project, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM projects WHERE user_id = $1`, userID); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list projects")
	}
	var rows []projectRow
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1
		ORDER BY updated_at DESC, id LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, page.Limit(), page.Offset()); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list projects")
	}
	result := make([]*entity.Project, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, total, nil
}

func (r *ProjectRepositoryAdapter) Update(ctx context.Context, p *entity.Project) error {
	query := `
		UPDATE projects SET title = $2, description = $3, client_name = $4, url = $5,
		technologies = $6, results = $7, cover_image = $8, completed_at = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.ClientName, p.URL, pq.StringArray(p.Technologies),
		p.Results, p.CoverImage, p.CompletedAt, p.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to update project")
	}
	return requireAffected(res, apperror.ErrProjectNotFound)
}

func (r *ProjectRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to delete project")
	}
	return requireAffected(res, apperror.ErrProjectNotFound)
}

type projectRow struct {
	ID           uuid.UUID      `db:"id"`
	UserID       uuid.UUID      `db:"user_id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	ClientName   string         `db:"client_name"`
	URL          string         `db:"url"`
	Technologies pq.StringArray `db:"technologies"`
	Results      string         `db:"results"`
	CoverImage   *string        `db:"cover_image"`
	CompletedAt  *time.Time     `db:"completed_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (p *projectRow) toEntity() *entity.Project {
	tech := []string(p.Technologies)
	if tech == nil {
		tech = []string{}
	}
	return &entity.Project{
		ID:           p.ID,
		UserID:       p.UserID,
		Title:        p.Title,
		Description:  p.Description,
		ClientName:   p.ClientName,
		URL:          p.URL,
		Technologies: tech,
		Results:      p.Results,
		CoverImage:   p.CoverImage,
		CompletedAt:  p.CompletedAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

const testimonialColumns = `id, user_id, client_name, client_title, company, content, rating,
	project_id, created_at, updated_at`

type TestimonialRepositoryAdapter struct {
	db *sqlx.DB
}

func NewTestimonialRepositoryAdapter(db *sqlx.DB) *TestimonialRepositoryAdapter {
	return &TestimonialRepositoryAdapter{db: db}
}

var _ repository.TestimonialRepository = (*TestimonialRepositoryAdapter)(nil)

func (r *TestimonialRepositoryAdapter) Create(ctx context.Context, t *entity.Testimonial) error {
	query := `
		INSERT INTO testimonials (` + testimonialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.ClientName, t.ClientTitle, t.Company, t.Content, t.Rating,
		t.ProjectID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to create testimonial")
	}
	return nil
}

func (r *TestimonialRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Testimonial, error) {
	var row testimonialRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+testimonialColumns+` FROM testimonials WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrTestimonialNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get testimonial")
	}
	return row.toEntity(), nil
}

func (r *TestimonialRepositoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Testimonial, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM testimonials WHERE user_id = $1`, userID); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list testimonials")
	}
	var rows []testimonialRow
	query := `SELECT ` + testimonialColumns + ` FROM testimonials WHERE user_id = $1
		ORDER BY updated_at DESC, id LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, page.Limit(), page.Offset()); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list testimonials")
	}
	result := make([]*entity.Testimonial, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, total, nil
}

func (r *TestimonialRepositoryAdapter) Update(ctx context.Context, t *entity.Testimonial) error {
	query := `
		UPDATE testimonials SET client_name = $2, client_title = $3, company = $4, content = $5,
		rating = $6, project_id = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.ClientName, t.ClientTitle, t.Company, t.Content, t.Rating, t.ProjectID, t.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to update testimonial")
	}
	return requireAffected(res, apperror.ErrTestimonialNotFound)
}

func (r *TestimonialRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to delete testimonial")
	}
	return requireAffected(res, apperror.ErrTestimonialNotFound)
}

type testimonialRow struct {
	ID          uuid.UUID     `db:"id"`
	UserID      uuid.UUID     `db:"user_id"`
	ClientName  string        `db:"client_name"`
	ClientTitle string        `db:"client_title"`
	Company     string        `db:"company"`
	Content     string        `db:"content"`
	Rating      sql.NullInt16 `db:"rating"`
	ProjectID   *uuid.UUID    `db:"project_id"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (t *testimonialRow) toEntity() *entity.Testimonial {
	var rating *int
	if t.Rating.Valid {
		v := int(t.Rating.Int16)
		rating = &v
	}
	return &entity.Testimonial{
		ID:          t.ID,
		UserID:      t.UserID,
		ClientName:  t.ClientName,
		ClientTitle: t.ClientTitle,
		Company:     t.Company,
		Content:     t.Content,
		Rating:      rating,
		ProjectID:   t.ProjectID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
