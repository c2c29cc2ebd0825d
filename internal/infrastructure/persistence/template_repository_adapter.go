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
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

const templateColumns = `id, user_id, title, description, content, tone, status, category, tags,
	usage_count, is_favorite, is_public, last_used_at, created_at, updated_at`

type TemplateRepositoryAdapter struct {
	db *sqlx.DB
}

func NewTemplateRepositoryAdapter(db *sqlx.DB) *TemplateRepositoryAdapter {
	return &TemplateRepositoryAdapter{db: db}
}

var _ repository.TemplateRepository = (*TemplateRepositoryAdapter)(nil)

func (r *TemplateRepositoryAdapter) Create(ctx context.Context, t *entity.Template) error {
	query := `
		INSERT INTO templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Content, string(t.Tone), string(t.Status),
		t.Category, pq.StringArray(t.Tags), t.UsageCount, t.IsFavorite, t.IsPublic,
		t.LastUsedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to create template")
	}
	return nil
}

func (r *TemplateRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	var row templateRow
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrTemplateNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get template")
	}
	return row.toEntity(), nil
}

func (r *TemplateRepositoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID, filter repository.TemplateFilter) ([]*entity.Template, int, error) {
	var w whereBuilder
	w.add("user_id = ?", userID)
	if filter.Status != nil {
		w.add("status = ?", string(*filter.Status))
	}
	if filter.FavoritesOnly {
		w.addRaw("is_favorite = TRUE")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM templates`+w.String(), w.args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list templates")
	}

	where := w.String()
	limit := w.next(filter.Page.Limit())
	offset := w.next(filter.Page.Offset())
	query := `SELECT ` + templateColumns + ` FROM templates` + where +
		` ORDER BY updated_at DESC, id LIMIT ` + limit + ` OFFSET ` + offset

	var rows []templateRow
	if err := r.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list templates")
	}
	return toTemplateEntities(rows), total, nil
}

func (r *TemplateRepositoryAdapter) Update(ctx context.Context, t *entity.Template) error {
	query := `
		UPDATE templates SET title = $2, description = $3, content = $4, tone = $5, status = $6,
		category = $7, tags = $8, is_favorite = $9, is_public = $10, updated_at = $11
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.Content, string(t.Tone), string(t.Status),
		t.Category, pq.StringArray(t.Tags), t.IsFavorite, t.IsPublic, t.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to update template")
	}
	return requireAffected(res, apperror.ErrTemplateNotFound)
}

func (r *TemplateRepositoryAdapter) IncrementUsage(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	return r.incrementUsage(ctx, r.db, id)
}

// incrementUsage общий для обычного вызова и транзакции создания предложения.
func (r *TemplateRepositoryAdapter) incrementUsage(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*entity.Template, error) {
	var row templateRow
	query := `
		UPDATE templates SET usage_count = usage_count + 1, last_used_at = $2
		WHERE id = $1
		RETURNING ` + templateColumns
	if err := sqlx.GetContext(ctx, q, &row, query, id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrTemplateNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to update template")
	}
	return row.toEntity(), nil
}

func (r *TemplateRepositoryAdapter) ToggleFavorite(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	var row templateRow
	query := `UPDATE templates SET is_favorite = NOT is_favorite WHERE id = $1 RETURNING ` + templateColumns
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrTemplateNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to update template")
	}
	return row.toEntity(), nil
}

func (r *TemplateRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to delete template")
	}
	return requireAffected(res, apperror.ErrTemplateNotFound)
}

type templateRow struct {
	ID          uuid.UUID      `db:"id"`
	UserID      uuid.UUID      `db:"user_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Content     string         `db:"content"`
	Tone        string         `db:"tone"`
	Status      string         `db:"status"`
	Category    string         `db:"category"`
	Tags        pq.StringArray `db:"tags"`
	UsageCount  int            `db:"usage_count"`
	IsFavorite  bool           `db:"is_favorite"`
	IsPublic    bool           `db:"is_public"`
	LastUsedAt  *time.Time     `db:"last_used_at"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (t *templateRow) toEntity() *entity.Template {
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &entity.Template{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Content:     t.Content,
		Tone:        valueobject.ToneOrDefault(t.Tone),
		Status:      valueobject.TemplateStatus(t.Status),
		Category:    t.Category,
		Tags:        tags,
		UsageCount:  t.UsageCount,
		IsFavorite:  t.IsFavorite,
		IsPublic:    t.IsPublic,
		LastUsedAt:  t.LastUsedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTemplateEntities(rows []templateRow) []*entity.Template {
	result := make([]*entity.Template, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

// requireAffected превращает UPDATE/DELETE без затронутых строк в notFound.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to read affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
