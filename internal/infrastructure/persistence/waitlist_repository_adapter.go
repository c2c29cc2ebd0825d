package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

const waitlistColumns = `id, email, name, reason, is_active, requested_at, activated_at, created_at, updated_at`

type WaitlistRepositoryAdapter struct {
	db *sqlx.DB
}

func NewWaitlistRepositoryAdapter(db *sqlx.DB) *WaitlistRepositoryAdapter {
	return &WaitlistRepositoryAdapter{db: db}
}

var _ repository.WaitlistRepository = (*WaitlistRepositoryAdapter)(nil)

func (r *WaitlistRepositoryAdapter) Create(ctx context.Context, e *entity.WaitlistEntry) error {
	query := `INSERT INTO waitlist (` + waitlistColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Email, e.Name, e.Reason, e.IsActive, e.RequestedAt, e.ActivatedAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.New(apperror.ErrCodeConflict, "Email is already on the waitlist")
		}
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to add waitlist entry")
	}
	return nil
}

func (r *WaitlistRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
	return r.findOne(ctx, `SELECT `+waitlistColumns+` FROM waitlist WHERE id = $1`, id)
}

func (r *WaitlistRepositoryAdapter) FindByEmail(ctx context.Context, email string) (*entity.WaitlistEntry, error) {
	return r.findOne(ctx, `SELECT `+waitlistColumns+` FROM waitlist WHERE email = $1`, email)
}

func (r *WaitlistRepositoryAdapter) findOne(ctx context.Context, query string, arg any) (*entity.WaitlistEntry, error) {
	var e entity.WaitlistEntry
	if err := r.db.GetContext(ctx, &e, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrWaitlistNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get waitlist entry")
	}
	return &e, nil
}

func (r *WaitlistRepositoryAdapter) List(ctx context.Context, filter repository.WaitlistFilter) ([]*entity.WaitlistEntry, int, error) {
	var w whereBuilder
	if filter.Active != nil {
		w.add("is_active = ?", *filter.Active)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM waitlist`+w.String(), w.args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list waitlist")
	}

	where := w.String()
	limit := w.next(filter.Page.Limit())
	offset := w.next(filter.Page.Offset())
	var entries []*entity.WaitlistEntry
	query := `SELECT ` + waitlistColumns + ` FROM waitlist` + where +
		` ORDER BY requested_at DESC, id LIMIT ` + limit + ` OFFSET ` + offset
	if err := r.db.SelectContext(ctx, &entries, query, w.args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list waitlist")
	}
	return entries, total, nil
}

func (r *WaitlistRepositoryAdapter) Update(ctx context.Context, e *entity.WaitlistEntry) error {
	query := `
		UPDATE waitlist SET name = $2, reason = $3, is_active = $4, activated_at = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, e.ID, e.Name, e.Reason, e.IsActive, e.ActivatedAt, e.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to update waitlist entry")
	}
	return requireAffected(res, apperror.ErrWaitlistNotFound)
}

func (r *WaitlistRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM waitlist WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to remove waitlist entry")
	}
	return requireAffected(res, apperror.ErrWaitlistNotFound)
}
