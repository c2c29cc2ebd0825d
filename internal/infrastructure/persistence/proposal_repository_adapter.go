package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

const proposalColumns = `id, user_id, template_id, job_title, job_description, job_posting_url, platform,
	proposal_content, proposal_length, current_outcome, sent_at, viewed_at, responded_at,
	interviewed_at, completed_at, notes, created_at, updated_at`

type ProposalRepositoryAdapter struct {
	db *sqlx.DB
}

func NewProposalRepositoryAdapter(db *sqlx.DB) *ProposalRepositoryAdapter {
	return &ProposalRepositoryAdapter{db: db}
}

var _ repository.ProposalRepository = (*ProposalRepositoryAdapter)(nil)

func (r *ProposalRepositoryAdapter) Create(ctx context.Context, p *entity.ProposalTracking) error {
	err := withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO proposal_tracking (` + proposalColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`
		if _, err := tx.ExecContext(ctx, query,
			p.ID, p.UserID, p.TemplateID, p.JobTitle, p.JobDescription, p.JobPostingURL, p.Platform,
			p.ProposalContent, p.ProposalLength, string(p.CurrentOutcome), p.SentAt, p.ViewedAt,
			p.RespondedAt, p.InterviewedAt, p.CompletedAt, p.Notes, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return err
		}
		if p.TemplateID == nil {
			return nil
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE templates SET usage_count = usage_count + 1, last_used_at = $2 WHERE id = $1`,
			*p.TemplateID, p.SentAt,
		)
		if err != nil {
			return err
		}
		return requireAffected(res, apperror.ErrTemplateNotFound)
	})
	if err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to create proposal")
	}
	return nil
}

func (r *ProposalRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.ProposalTracking, error) {
	var row proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposal_tracking WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get proposal")
	}
	return row.toEntity(), nil
}

func (r *ProposalRepositoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID, filter repository.ProposalFilter) ([]*entity.ProposalTracking, int, error) {
	var w whereBuilder
	w.add("user_id = ?", userID)
	if filter.Outcome != nil {
		w.add("current_outcome = ?", string(*filter.Outcome))
	}
	if filter.Platform != "" {
		w.add("platform = ?", filter.Platform)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM proposal_tracking`+w.String(), w.args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list proposals")
	}

	where := w.String()
	limit := w.next(filter.Page.Limit())
	offset := w.next(filter.Page.Offset())
	query := `SELECT ` + proposalColumns + ` FROM proposal_tracking` + where +
		` ORDER BY updated_at DESC, id LIMIT ` + limit + ` OFFSET ` + offset

	var rows []proposalRow
	if err := r.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list proposals")
	}
	return toProposalEntities(rows), total, nil
}

func (r *ProposalRepositoryAdapter) Update(ctx context.Context, p *entity.ProposalTracking) error {
	query := `
		UPDATE proposal_tracking SET job_title = $2, job_description = $3, job_posting_url = $4,
		platform = $5, proposal_content = $6, proposal_length = $7, current_outcome = $8,
		viewed_at = $9, responded_at = $10, interviewed_at = $11, completed_at = $12,
		notes = $13, updated_at = $14
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.JobTitle, p.JobDescription, p.JobPostingURL, p.Platform, p.ProposalContent,
		p.ProposalLength, string(p.CurrentOutcome), p.ViewedAt, p.RespondedAt, p.InterviewedAt,
		p.CompletedAt, p.Notes, p.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to update proposal")
	}
	return requireAffected(res, apperror.ErrProposalNotFound)
}

func (r *ProposalRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM proposal_tracking WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to delete proposal")
	}
	return requireAffected(res, apperror.ErrProposalNotFound)
}

type proposalRow struct {
	ID              uuid.UUID  `db:"id"`
	UserID          uuid.UUID  `db:"user_id"`
	TemplateID      *uuid.UUID `db:"template_id"`
	JobTitle        string     `db:"job_title"`
	JobDescription  string     `db:"job_description"`
	JobPostingURL   string     `db:"job_posting_url"`
	Platform        string     `db:"platform"`
	ProposalContent string     `db:"proposal_content"`
	ProposalLength  int        `db:"proposal_length"`
	CurrentOutcome  string     `db:"current_outcome"`
	SentAt          time.Time  `db:"sent_at"`
	ViewedAt        *time.Time `db:"viewed_at"`
	RespondedAt     *time.Time `db:"responded_at"`
	InterviewedAt   *time.Time `db:"interviewed_at"`
	CompletedAt     *time.Time `db:"completed_at"`
	Notes           string     `db:"notes"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (p *proposalRow) toEntity() *entity.ProposalTracking {
	return &entity.ProposalTracking{
		ID:              p.ID,
		UserID:          p.UserID,
		TemplateID:      p.TemplateID,
		JobTitle:        p.JobTitle,
		JobDescription:  p.JobDescription,
		JobPostingURL:   p.JobPostingURL,
		Platform:        p.Platform,
		ProposalContent: p.ProposalContent,
		ProposalLength:  p.ProposalLength,
		CurrentOutcome:  valueobject.ProposalOutcome(p.CurrentOutcome),
		SentAt:          p.SentAt,
		ViewedAt:        p.ViewedAt,
		RespondedAt:     p.RespondedAt,
		InterviewedAt:   p.InterviewedAt,
		CompletedAt:     p.CompletedAt,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toProposalEntities(rows []proposalRow) []*entity.ProposalTracking {
	result := make([]*entity.ProposalTracking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}
