package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// Кумулятивные корзины: каждый этап включает все последующие.
// rejected и no_response в просмотренные не попадают. Списки исходов
// строятся из ProposalOutcome.Reached.
var outcomeAggregates = `
	COUNT(*) AS total,
	COUNT(*) FILTER (WHERE ` + reachedFilter(valueobject.OutcomeViewed) + `) AS viewed,
	COUNT(*) FILTER (WHERE ` + reachedFilter(valueobject.OutcomeResponded) + `) AS responded,
	COUNT(*) FILTER (WHERE ` + reachedFilter(valueobject.OutcomeInterviewed) + `) AS interviewed,
	COUNT(*) FILTER (WHERE ` + reachedFilter(valueobject.OutcomeAwarded) + `) AS awarded,
	COUNT(*) FILTER (WHERE ` + reachedFilter(valueobject.OutcomeRejected) + `) AS rejected,
	COUNT(*) FILTER (WHERE ` + reachedFilter(valueobject.OutcomeNoResponse) + `) AS no_response,
	COALESCE(AVG(p.proposal_length), 0)::float8 AS avg_length`

// reachedFilter условие "исход достиг stage". Значения берутся из
// закрытого набора констант, поэтому подставляются литералами.
func reachedFilter(stage valueobject.ProposalOutcome) string {
	var in []string
	for _, o := range valueobject.AllOutcomes {
		if o.Reached(stage) {
			in = append(in, "'"+string(o)+"'")
		}
	}
	return "p.current_outcome IN (" + strings.Join(in, ", ") + ")"
}

const lengthBucket = `
	CASE
		WHEN p.proposal_length < 150 THEN 'short'
		WHEN p.proposal_length < 300 THEN 'medium'
		WHEN p.proposal_length < 500 THEN 'long'
		ELSE 'very_long'
	END`

type AnalyticsRepositoryAdapter struct {
	db *sqlx.DB
}

func NewAnalyticsRepositoryAdapter(db *sqlx.DB) *AnalyticsRepositoryAdapter {
	return &AnalyticsRepositoryAdapter{db: db}
}

var _ repository.AnalyticsRepository = (*AnalyticsRepositoryAdapter)(nil)

func (r *AnalyticsRepositoryAdapter) Overview(ctx context.Context, userID uuid.UUID, since time.Time) (entity.OutcomeCounts, error) {
	var counts entity.OutcomeCounts
	query := `SELECT ` + outcomeAggregates + `
		FROM proposal_tracking p
		WHERE p.user_id = $1 AND p.sent_at >= $2`
	if err := r.db.GetContext(ctx, &counts, query, userID, since); err != nil {
		return entity.OutcomeCounts{}, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get analytics")
	}
	return counts, nil
}

func (r *AnalyticsRepositoryAdapter) ByTemplate(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.AnalyticsGroup, error) {
	query := `SELECT t.id::text AS group_key, t.title AS group_label, ` + outcomeAggregates + `
		FROM proposal_tracking p
		JOIN templates t ON t.id = p.template_id
		WHERE p.user_id = $1 AND p.sent_at >= $2
		GROUP BY t.id, t.title
		ORDER BY total DESC, t.title`
	return r.groups(ctx, query, userID, since)
}

func (r *AnalyticsRepositoryAdapter) ByPlatform(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.AnalyticsGroup, error) {
	query := `SELECT COALESCE(NULLIF(p.platform, ''), 'other') AS group_key,
		COALESCE(NULLIF(p.platform, ''), 'other') AS group_label, ` + outcomeAggregates + `
		FROM proposal_tracking p
		WHERE p.user_id = $1 AND p.sent_at >= $2
		GROUP BY 1, 2
		ORDER BY total DESC, group_key`
	return r.groups(ctx, query, userID, since)
}

func (r *AnalyticsRepositoryAdapter) ByLength(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.AnalyticsGroup, error) {
	query := `SELECT ` + lengthBucket + ` AS group_key, '' AS group_label, ` + outcomeAggregates + `
		FROM proposal_tracking p
		WHERE p.user_id = $1 AND p.sent_at >= $2
		GROUP BY 1
		ORDER BY MIN(p.proposal_length)`
	return r.groups(ctx, query, userID, since)
}

func (r *AnalyticsRepositoryAdapter) groups(ctx context.Context, query string, userID uuid.UUID, since time.Time) ([]entity.AnalyticsGroup, error) {
	var rows []entity.AnalyticsGroup
	if err := r.db.SelectContext(ctx, &rows, query, userID, since); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get analytics")
	}
	if rows == nil {
		rows = []entity.AnalyticsGroup{}
	}
	return rows, nil
}
