package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

const (
	DefaultDays = 30
	MaxDays     = 365
)

// Подписи корзин длины в порядке возрастания.
var lengthLabels = map[string]string{
	"short":     "Under 150 words",
	"medium":    "150-299 words",
	"long":      "300-499 words",
	"very_long": "500+ words",
}

// Stats счётчики воронки с производными процентами.
type Stats struct {
	TotalProposals int     `json:"totalProposals"`
	Viewed         int     `json:"viewed"`
	Responded      int     `json:"responded"`
	Interviewed    int     `json:"interviewed"`
	Awarded        int     `json:"awarded"`
	Rejected       int     `json:"rejected"`
	NoResponse     int     `json:"noResponse"`
	AvgLength      float64 `json:"avgLength"`
	ViewRate       int     `json:"viewRate"`
	ResponseRate   int     `json:"responseRate"`
	SuccessRate    int     `json:"successRate"`
}

type GroupStats struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Stats
}

type Overview struct {
	Days  int       `json:"days"`
	Since time.Time `json:"since"`
	Stats
}

// ComputeStats переводит кумулятивные счётчики в проценты.
func ComputeStats(c entity.OutcomeCounts) Stats {
	return Stats{
		TotalProposals: c.Total,
		Viewed:         c.Viewed,
		Responded:      c.Responded,
		Interviewed:    c.Interviewed,
		Awarded:        c.Awarded,
		Rejected:       c.Rejected,
		NoResponse:     c.NoResponse,
		AvgLength:      c.AvgLength,
		ViewRate:       c.ViewRate(),
		ResponseRate:   c.ResponseRate(),
		SuccessRate:    c.SuccessRate(),
	}
}

// NormalizeDays: 0 -> 30, дальше ограничение [1, 365].
func NormalizeDays(days int) int {
	if days <= 0 {
		return DefaultDays
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

type AnalyticsUseCase struct {
	repo repository.AnalyticsRepository
	now  func() time.Time
}

func NewAnalyticsUseCase(repo repository.AnalyticsRepository) *AnalyticsUseCase {
	return &AnalyticsUseCase{repo: repo, now: time.Now}
}

func (uc *AnalyticsUseCase) since(days int) time.Time {
	return uc.now().UTC().AddDate(0, 0, -days)
}

func (uc *AnalyticsUseCase) Overview(ctx context.Context, userID uuid.UUID, days int) (*Overview, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	days = NormalizeDays(days)
	since := uc.since(days)

	counts, err := uc.repo.Overview(ctx, userID, since)
	if err != nil {
		return nil, apperror.Internal(err, "get", "analytics")
	}
	return &Overview{Days: days, Since: since, Stats: ComputeStats(counts)}, nil
}

func (uc *AnalyticsUseCase) ByTemplate(ctx context.Context, userID uuid.UUID, days int) ([]GroupStats, error) {
	return uc.grouped(ctx, userID, days, uc.repo.ByTemplate)
}

func (uc *AnalyticsUseCase) ByPlatform(ctx context.Context, userID uuid.UUID, days int) ([]GroupStats, error) {
	return uc.grouped(ctx, userID, days, uc.repo.ByPlatform)
}

func (uc *AnalyticsUseCase) ByLength(ctx context.Context, userID uuid.UUID, days int) ([]GroupStats, error) {
	groups, err := uc.grouped(ctx, userID, days, uc.repo.ByLength)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if label, ok := lengthLabels[groups[i].Key]; ok {
			groups[i].Label = label
		}
	}
	return groups, nil
}

type groupQuery func(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.AnalyticsGroup, error)

func (uc *AnalyticsUseCase) grouped(ctx context.Context, userID uuid.UUID, days int, query groupQuery) ([]GroupStats, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	groups, err := query(ctx, userID, uc.since(NormalizeDays(days)))
	if err != nil {
		return nil, apperror.Internal(err, "get", "analytics")
	}
	out := make([]GroupStats, len(groups))
	for i, g := range groups {
		out[i] = GroupStats{Key: g.Key, Label: g.Label, Stats: ComputeStats(g.OutcomeCounts)}
	}
	return out, nil
}
