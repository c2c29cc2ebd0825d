package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

// AnalyticsRepository отчётные запросы только на чтение.
// Счётчики кумулятивные: Viewed включает всё, что дошло до просмотра и дальше.
type AnalyticsRepository interface {
	Overview(ctx context.Context, userID uuid.UUID, since time.Time) (entity.OutcomeCounts, error)
	ByTemplate(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.AnalyticsGroup, error)
	ByPlatform(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.AnalyticsGroup, error)
	ByLength(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.AnalyticsGroup, error)
}
