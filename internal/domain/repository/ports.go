package repository

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

// События, которые рассылаются в открытые вкладки пользователя.
const (
	EventTemplateCreated        = "template.created"
	EventProposalCreated        = "proposal.created"
	EventProposalOutcomeChanged = "proposal.outcome_changed"
)

// EventPublisher доставляет событие всем подключениям пользователя.
// Доставка best-effort.
type EventPublisher interface {
	Publish(userID uuid.UUID, event string, data any)
}

// AdminNotifier уведомляет администратора о запросе доступа.
type AdminNotifier interface {
	NotifyAccessRequest(ctx context.Context, entry *entity.WaitlistEntry) error
}

// ImageStorage хранилище обложек проектов.
type ImageStorage interface {
	Save(ctx context.Context, userID uuid.UUID, originalName, contentType string, r io.Reader) (key string, size int64, err error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// DocumentExtractor достаёт текст из загруженного документа.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}
