package ws

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/dto"
)

// PayloadPublisher переводит сущности в те же DTO, что отдаёт REST,
// и передаёт событие дальше.
type PayloadPublisher struct {
	next repository.EventPublisher
}

var _ repository.EventPublisher = (*PayloadPublisher)(nil)

func NewPayloadPublisher(next repository.EventPublisher) *PayloadPublisher {
	return &PayloadPublisher{next: next}
}

func (p *PayloadPublisher) Publish(userID uuid.UUID, event string, data any) {
	p.next.Publish(userID, event, toPayload(data))
}

func toPayload(data any) any {
	switch v := data.(type) {
	case *entity.Template:
		return dto.ToTemplateResponse(v)
	case *entity.ProposalTracking:
		return dto.ToProposalResponse(v)
	default:
		return data
	}
}
