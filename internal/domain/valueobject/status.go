package valueobject

import (
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type TemplateStatus string

const (
	TemplateStatusDraft    TemplateStatus = "draft"
	TemplateStatusActive   TemplateStatus = "active"
	TemplateStatusArchived TemplateStatus = "archived"
)

func (s TemplateStatus) IsValid() bool {
	switch s {
	case TemplateStatusDraft, TemplateStatusActive, TemplateStatusArchived:
		return true
	}
	return false
}

func NewTemplateStatus(status string) (TemplateStatus, error) {
	s := TemplateStatus(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", apperror.Validation("Status must be one of: draft, active, archived")
	}
	return s, nil
}

// ProposalOutcome текущий исход отправленного предложения.
type ProposalOutcome string

const (
	OutcomeSent        ProposalOutcome = "proposal_sent"
	OutcomeViewed      ProposalOutcome = "proposal_viewed"
	OutcomeResponded   ProposalOutcome = "client_responded"
	OutcomeInterviewed ProposalOutcome = "interviewed"
	OutcomeAwarded     ProposalOutcome = "job_awarded"
	OutcomeRejected    ProposalOutcome = "proposal_rejected"
	OutcomeNoResponse  ProposalOutcome = "no_response"
)

// AllOutcomes в порядке продвижения, терминальные альтернативы в конце.
var AllOutcomes = []ProposalOutcome{
	OutcomeSent,
	OutcomeViewed,
	OutcomeResponded,
	OutcomeInterviewed,
	OutcomeAwarded,
	OutcomeRejected,
	OutcomeNoResponse,
}

// progress: позиция на основной линии воронки. Альтернативные терминальные
// состояния на линии не лежат.
var progress = map[ProposalOutcome]int{
	OutcomeSent:        0,
	OutcomeViewed:      1,
	OutcomeResponded:   2,
	OutcomeInterviewed: 3,
	OutcomeAwarded:     4,
}

func (o ProposalOutcome) IsValid() bool {
	switch o {
	case OutcomeSent, OutcomeViewed, OutcomeResponded, OutcomeInterviewed,
		OutcomeAwarded, OutcomeRejected, OutcomeNoResponse:
		return true
	}
	return false
}

// Rank возвращает позицию на основной линии и false для rejected/no_response.
func (o ProposalOutcome) Rank() (int, bool) {
	r, ok := progress[o]
	return r, ok
}

// IsTerminal: awarded, rejected и no_response.
func (o ProposalOutcome) IsTerminal() bool {
	return o == OutcomeAwarded || o == OutcomeRejected || o == OutcomeNoResponse
}

// Reached сообщает, достигнут ли этап stage при текущем исходе (кумулятивно).
// Например, job_awarded достиг proposal_viewed и client_responded.
func (o ProposalOutcome) Reached(stage ProposalOutcome) bool {
	if o == stage {
		return true
	}
	cur, ok := o.Rank()
	if !ok {
		return stage == OutcomeSent
	}
	target, ok := stage.Rank()
	if !ok {
		return false
	}
	return cur >= target
}

// ValidateTransition проверяет переход в строгом режиме: из терминального
// состояния можно выйти только в него же, остальные переходы разрешены.
func (o ProposalOutcome) ValidateTransition(next ProposalOutcome) error {
	if !next.IsValid() {
		return apperror.Validation("Invalid proposal outcome")
	}
	if o.IsTerminal() && o != next {
		return apperror.Validation("Cannot change the outcome of a closed proposal")
	}
	return nil
}

func NewProposalOutcome(outcome string) (ProposalOutcome, error) {
	o := ProposalOutcome(strings.ToLower(strings.TrimSpace(outcome)))
	if !o.IsValid() {
		return "", apperror.Validation("Invalid proposal outcome")
	}
	return o, nil
}
