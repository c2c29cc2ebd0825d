package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

// ProposalTracking отправленное предложение и его путь по воронке.
type ProposalTracking struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	TemplateID      *uuid.UUID
	JobTitle        string
	JobDescription  string
	JobPostingURL   string
	Platform        string
	ProposalContent string
	ProposalLength  int
	CurrentOutcome  valueobject.ProposalOutcome
	SentAt          time.Time
	ViewedAt        *time.Time
	RespondedAt     *time.Time
	InterviewedAt   *time.Time
	CompletedAt     *time.Time
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ProposalParams struct {
	TemplateID      *uuid.UUID
	JobTitle        string
	JobDescription  string
	JobPostingURL   string
	Platform        string
	ProposalContent string
	Notes           string
	// Outcome опционален, по умолчанию proposal_sent.
	Outcome string
}

// ProposalPatch частичное обновление: nil означает "не менять".
type ProposalPatch struct {
	JobTitle        *string
	JobDescription  *string
	JobPostingURL   *string
	Platform        *string
	ProposalContent *string
	Notes           *string
	Outcome         *string
}

func NewProposalTracking(userID uuid.UUID, p ProposalParams) (*ProposalTracking, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	now := time.Now().UTC()
	proposal := &ProposalTracking{
		ID:              uuid.New(),
		UserID:          userID,
		TemplateID:      p.TemplateID,
		JobTitle:        strings.TrimSpace(p.JobTitle),
		JobDescription:  strings.TrimSpace(p.JobDescription),
		JobPostingURL:   strings.TrimSpace(p.JobPostingURL),
		Platform:        NormalizePlatform(p.Platform),
		ProposalContent: strings.TrimSpace(p.ProposalContent),
		Notes:           strings.TrimSpace(p.Notes),
		CurrentOutcome:  valueobject.OutcomeSent,
		SentAt:          now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	proposal.ProposalLength = CountWords(proposal.ProposalContent)

	if err := proposal.validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(p.Outcome) != "" {
		outcome, err := valueobject.NewProposalOutcome(p.Outcome)
		if err != nil {
			return nil, err
		}
		proposal.SetOutcome(outcome, now)
	}

	return proposal, nil
}

func (p *ProposalTracking) validate() error {
	err := validation.First(
		validation.ValidateLength("Job title", p.JobTitle, 1, validation.MaxTitleLength),
		validation.ValidateLength("Job description", p.JobDescription, 1, validation.MaxJobDescriptionLength),
		validation.ValidateURL("Job posting URL", p.JobPostingURL),
		validation.ValidateLength("Platform", p.Platform, 0, validation.MaxPlatformLength),
		validation.ValidateLength("Proposal content", p.ProposalContent, 0, validation.MaxProposalContentLen),
		validation.ValidateLength("Notes", p.Notes, 0, validation.MaxNotesLength),
	)
	if err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func (p *ProposalTracking) IsOwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}

// SetOutcome меняет исход и проставляет ещё не заполненные вехи вплоть до
// достигнутого этапа. Уже проставленные вехи не перезаписываются и не
// очищаются при откате.
func (p *ProposalTracking) SetOutcome(outcome valueobject.ProposalOutcome, now time.Time) {
	p.CurrentOutcome = outcome

	stamp := func(field **time.Time, stage valueobject.ProposalOutcome) {
		if *field == nil && outcome.Reached(stage) {
			t := now
			*field = &t
		}
	}
	stamp(&p.ViewedAt, valueobject.OutcomeViewed)
	stamp(&p.RespondedAt, valueobject.OutcomeResponded)
	stamp(&p.InterviewedAt, valueobject.OutcomeInterviewed)

	if outcome.IsTerminal() && p.CompletedAt == nil {
		t := now
		p.CompletedAt = &t
	}
	p.UpdatedAt = now
}

// Apply применяет частичное обновление. strict включает проверку перехода.
// При ошибке предложение остаётся без изменений.
func (p *ProposalTracking) Apply(patch ProposalPatch, strict bool) error {
	next := *p

	if patch.JobTitle != nil {
		next.JobTitle = strings.TrimSpace(*patch.JobTitle)
	}
	if patch.JobDescription != nil {
		next.JobDescription = strings.TrimSpace(*patch.JobDescription)
	}
	if patch.JobPostingURL != nil {
		next.JobPostingURL = strings.TrimSpace(*patch.JobPostingURL)
	}
	if patch.Platform != nil {
		next.Platform = NormalizePlatform(*patch.Platform)
	}
	if patch.ProposalContent != nil {
		next.ProposalContent = strings.TrimSpace(*patch.ProposalContent)
		next.ProposalLength = CountWords(next.ProposalContent)
	}
	if patch.Notes != nil {
		next.Notes = strings.TrimSpace(*patch.Notes)
	}

	if err := next.validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if patch.Outcome != nil {
		outcome, err := valueobject.NewProposalOutcome(*patch.Outcome)
		if err != nil {
			return err
		}
		if strict {
			if err := p.CurrentOutcome.ValidateTransition(outcome); err != nil {
				return err
			}
		}
		if outcome != next.CurrentOutcome {
			next.SetOutcome(outcome, now)
		}
	}

	next.UpdatedAt = now
	*p = next
	return nil
}

// NormalizePlatform: "  Upwork " -> "upwork".
func NormalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// CountWords считает слова, разделённые пробельными символами.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
