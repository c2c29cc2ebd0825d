package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

type CreateProposalRequest struct {
	TemplateID      *uuid.UUID `json:"templateId"`
	JobTitle        string     `json:"jobTitle" binding:"required"`
	JobDescription  string     `json:"jobDescription" binding:"required"`
	JobPostingURL   string     `json:"jobPostingUrl"`
	Platform        string     `json:"platform"`
	ProposalContent string     `json:"proposalContent"`
	Notes           string     `json:"notes"`
	Outcome         string     `json:"outcome"`
}

func (r CreateProposalRequest) Params() entity.ProposalParams {
	return entity.ProposalParams{
		TemplateID:      r.TemplateID,
		JobTitle:        r.JobTitle,
		JobDescription:  r.JobDescription,
		JobPostingURL:   r.JobPostingURL,
		Platform:        r.Platform,
		ProposalContent: r.ProposalContent,
		Notes:           r.Notes,
		Outcome:         r.Outcome,
	}
}

type UpdateProposalRequest struct {
	JobTitle        *string `json:"jobTitle"`
	JobDescription  *string `json:"jobDescription"`
	JobPostingURL   *string `json:"jobPostingUrl"`
	Platform        *string `json:"platform"`
	ProposalContent *string `json:"proposalContent"`
	Notes           *string `json:"notes"`
	Outcome         *string `json:"outcome"`
}

func (r UpdateProposalRequest) Patch() entity.ProposalPatch {
	return entity.ProposalPatch{
		JobTitle:        r.JobTitle,
		JobDescription:  r.JobDescription,
		JobPostingURL:   r.JobPostingURL,
		Platform:        r.Platform,
		ProposalContent: r.ProposalContent,
		Notes:           r.Notes,
		Outcome:         r.Outcome,
	}
}

type UpdateProposalStatusRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

type ProposalResponse struct {
	ID              uuid.UUID  `json:"id"`
	TemplateID      *uuid.UUID `json:"templateId"`
	JobTitle        string     `json:"jobTitle"`
	JobDescription  string     `json:"jobDescription"`
	JobPostingURL   string     `json:"jobPostingUrl"`
	Platform        string     `json:"platform"`
	ProposalContent string     `json:"proposalContent"`
	ProposalLength  int        `json:"proposalLength"`
	CurrentOutcome  string     `json:"currentOutcome"`
	SentAt          time.Time  `json:"sentAt"`
	ViewedAt        *time.Time `json:"viewedAt"`
	RespondedAt     *time.Time `json:"respondedAt"`
	InterviewedAt   *time.Time `json:"interviewedAt"`
	CompletedAt     *time.Time `json:"completedAt"`
	Notes           string     `json:"notes"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func ToProposalResponse(p *entity.ProposalTracking) ProposalResponse {
	return ProposalResponse{
		ID:              p.ID,
		TemplateID:      p.TemplateID,
		JobTitle:        p.JobTitle,
		JobDescription:  p.JobDescription,
		JobPostingURL:   p.JobPostingURL,
		Platform:        p.Platform,
		ProposalContent: p.ProposalContent,
		ProposalLength:  p.ProposalLength,
		CurrentOutcome:  string(p.CurrentOutcome),
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

func ToProposalResponses(proposals []*entity.ProposalTracking) []ProposalResponse {
	responses := make([]ProposalResponse, 0, len(proposals))
	for _, proposal := range proposals {
		responses = append(responses, ToProposalResponse(proposal))
	}
	return responses
}
