package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

type RequestAccessRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type AddWaitlistRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

type WaitlistEntryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Reason      string     `json:"reason"`
	IsActive    bool       `json:"isActive"`
	RequestedAt time.Time  `json:"requestedAt"`
	ActivatedAt *time.Time `json:"activatedAt"`
}

func ToWaitlistEntryResponse(e *entity.WaitlistEntry) WaitlistEntryResponse {
	return WaitlistEntryResponse{
		ID:          e.ID,
		Email:       e.Email,
		Name:        e.Name,
		Reason:      e.Reason,
		IsActive:    e.IsActive,
		RequestedAt: e.RequestedAt,
		ActivatedAt: e.ActivatedAt,
	}
}

func ToWaitlistEntryResponses(entries []*entity.WaitlistEntry) []WaitlistEntryResponse {
	result := make([]WaitlistEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = ToWaitlistEntryResponse(e)
	}
	return result
}
