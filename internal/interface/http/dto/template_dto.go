package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

type CreateTemplateRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description" binding:"max=1000"`
	Content     string   `json:"content" binding:"required"`
	Tone        string   `json:"tone"`
	Status      string   `json:"status"`
	Category    string   `json:"category" binding:"max=100"`
	Tags        []string `json:"tags" binding:"max=20"`
	IsFavorite  bool     `json:"isFavorite"`
	IsPublic    bool     `json:"isPublic"`
}

func (r CreateTemplateRequest) Params() entity.TemplateParams {
	return entity.TemplateParams{
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		Tone:        r.Tone,
		Status:      r.Status,
		Category:    r.Category,
		Tags:        r.Tags,
		IsFavorite:  r.IsFavorite,
		IsPublic:    r.IsPublic,
	}
}

type UpdateTemplateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Content     *string   `json:"content"`
	Tone        *string   `json:"tone"`
	Status      *string   `json:"status"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
	IsFavorite  *bool     `json:"isFavorite"`
	IsPublic    *bool     `json:"isPublic"`
}

func (r UpdateTemplateRequest) Patch() entity.TemplatePatch {
	return entity.TemplatePatch{
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		Tone:        r.Tone,
		Status:      r.Status,
		Category:    r.Category,
		Tags:        r.Tags,
		IsFavorite:  r.IsFavorite,
		IsPublic:    r.IsPublic,
	}
}

type GenerateTemplateRequest struct {
	Brief    string `json:"brief" binding:"required,max=4000"`
	Tone     string `json:"tone"`
	Category string `json:"category" binding:"max=100"`
	Save     *bool  `json:"save"`
}

type TemplateResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Tone        string     `json:"tone"`
	Status      string     `json:"status"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	UsageCount  int        `json:"usageCount"`
	IsFavorite  bool       `json:"isFavorite"`
	IsPublic    bool       `json:"isPublic"`
	LastUsedAt  *time.Time `json:"lastUsedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func ToTemplateResponse(t *entity.Template) TemplateResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TemplateResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Content:     t.Content,
		Tone:        string(t.Tone),
		Status:      string(t.Status),
		Category:    t.Category,
		Tags:        tags,
		UsageCount:  t.UsageCount,
		IsFavorite:  t.IsFavorite,
		IsPublic:    t.IsPublic,
		LastUsedAt:  t.LastUsedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToTemplateResponses(templates []*entity.Template) []TemplateResponse {
	result := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		result[i] = ToTemplateResponse(t)
	}
	return result
}
