package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

type CreateProjectRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	ClientName   string     `json:"clientName"`
	URL          string     `json:"url"`
	Technologies []string   `json:"technologies" binding:"max=20"`
	Results      string     `json:"results"`
	CompletedAt  *time.Time `json:"completedAt"`
}

func (r CreateProjectRequest) Params() entity.ProjectParams {
	return entity.ProjectParams{
		Title:        r.Title,
		Description:  r.Description,
		ClientName:   r.ClientName,
		URL:          r.URL,
		Technologies: r.Technologies,
		Results:      r.Results,
		CompletedAt:  r.CompletedAt,
	}
}

type UpdateProjectRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	ClientName   *string    `json:"clientName"`
	URL          *string    `json:"url"`
	Technologies *[]string  `json:"technologies"`
	Results      *string    `json:"results"`
	CompletedAt  *time.Time `json:"completedAt"`
}

func (r UpdateProjectRequest) Patch() entity.ProjectPatch {
	return entity.ProjectPatch{
		Title:        r.Title,
		Description:  r.Description,
		ClientName:   r.ClientName,
		URL:          r.URL,
		Technologies: r.Technologies,
		Results:      r.Results,
		CompletedAt:  r.CompletedAt,
	}
}

type ProjectResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ClientName   string     `json:"clientName"`
	URL          string     `json:"url"`
	Technologies []string   `json:"technologies"`
	Results      string     `json:"results"`
	CoverImage   string     `json:"coverImage"`
	CompletedAt  *time.Time `json:"completedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ToProjectResponse coverURL уже разрешённый адрес обложки.
func ToProjectResponse(p *entity.Project, coverURL string) ProjectResponse {
	tech := p.Technologies
	if tech == nil {
		tech = []string{}
	}
	return ProjectResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		ClientName:   p.ClientName,
		URL:          p.URL,
		Technologies: tech,
		Results:      p.Results,
		CoverImage:   coverURL,
		CompletedAt:  p.CompletedAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type CreateTestimonialRequest struct {
	ClientName  string     `json:"clientName" binding:"required"`
	ClientTitle string     `json:"clientTitle"`
	Company     string     `json:"company"`
	Content     string     `json:"content" binding:"required"`
	Rating      *int       `json:"rating" binding:"omitempty,gte=1,lte=5"`
	ProjectID   *uuid.UUID `json:"projectId"`
}

func (r CreateTestimonialRequest) Params() entity.TestimonialParams {
	return entity.TestimonialParams{
		ClientName:  r.ClientName,
		ClientTitle: r.ClientTitle,
		Company:     r.Company,
		Content:     r.Content,
		Rating:      r.Rating,
		ProjectID:   r.ProjectID,
	}
}

type UpdateTestimonialRequest struct {
	ClientName  *string    `json:"clientName"`
	ClientTitle *string    `json:"clientTitle"`
	Company     *string    `json:"company"`
	Content     *string    `json:"content"`
	Rating      *int       `json:"rating" binding:"omitempty,gte=1,lte=5"`
	ProjectID   *uuid.UUID `json:"projectId"`
}

func (r UpdateTestimonialRequest) Patch() entity.TestimonialPatch {
	return entity.TestimonialPatch{
		ClientName:  r.ClientName,
		ClientTitle: r.ClientTitle,
		Company:     r.Company,
		Content:     r.Content,
		Rating:      r.Rating,
		ProjectID:   r.ProjectID,
	}
}

type TestimonialResponse struct {
	ID          uuid.UUID  `json:"id"`
	ClientName  string     `json:"clientName"`
	ClientTitle string     `json:"clientTitle"`
	Company     string     `json:"company"`
	Content     string     `json:"content"`
	Rating      *int       `json:"rating"`
	ProjectID   *uuid.UUID `json:"projectId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func ToTestimonialResponse(t *entity.Testimonial) TestimonialResponse {
	return TestimonialResponse{
		ID:          t.ID,
		ClientName:  t.ClientName,
		ClientTitle: t.ClientTitle,
		Company:     t.Company,
		Content:     t.Content,
		Rating:      t.Rating,
		ProjectID:   t.ProjectID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToTestimonialResponses(items []*entity.Testimonial) []TestimonialResponse {
	result := make([]TestimonialResponse, len(items))
	for i, t := range items {
		result[i] = ToTestimonialResponse(t)
	}
	return result
}
