package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

// Project кейс из портфолио, на который ссылаются в предложениях.
type Project struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	Description  string
	ClientName   string
	URL          string
	Technologies []string
	Results      string
	CoverImage   *string
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ProjectParams struct {
	Title        string
	Description  string
	ClientName   string
	URL          string
	Technologies []string
	Results      string
	CompletedAt  *time.Time
}

type ProjectPatch struct {
	Title        *string
	Description  *string
	ClientName   *string
	URL          *string
	Technologies *[]string
	Results      *string
	CompletedAt  *time.Time
}

func NewProject(userID uuid.UUID, p ProjectParams) (*Project, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	now := time.Now().UTC()
	project := &Project{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        strings.TrimSpace(p.Title),
		Description:  strings.TrimSpace(p.Description),
		ClientName:   strings.TrimSpace(p.ClientName),
		URL:          strings.TrimSpace(p.URL),
		Technologies: validation.NormalizeTags(p.Technologies),
		Results:      strings.TrimSpace(p.Results),
		CompletedAt:  p.CompletedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := project.validate(); err != nil {
		return nil, err
	}
	return project, nil
}

func (p *Project) validate() error {
	err := validation.First(
		validation.ValidateLength("Title", p.Title, 1, validation.MaxTitleLength),
		validation.ValidateLength("Description", p.Description, 0, validation.MaxTestimonialLength),
		validation.ValidateLength("Client name", p.ClientName, 0, validation.MaxNameLength),
		validation.ValidateURL("URL", p.URL),
		validation.ValidateTags("Technologies", p.Technologies),
		validation.ValidateLength("Results", p.Results, 0, validation.MaxDescriptionLength),
	)
	if err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func (p *Project) IsOwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}

func (p *Project) Apply(patch ProjectPatch) error {
	next := *p
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ClientName != nil {
		next.ClientName = strings.TrimSpace(*patch.ClientName)
	}
	if patch.URL != nil {
		next.URL = strings.TrimSpace(*patch.URL)
	}
	if patch.Technologies != nil {
		next.Technologies = validation.NormalizeTags(*patch.Technologies)
	}
	if patch.Results != nil {
		next.Results = strings.TrimSpace(*patch.Results)
	}
	if patch.CompletedAt != nil {
		completed := *patch.CompletedAt
		next.CompletedAt = &completed
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	*p = next
	return nil
}

// Testimonial отзыв клиента.
type Testimonial struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ClientName  string
	ClientTitle string
	Company     string
	Content     string
	Rating      *int
	ProjectID   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TestimonialParams struct {
	ClientName  string
	ClientTitle string
	Company     string
	Content     string
	Rating      *int
	ProjectID   *uuid.UUID
}

type TestimonialPatch struct {
	ClientName  *string
	ClientTitle *string
	Company     *string
	Content     *string
	Rating      *int
	ProjectID   *uuid.UUID
}

func NewTestimonial(userID uuid.UUID, p TestimonialParams) (*Testimonial, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	now := time.Now().UTC()
	t := &Testimonial{
		ID:          uuid.New(),
		UserID:      userID,
		ClientName:  strings.TrimSpace(p.ClientName),
		ClientTitle: strings.TrimSpace(p.ClientTitle),
		Company:     strings.TrimSpace(p.Company),
		Content:     strings.TrimSpace(p.Content),
		Rating:      p.Rating,
		ProjectID:   p.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Testimonial) validate() error {
	err := validation.First(
		validation.ValidateLength("Client name", t.ClientName, 1, validation.MaxNameLength),
		validation.ValidateLength("Client title", t.ClientTitle, 0, validation.MaxNameLength),
		validation.ValidateLength("Company", t.Company, 0, validation.MaxNameLength),
		validation.ValidateLength("Content", t.Content, 1, validation.MaxTestimonialLength),
	)
	if err != nil {
		return apperror.Validation(err.Error())
	}
	if t.Rating != nil && (*t.Rating < 1 || *t.Rating > 5) {
		return apperror.Validation("Rating must be between 1 and 5")
	}
	return nil
}

func (t *Testimonial) IsOwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}

func (t *Testimonial) Apply(patch TestimonialPatch) error {
	next := *t
	if patch.ClientName != nil {
		next.ClientName = strings.TrimSpace(*patch.ClientName)
	}
	if patch.ClientTitle != nil {
		next.ClientTitle = strings.TrimSpace(*patch.ClientTitle)
	}
	if patch.Company != nil {
		next.Company = strings.TrimSpace(*patch.Company)
	}
	if patch.Content != nil {
		next.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.Rating != nil {
		rating := *patch.Rating
		next.Rating = &rating
	}
	if patch.ProjectID != nil {
		projectID := *patch.ProjectID
		next.ProjectID = &projectID
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	*t = next
	return nil
}

// SetCover ставит ключ обложки в хранилище.
func (p *Project) SetCover(key string) {
	p.CoverImage = &key
	p.UpdatedAt = time.Now().UTC()
}
