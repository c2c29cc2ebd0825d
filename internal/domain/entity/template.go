package entity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

const copySuffix = " (Copy)"

var placeholderRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.\- ]+?)\s*\}\}`)

// Template переиспользуемый шаблон предложения. Content может содержать
// плейсхолдеры вида {{client_name}}.
type Template struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Content     string
	Tone        valueobject.Tone
	Status      valueobject.TemplateStatus
	Category    string
	Tags        []string
	UsageCount  int
	IsFavorite  bool
	IsPublic    bool
	LastUsedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TemplateParams входные данные для нового шаблона. Пустые Tone/Status
// заменяются на professional/draft.
type TemplateParams struct {
	Title       string
	Description string
	Content     string
	Tone        string
	Status      string
	Category    string
	Tags        []string
	IsFavorite  bool
	IsPublic    bool
}

// TemplatePatch частичное обновление: nil означает "не менять".
type TemplatePatch struct {
	Title       *string
	Description *string
	Content     *string
	Tone        *string
	Status      *string
	Category    *string
	Tags        *[]string
	IsFavorite  *bool
	IsPublic    *bool
}

func NewTemplate(userID uuid.UUID, p TemplateParams) (*Template, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	tone := valueobject.ToneProfessional
	if strings.TrimSpace(p.Tone) != "" {
		t, err := valueobject.NewTone(p.Tone)
		if err != nil {
			return nil, err
		}
		tone = t
	}

	status := valueobject.TemplateStatusDraft
	if strings.TrimSpace(p.Status) != "" {
		s, err := valueobject.NewTemplateStatus(p.Status)
		if err != nil {
			return nil, err
		}
		status = s
	}

	now := time.Now().UTC()
	t := &Template{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Content:     strings.TrimSpace(p.Content),
		Tone:        tone,
		Status:      status,
		Category:    strings.TrimSpace(p.Category),
		Tags:        validation.NormalizeTags(p.Tags),
		IsFavorite:  p.IsFavorite,
		IsPublic:    p.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) validate() error {
	err := validation.First(
		validation.ValidateLength("Title", t.Title, 1, validation.MaxTitleLength),
		validation.ValidateLength("Content", t.Content, 1, validation.MaxTemplateContentLen),
		validation.ValidateLength("Description", t.Description, 0, validation.MaxDescriptionLength),
		validation.ValidateLength("Category", t.Category, 0, validation.MaxCategoryLength),
		validation.ValidateTags("Tags", t.Tags),
	)
	if err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func (t *Template) IsOwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}

// Apply применяет частичное обновление и сдвигает UpdatedAt.
// При ошибке шаблон остаётся без изменений.
func (t *Template) Apply(p TemplatePatch) error {
	next := *t
	next.Tags = append([]string(nil), t.Tags...)

	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	if p.Content != nil {
		next.Content = strings.TrimSpace(*p.Content)
	}
	if p.Category != nil {
		next.Category = strings.TrimSpace(*p.Category)
	}
	if p.Tags != nil {
		next.Tags = validation.NormalizeTags(*p.Tags)
	}
	if p.IsFavorite != nil {
		next.IsFavorite = *p.IsFavorite
	}
	if p.IsPublic != nil {
		next.IsPublic = *p.IsPublic
	}
	if p.Tone != nil {
		tone, err := valueobject.NewTone(*p.Tone)
		if err != nil {
			return err
		}
		next.Tone = tone
	}
	if p.Status != nil {
		status, err := valueobject.NewTemplateStatus(*p.Status)
		if err != nil {
			return err
		}
		next.Status = status
	}

	if err := next.validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*t = next
	return nil
}

// Duplicate копирует содержимое под тем же владельцем: новый ID и
// временные метки, " (Copy)" в заголовке, счётчик использований обнулён.
func (t *Template) Duplicate() *Template {
	now := time.Now().UTC()
	return &Template{
		ID:          uuid.New(),
		UserID:      t.UserID,
		Title:       t.Title + copySuffix,
		Description: t.Description,
		Content:     t.Content,
		Tone:        t.Tone,
		Status:      t.Status,
		Category:    t.Category,
		Tags:        append([]string(nil), t.Tags...),
		UsageCount:  0,
		IsFavorite:  t.IsFavorite,
		IsPublic:    t.IsPublic,
		LastUsedAt:  nil,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Placeholders возвращает уникальные плейсхолдеры в порядке появления.
func (t *Template) Placeholders() []string {
	matches := placeholderRegex.FindAllStringSubmatch(t.Content, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
