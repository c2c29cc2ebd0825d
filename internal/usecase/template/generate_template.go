package template

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/llmjson"
)

const generateSystemPrompt = `You write reusable cover-letter templates for freelancers.
Return ONLY a JSON object with the keys:
"title" (short name of the template),
"content" (the template text; use placeholders like {{client_name}}, {{project_name}}, {{budget}} where the freelancer must fill in details),
"tone" (one of: professional, friendly, confident, enthusiastic, formal, casual),
"category" (one or two words, e.g. "Web development"),
"description" (one sentence about when to use the template).
Keep the content under 300 words. Do not invent facts about the freelancer that are not in their bio.`

type GenerateTemplateInput struct {
	Brief    string
	Tone     string
	Category string
	// Save=false только возвращает черновик без сохранения.
	Save bool
}

type generatedTemplate struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Tone        string `json:"tone"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type GenerateTemplateUseCase struct {
	generator    repository.TextGenerator
	userRepo     repository.UserRepository
	templateRepo repository.TemplateRepository
	events       repository.EventPublisher
}

func NewGenerateTemplateUseCase(
	generator repository.TextGenerator,
	userRepo repository.UserRepository,
	templateRepo repository.TemplateRepository,
	events repository.EventPublisher,
) *GenerateTemplateUseCase {
	return &GenerateTemplateUseCase{
		generator:    generator,
		userRepo:     userRepo,
		templateRepo: templateRepo,
		events:       events,
	}
}

func (uc *GenerateTemplateUseCase) Execute(ctx context.Context, userID uuid.UUID, input GenerateTemplateInput) (*entity.Template, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if uc.generator == nil {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "AI service is not configured")
	}
	brief := strings.TrimSpace(input.Brief)
	if brief == "" {
		return nil, apperror.Validation("Brief is required")
	}

	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "generate", "template")
	}

	raw, err := uc.generator.GenerateJSON(ctx, generateSystemPrompt, buildGeneratePrompt(user, input))
	if err != nil {
		logger.Log.WithError(err).WithField("userID", userID).Error("[TEMPLATE] Ошибка генерации шаблона")
		return nil, apperror.Internal(err, "generate", "template")
	}

	out, err := llmjson.Extract[generatedTemplate](raw, func(g generatedTemplate) error {
		if strings.TrimSpace(g.Content) == "" {
			return errors.New("content is empty")
		}
		return nil
	})
	if err != nil {
		logger.Log.WithError(err).WithField("userID", userID).Warn("[TEMPLATE] Модель вернула некорректный JSON")
		return nil, apperror.Internal(err, "generate", "template")
	}

	title := strings.TrimSpace(out.Title)
	if title == "" {
		title = truncateRunes(brief, 60)
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = strings.TrimSpace(out.Category)
	}

	t, err := entity.NewTemplate(userID, entity.TemplateParams{
		Title:       truncateRunes(title, 200),
		Description: truncateRunes(out.Description, 1000),
		Content:     out.Content,
		Tone:        string(valueobject.ToneOrDefault(out.Tone)),
		Status:      string(valueobject.TemplateStatusDraft),
		Category:    truncateRunes(category, 100),
	})
	if err != nil {
		return nil, err
	}
	if !input.Save {
		return t, nil
	}
	if err := uc.templateRepo.Create(ctx, t); err != nil {
		return nil, apperror.Internal(err, "generate", "template")
	}
	publish(uc.events, userID, repository.EventTemplateCreated, t)
	return t, nil
}

func buildGeneratePrompt(user *entity.User, input GenerateTemplateInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Freelancer name: %s\n", user.Name)
	if bio := strings.TrimSpace(user.Bio); bio != "" {
		fmt.Fprintf(&sb, "Freelancer bio:\n%s\n", bio)
	}
	if tone := strings.TrimSpace(input.Tone); tone != "" {
		fmt.Fprintf(&sb, "Preferred tone: %s\n", valueobject.ToneOrDefault(tone))
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", category)
	}
	fmt.Fprintf(&sb, "\nWhat the template is for:\n%s\n", strings.TrimSpace(input.Brief))
	return sb.String()
}

func truncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
