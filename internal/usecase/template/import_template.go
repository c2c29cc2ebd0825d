package template

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type ImportTemplateInput struct {
	Filename    string
	ContentType string
	Data        []byte
	Title       string
	Tone        string
	Category    string
}

// ImportTemplateUseCase создаёт черновик шаблона из загруженного документа.
type ImportTemplateUseCase struct {
	templateRepo repository.TemplateRepository
	extractor    repository.DocumentExtractor
	events       repository.EventPublisher
}

func NewImportTemplateUseCase(templateRepo repository.TemplateRepository, extractor repository.DocumentExtractor, events repository.EventPublisher) *ImportTemplateUseCase {
	return &ImportTemplateUseCase{templateRepo: templateRepo, extractor: extractor, events: events}
}

func (uc *ImportTemplateUseCase) Execute(ctx context.Context, userID uuid.UUID, input ImportTemplateInput) (*entity.Template, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if len(input.Data) == 0 {
		return nil, apperror.Validation("File is empty")
	}

	text, err := uc.extractor.ExtractText(ctx, input.Data, input.ContentType)
	if err != nil {
		return nil, apperror.Internal(err, "import", "template")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.Validation("No text found in the uploaded file")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = titleFromFilename(input.Filename)
	}

	t, err := entity.NewTemplate(userID, entity.TemplateParams{
		Title:    title,
		Content:  text,
		Tone:     string(valueobject.ToneOrDefault(input.Tone)),
		Status:   string(valueobject.TemplateStatusDraft),
		Category: input.Category,
	})
	if err != nil {
		return nil, err
	}
	if err := uc.templateRepo.Create(ctx, t); err != nil {
		return nil, apperror.Internal(err, "import", "template")
	}
	publish(uc.events, userID, repository.EventTemplateCreated, t)
	return t, nil
}

// titleFromFilename: "upwork_cover-letter.docx" -> "upwork cover letter".
func titleFromFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" || base == "." {
		return "Imported template"
	}
	return base
}
