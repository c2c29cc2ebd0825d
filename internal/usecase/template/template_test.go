package template_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/template"
)

func init() {
	logger.Silence()
}

func seedTemplate(t *testing.T, repo *mockTemplateRepository, userID uuid.UUID, title, status string) *entity.Template {
	t.Helper()
	uc := template.NewCreateTemplateUseCase(repo, nil)
	tpl, err := uc.Execute(context.Background(), userID, entity.TemplateParams{
		Title:   title,
		Content: "Hi {{client_name}}, I can help with {{project_name}}.",
		Status:  status,
		Tags:    []string{"web", "go"},
	})
	require.NoError(t, err)
	return tpl
}

func TestCreateTemplateUseCase_Defaults(t *testing.T) {
	repo := newMockTemplateRepository()
	events := &mockPublisher{}
	userID := uuid.New()

	tpl, err := template.NewCreateTemplateUseCase(repo, events).Execute(context.Background(), userID, entity.TemplateParams{
		Title:   "Upwork intro",
		Content: "Hello!",
	})

	require.NoError(t, err)
	assert.Equal(t, valueobject.ToneProfessional, tpl.Tone)
	assert.Equal(t, valueobject.TemplateStatusDraft, tpl.Status)
	assert.Zero(t, tpl.UsageCount)
	require.Len(t, events.events, 1)
	assert.Equal(t, repository.EventTemplateCreated, events.events[0].event)
}

func TestCreateTemplateUseCase_Validation(t *testing.T) {
	repo := newMockTemplateRepository()

	_, err := template.NewCreateTemplateUseCase(repo, nil).Execute(context.Background(), uuid.New(), entity.TemplateParams{
		Content: "no title",
	})

	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, repo.templates)
}

func TestIncrementUsageUseCase_AddsExactlyN(t *testing.T) {
	repo := newMockTemplateRepository()
	userID := uuid.New()
	tpl := seedTemplate(t, repo, userID, "Intro", "active")
	uc := template.NewIncrementUsageUseCase(repo)

	var last *entity.Template
	for i := 0; i < 5; i++ {
		var err error
		last, err = uc.Execute(context.Background(), tpl.ID, userID)
		require.NoError(t, err)
	}

	assert.Equal(t, 5, last.UsageCount)
	require.NotNil(t, last.LastUsedAt)
	stored, _ := repo.FindByID(context.Background(), tpl.ID)
	assert.Equal(t, *last.LastUsedAt, *stored.LastUsedAt)
}

func TestToggleFavoriteUseCase_Involutive(t *testing.T) {
	repo := newMockTemplateRepository()
	userID := uuid.New()
	tpl := seedTemplate(t, repo, userID, "Intro", "active")
	uc := template.NewToggleFavoriteUseCase(repo)

	first, err := uc.Execute(context.Background(), tpl.ID, userID)
	require.NoError(t, err)
	assert.True(t, first.IsFavorite)

	second, err := uc.Execute(context.Background(), tpl.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, tpl.IsFavorite, second.IsFavorite)
}

func TestDuplicateTemplateUseCase(t *testing.T) {
	repo := newMockTemplateRepository()
	userID := uuid.New()
	src := seedTemplate(t, repo, userID, "Intro", "active")
	_, err := template.NewIncrementUsageUseCase(repo).Execute(context.Background(), src.ID, userID)
	require.NoError(t, err)

	dup, err := template.NewDuplicateTemplateUseCase(repo, nil).Execute(context.Background(), src.ID, userID)

	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Intro (Copy)", dup.Title)
	assert.Zero(t, dup.UsageCount)
	assert.Nil(t, dup.LastUsedAt)
	assert.Equal(t, userID, dup.UserID)
	assert.Equal(t, src.Content, dup.Content)
	assert.Equal(t, src.Tone, dup.Tone)
	assert.Equal(t, src.Status, dup.Status)
	assert.Equal(t, src.Tags, dup.Tags)
	assert.Len(t, repo.templates, 2)
}

func TestTemplateUseCases_NonOwnerIsRejected(t *testing.T) {
	repo := newMockTemplateRepository()
	owner := uuid.New()
	stranger := uuid.New()
	tpl := seedTemplate(t, repo, owner, "Intro", "active")
	ctx := context.Background()
	title := "Hijacked"

	_, errUpdate := template.NewUpdateTemplateUseCase(repo).Execute(ctx, tpl.ID, stranger, entity.TemplatePatch{Title: &title})
	errDelete := template.NewDeleteTemplateUseCase(repo).Execute(ctx, tpl.ID, stranger)
	_, errDup := template.NewDuplicateTemplateUseCase(repo, nil).Execute(ctx, tpl.ID, stranger)
	_, errFav := template.NewToggleFavoriteUseCase(repo).Execute(ctx, tpl.ID, stranger)
	_, errGet := template.NewGetTemplateUseCase(repo).Execute(ctx, tpl.ID, stranger)

	for _, err := range []error{errUpdate, errDelete, errDup, errFav, errGet} {
		require.Error(t, err)
		assert.True(t, apperror.IsUnauthorized(err))
		assert.Equal(t, "Unauthorized", err.(*apperror.AppError).Message)
	}

	stored, err := repo.FindByID(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro", stored.Title)
	assert.False(t, stored.IsFavorite)
	assert.Len(t, repo.templates, 1)
	assert.Zero(t, repo.updates)
}

func TestGetTemplateUseCase_NotFound(t *testing.T) {
	repo := newMockTemplateRepository()

	_, err := template.NewGetTemplateUseCase(repo).Execute(context.Background(), uuid.New(), uuid.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrTemplateNotFound))
	assert.Equal(t, "Template not found.", err.(*apperror.AppError).Message)
}

func TestListTemplates_DraftAppearsAfterActivation(t *testing.T) {
	repo := newMockTemplateRepository()
	userID := uuid.New()
	ctx := context.Background()
	draft := seedTemplate(t, repo, userID, "Draft one", "draft")
	list := template.NewListTemplatesUseCase(repo)

	items, page, err := list.Execute(ctx, userID, template.ListTemplatesInput{Page: 1, PageSize: 10, Status: "active"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, page.Total)

	active := "active"
	_, err = template.NewUpdateTemplateUseCase(repo).Execute(ctx, draft.ID, userID, entity.TemplatePatch{Status: &active})
	require.NoError(t, err)

	items, page, err = list.Execute(ctx, userID, template.ListTemplatesInput{Page: 1, PageSize: 10, Status: "active"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, draft.ID, items[0].ID)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListTemplates_PaginationMeta(t *testing.T) {
	repo := newMockTemplateRepository()
	userID := uuid.New()
	for i := 0; i < 7; i++ {
		seedTemplate(t, repo, userID, "T", "active")
	}
	seedTemplate(t, repo, uuid.New(), "Other user", "active")

	items, page, err := template.NewListTemplatesUseCase(repo).Execute(context.Background(), userID, template.ListTemplatesInput{Page: 3, PageSize: 3})

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.Page)
}

func TestListTemplates_InvalidStatus(t *testing.T) {
	_, _, err := template.NewListTemplatesUseCase(newMockTemplateRepository()).Execute(context.Background(), uuid.New(), template.ListTemplatesInput{Status: "published"})

	assert.True(t, apperror.IsValidation(err))
}
