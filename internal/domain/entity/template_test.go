package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

func newTestTemplate(t *testing.T) *Template {
	t.Helper()
	tpl, err := NewTemplate(uuid.New(), TemplateParams{
		Title:       "Upwork intro",
		Description: "Short opener",
		Content:     "Hi {{client_name}}, I read about {{ project }} and {{client_name}}.",
		Tone:        "friendly",
		Category:    "web",
		Tags:        []string{"go", "api", "Go"},
	})
	require.NoError(t, err)
	return tpl
}

func TestNewTemplate_Defaults(t *testing.T) {
	tpl, err := NewTemplate(uuid.New(), TemplateParams{Title: " T ", Content: " body "})
	require.NoError(t, err)

	assert.Equal(t, "T", tpl.Title)
	assert.Equal(t, valueobject.ToneProfessional, tpl.Tone)
	assert.Equal(t, valueobject.TemplateStatusDraft, tpl.Status)
	assert.Zero(t, tpl.UsageCount)
	assert.Nil(t, tpl.LastUsedAt)
	assert.Empty(t, tpl.Tags)
}

func TestNewTemplate_Validation(t *testing.T) {
	_, err := NewTemplate(uuid.New(), TemplateParams{Content: "body"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "Title is required")

	_, err = NewTemplate(uuid.New(), TemplateParams{Title: "x", Content: "y", Tone: "grumpy"})
	assert.True(t, apperror.IsValidation(err))

	_, err = NewTemplate(uuid.Nil, TemplateParams{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestTemplate_Duplicate(t *testing.T) {
	src := newTestTemplate(t)
	used := time.Now().Add(-time.Hour)
	src.UsageCount = 7
	src.LastUsedAt = &used

	dup := src.Duplicate()

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, src.UserID, dup.UserID)
	assert.Equal(t, "Upwork intro (Copy)", dup.Title)
	assert.Zero(t, dup.UsageCount)
	assert.Nil(t, dup.LastUsedAt)
	assert.Equal(t, src.Content, dup.Content)
	assert.Equal(t, src.Description, dup.Description)
	assert.Equal(t, src.Tone, dup.Tone)
	assert.Equal(t, src.Status, dup.Status)
	assert.Equal(t, src.Category, dup.Category)
	assert.Equal(t, src.Tags, dup.Tags)
	assert.Equal(t, src.IsFavorite, dup.IsFavorite)
	assert.Equal(t, src.IsPublic, dup.IsPublic)

	dup.Tags[0] = "changed"
	assert.Equal(t, "go", src.Tags[0])
}

func TestTemplate_ApplyIsAtomic(t *testing.T) {
	tpl := newTestTemplate(t)
	before := *tpl

	badTone := "grumpy"
	title := "New title"
	err := tpl.Apply(TemplatePatch{Title: &title, Tone: &badTone})
	require.Error(t, err)
	assert.Equal(t, before.Title, tpl.Title)
	assert.Equal(t, before.UpdatedAt, tpl.UpdatedAt)

	status := "active"
	require.NoError(t, tpl.Apply(TemplatePatch{Title: &title, Status: &status}))
	assert.Equal(t, "New title", tpl.Title)
	assert.Equal(t, valueobject.TemplateStatusActive, tpl.Status)
	assert.False(t, tpl.UpdatedAt.Before(before.UpdatedAt))
}

func TestTemplate_Placeholders(t *testing.T) {
	tpl := newTestTemplate(t)
	assert.Equal(t, []string{"client_name", "project"}, tpl.Placeholders())
	assert.Equal(t, []string{"go", "api"}, tpl.Tags)
}
