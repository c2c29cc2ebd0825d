package portfolio_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
	"github.com/ignatzorin/proposal-backend/internal/usecase/portfolio"
)

func init() {
	logger.Silence()
}

type mockProjectRepository struct {
	projects map[uuid.UUID]*entity.Project
	failNext error
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{projects: make(map[uuid.UUID]*entity.Project)}
}

func (m *mockProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	c := *p
	m.projects[p.ID] = &c
	return nil
}

func (m *mockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	if p, ok := m.projects[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, apperror.ErrProjectNotFound
}

func (m *mockProjectRepository) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Project, int, error) {
	var out []*entity.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *mockProjectRepository) Update(ctx context.Context, p *entity.Project) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	c := *p
	m.projects[p.ID] = &c
	return nil
}

func (m *mockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.projects, id)
	return nil
}

type mockTestimonialRepository struct {
	items map[uuid.UUID]*entity.Testimonial
}

func (m *mockTestimonialRepository) Create(ctx context.Context, t *entity.Testimonial) error {
	c := *t
	m.items[t.ID] = &c
	return nil
}

func (m *mockTestimonialRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Testimonial, error) {
	if t, ok := m.items[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, apperror.ErrTestimonialNotFound
}

func (m *mockTestimonialRepository) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Testimonial, int, error) {
	var out []*entity.Testimonial
	for _, t := range m.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (m *mockTestimonialRepository) Update(ctx context.Context, t *entity.Testimonial) error {
	c := *t
	m.items[t.ID] = &c
	return nil
}

func (m *mockTestimonialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

type mockStorage struct {
	saved   map[string][]byte
	deleted []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{saved: make(map[string][]byte)}
}

func (m *mockStorage) Save(ctx context.Context, userID uuid.UUID, name, contentType string, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	key := userID.String() + "/" + uuid.NewString() + "-" + name
	m.saved[key] = data
	return key, int64(len(data)), nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.saved, key)
	return nil
}

func (m *mockStorage) URL(key string) string {
	return "/media/" + key
}

func TestProjectUseCase_CRUD(t *testing.T) {
	repo := newMockProjectRepository()
	uc := portfolio.NewProjectUseCase(repo, newMockStorage())
	userID := uuid.New()
	ctx := context.Background()

	p, err := uc.Create(ctx, userID, entity.ProjectParams{
		Title:        "Shop backend",
		Technologies: []string{"Go", "go", "Postgres"},
		URL:          "https://example.com",
	})
	require.NoError(t, err)
	assert.Len(t, p.Technologies, 2)

	title := "Shop API"
	updated, err := uc.Update(ctx, p.ID, userID, entity.ProjectPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Shop API", updated.Title)

	items, page, err := uc.List(ctx, userID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, page.Page)

	require.NoError(t, uc.Delete(ctx, p.ID, userID))
	_, err = uc.Get(ctx, p.ID, userID)
	assert.ErrorIs(t, err, apperror.ErrProjectNotFound)
}

func TestProjectUseCase_InvalidURL(t *testing.T) {
	_, err := portfolio.NewProjectUseCase(newMockProjectRepository(), nil).Create(context.Background(), uuid.New(), entity.ProjectParams{
		Title: "X",
		URL:   "not a url",
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestProjectUseCase_SetCoverReplacesPrevious(t *testing.T) {
	repo := newMockProjectRepository()
	storage := newMockStorage()
	uc := portfolio.NewProjectUseCase(repo, storage)
	userID := uuid.New()
	ctx := context.Background()
	p, err := uc.Create(ctx, userID, entity.ProjectParams{Title: "Shop"})
	require.NoError(t, err)

	first, err := uc.SetCover(ctx, p.ID, userID, "a.png", "image/png", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	firstKey := *first.CoverImage

	second, err := uc.SetCover(ctx, p.ID, userID, "b.png", "image/png", bytes.NewReader([]byte("two")))
	require.NoError(t, err)

	assert.NotEqual(t, firstKey, *second.CoverImage)
	assert.Equal(t, []string{firstKey}, storage.deleted)
	assert.Equal(t, "/media/"+*second.CoverImage, uc.CoverURL(second))
}

func TestProjectUseCase_SetCoverCleansUpOnFailure(t *testing.T) {
	repo := newMockProjectRepository()
	storage := newMockStorage()
	uc := portfolio.NewProjectUseCase(repo, storage)
	userID := uuid.New()
	p, _ := uc.Create(context.Background(), userID, entity.ProjectParams{Title: "Shop"})
	repo.failNext = errors.New("db down")

	_, err := uc.SetCover(context.Background(), p.ID, userID, "a.png", "image/png", bytes.NewReader([]byte("x")))

	require.Error(t, err)
	assert.Empty(t, storage.saved)
	assert.Contains(t, err.Error(), "Failed to update project")
}

func TestProjectUseCase_NonOwner(t *testing.T) {
	repo := newMockProjectRepository()
	storage := newMockStorage()
	uc := portfolio.NewProjectUseCase(repo, storage)
	owner := uuid.New()
	p, _ := uc.Create(context.Background(), owner, entity.ProjectParams{Title: "Shop"})

	_, err := uc.SetCover(context.Background(), p.ID, uuid.New(), "a.png", "image/png", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, uc.Delete(context.Background(), p.ID, uuid.New()), apperror.ErrForbidden)
	assert.Empty(t, storage.saved)
	assert.Len(t, repo.projects, 1)
}

func TestTestimonialUseCase(t *testing.T) {
	projects := newMockProjectRepository()
	repo := &mockTestimonialRepository{items: make(map[uuid.UUID]*entity.Testimonial)}
	uc := portfolio.NewTestimonialUseCase(repo, projects)
	userID := uuid.New()
	ctx := context.Background()

	rating := 6
	_, err := uc.Create(ctx, userID, entity.TestimonialParams{ClientName: "Bob", Content: "Great", Rating: &rating})
	assert.True(t, apperror.IsValidation(err))

	rating = 5
	tm, err := uc.Create(ctx, userID, entity.TestimonialParams{ClientName: "Bob", Content: "Great", Rating: &rating})
	require.NoError(t, err)

	content := "Excellent work"
	updated, err := uc.Update(ctx, tm.ID, userID, entity.TestimonialPatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "Excellent work", updated.Content)

	_, err = uc.Update(ctx, tm.ID, uuid.New(), entity.TestimonialPatch{Content: &content})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestTestimonialUseCase_ForeignProject(t *testing.T) {
	projects := newMockProjectRepository()
	foreign, _ := entity.NewProject(uuid.New(), entity.ProjectParams{Title: "Not mine"})
	projects.projects[foreign.ID] = foreign
	uc := portfolio.NewTestimonialUseCase(&mockTestimonialRepository{items: make(map[uuid.UUID]*entity.Testimonial)}, projects)

	_, err := uc.Create(context.Background(), uuid.New(), entity.TestimonialParams{
		ClientName: "Bob",
		Content:    "Great",
		ProjectID:  &foreign.ID,
	})

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
