package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/http/middleware"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/template"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Silence()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Pagination *struct {
		Page       int `json:"page"`
		PageSize   int `json:"pageSize"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

// asUser имитирует AuthMiddleware.
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

type memTemplateRepository struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*entity.Template
}

func newMemTemplateRepository() *memTemplateRepository {
	return &memTemplateRepository{templates: make(map[uuid.UUID]*entity.Template)}
}

func (m *memTemplateRepository) Create(ctx context.Context, t *entity.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	m.templates[t.ID] = &c
	return nil
}

func (m *memTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, apperror.ErrTemplateNotFound
	}
	c := *t
	return &c, nil
}

func (m *memTemplateRepository) ListByUser(ctx context.Context, userID uuid.UUID, f repository.TemplateFilter) ([]*entity.Template, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*entity.Template
	for _, t := range m.templates {
		if t.UserID != userID || (f.Status != nil && t.Status != *f.Status) || (f.FavoritesOnly && !t.IsFavorite) {
			continue
		}
		c := *t
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	start := min(f.Page.Offset(), len(all))
	end := min(start+f.Page.Limit(), len(all))
	return all[start:end], len(all), nil
}

func (m *memTemplateRepository) Update(ctx context.Context, t *entity.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[t.ID]; !ok {
		return apperror.ErrTemplateNotFound
	}
	c := *t
	m.templates[t.ID] = &c
	return nil
}

func (m *memTemplateRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, apperror.ErrTemplateNotFound
	}
	now := time.Now().UTC()
	t.UsageCount++
	t.LastUsedAt = &now
	c := *t
	return &c, nil
}

func (m *memTemplateRepository) ToggleFavorite(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, apperror.ErrTemplateNotFound
	}
	t.IsFavorite = !t.IsFavorite
	c := *t
	return &c, nil
}

func (m *memTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.templates, id)
	return nil
}

func newTemplateRouter(repo repository.TemplateRepository, userID uuid.UUID) *gin.Engine {
	h := NewTemplateHandler(
		template.NewCreateTemplateUseCase(repo, nil),
		template.NewGetTemplateUseCase(repo),
		template.NewListTemplatesUseCase(repo),
		template.NewUpdateTemplateUseCase(repo),
		template.NewDeleteTemplateUseCase(repo),
		template.NewDuplicateTemplateUseCase(repo, nil),
		template.NewToggleFavoriteUseCase(repo),
		template.NewIncrementUsageUseCase(repo),
		nil,
		nil,
	)
	r := gin.New()
	r.Use(asUser(userID))
	r.GET("/templates", h.List)
	r.POST("/templates", h.Create)
	r.GET("/templates/:id", h.Get)
	r.PATCH("/templates/:id", h.Update)
	r.DELETE("/templates/:id", h.Delete)
	r.POST("/templates/:id/duplicate", h.Duplicate)
	r.POST("/templates/:id/favorite", h.ToggleFavorite)
	r.POST("/templates/:id/use", h.Use)
	return r
}

func createTemplate(t *testing.T, r http.Handler, body map[string]any) uuid.UUID {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/templates", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out.ID
}

func templatePath(id uuid.UUID, suffix string) string {
	return "/templates/" + id.String() + suffix
}

func TestTemplateHandler_Unauthorized(t *testing.T) {
	r := newTemplateRouter(newMemTemplateRepository(), uuid.Nil)

	w, env := doJSON(t, r, http.MethodGet, "/templates", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Unauthorized", env.Error.Message)
	assert.Equal(t, "null", string(env.Data))
}

func TestTemplateHandler_ValidationError(t *testing.T) {
	r := newTemplateRouter(newMemTemplateRepository(), uuid.New())

	w, env := doJSON(t, r, http.MethodPost, "/templates", map[string]any{"content": "Hi"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Title is required", env.Error.Message)
}

func TestTemplateHandler_DraftHiddenFromActiveUntilActivated(t *testing.T) {
	r := newTemplateRouter(newMemTemplateRepository(), uuid.New())
	id := createTemplate(t, r, map[string]any{"title": "Upwork intro", "content": "Hi {{client_name}}"})

	w, env := doJSON(t, r, http.MethodGet, "/templates?status=active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 0, env.Pagination.Total)
	assert.JSONEq(t, "[]", string(env.Data))

	w, _ = doJSON(t, r, http.MethodPatch, templatePath(id, ""), map[string]any{"status": "active"})
	require.Equal(t, http.StatusOK, w.Code)

	_, env = doJSON(t, r, http.MethodGet, "/templates?status=active&page=1&pageSize=10", nil)
	assert.Equal(t, 1, env.Pagination.Total)
	assert.Equal(t, 1, env.Pagination.TotalPages)
	assert.Equal(t, 10, env.Pagination.PageSize)
}

func TestTemplateHandler_ForeignTemplate(t *testing.T) {
	repo := newMemTemplateRepository()
	owner := newTemplateRouter(repo, uuid.New())
	id := createTemplate(t, owner, map[string]any{"title": "Mine", "content": "Hello"})

	stranger := newTemplateRouter(repo, uuid.New())
	w, env := doJSON(t, stranger, http.MethodPatch, templatePath(id, ""), map[string]any{"title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Unauthorized", env.Error.Message)

	w, _ = doJSON(t, stranger, http.MethodDelete, templatePath(id, ""), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	stored, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Mine", stored.Title)
}

func TestTemplateHandler_NotFoundAndBadID(t *testing.T) {
	r := newTemplateRouter(newMemTemplateRepository(), uuid.New())

	w, env := doJSON(t, r, http.MethodGet, "/templates/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Template not found.", env.Error.Message)

	w, _ = doJSON(t, r, http.MethodGet, "/templates/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplateHandler_UseFavoriteDuplicate(t *testing.T) {
	r := newTemplateRouter(newMemTemplateRepository(), uuid.New())
	id := createTemplate(t, r, map[string]any{"title": "Base", "content": "Hello", "status": "active"})

	doJSON(t, r, http.MethodPost, templatePath(id, "/use"), nil)
	_, env := doJSON(t, r, http.MethodPost, templatePath(id, "/use"), nil)
	var used struct {
		UsageCount int        `json:"usageCount"`
		LastUsedAt *time.Time `json:"lastUsedAt"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &used))
	assert.Equal(t, 2, used.UsageCount)
	assert.NotNil(t, used.LastUsedAt)

	_, env = doJSON(t, r, http.MethodPost, templatePath(id, "/favorite"), nil)
	assert.Contains(t, string(env.Data), `"isFavorite":true`)
	_, env = doJSON(t, r, http.MethodPost, templatePath(id, "/favorite"), nil)
	assert.Contains(t, string(env.Data), `"isFavorite":false`)

	w, env := doJSON(t, r, http.MethodPost, templatePath(id, "/duplicate"), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var dup struct {
		ID         uuid.UUID `json:"id"`
		Title      string    `json:"title"`
		Status     string    `json:"status"`
		UsageCount int       `json:"usageCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dup))
	assert.NotEqual(t, id, dup.ID)
	assert.Equal(t, "Base (Copy)", dup.Title)
	assert.Equal(t, "active", dup.Status)
	assert.Equal(t, 0, dup.UsageCount)
}
