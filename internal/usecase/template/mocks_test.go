package template_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type mockTemplateRepository struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*entity.Template
	updates   int
}

func newMockTemplateRepository() *mockTemplateRepository {
	return &mockTemplateRepository{templates: make(map[uuid.UUID]*entity.Template)}
}

func clone(t *entity.Template) *entity.Template {
	c := *t
	c.Tags = append([]string(nil), t.Tags...)
	return &c
}

func (m *mockTemplateRepository) Create(ctx context.Context, t *entity.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = clone(t)
	return nil
}

func (m *mockTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.templates[id]; ok {
		return clone(t), nil
	}
	return nil, apperror.ErrTemplateNotFound
}

func (m *mockTemplateRepository) ListByUser(ctx context.Context, userID uuid.UUID, f repository.TemplateFilter) ([]*entity.Template, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*entity.Template
	for _, t := range m.templates {
		if t.UserID != userID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.FavoritesOnly && !t.IsFavorite {
			continue
		}
		all = append(all, clone(t))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })

	start := f.Page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Page.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *mockTemplateRepository) Update(ctx context.Context, t *entity.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[t.ID]; !ok {
		return apperror.ErrTemplateNotFound
	}
	m.templates[t.ID] = clone(t)
	m.updates++
	return nil
}

func (m *mockTemplateRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, apperror.ErrTemplateNotFound
	}
	now := time.Now().UTC()
	t.UsageCount++
	t.LastUsedAt = &now
	return clone(t), nil
}

func (m *mockTemplateRepository) ToggleFavorite(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, apperror.ErrTemplateNotFound
	}
	t.IsFavorite = !t.IsFavorite
	return clone(t), nil
}

func (m *mockTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return apperror.ErrTemplateNotFound
	}
	delete(m.templates, id)
	return nil
}

type published struct {
	userID uuid.UUID
	event  string
}

type mockPublisher struct {
	mu     sync.Mutex
	events []published
}

func (m *mockPublisher) Publish(userID uuid.UUID, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, published{userID: userID, event: event})
}

type mockUserRepository struct {
	users map[uuid.UUID]*entity.User
}

func (m *mockUserRepository) Create(ctx context.Context, u *entity.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, u *entity.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) SetRole(ctx context.Context, email string, role valueobject.Role) error {
	return nil
}
