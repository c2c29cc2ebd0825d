package proposal_test

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// mockProposalRepository повторяет поведение адаптера: вставка с шаблоном
// увеличивает его счётчик.
type mockProposalRepository struct {
	proposals map[uuid.UUID]*entity.ProposalTracking
	templates *mockTemplateRepository
	updates   int
}

func newMockProposalRepository(templates *mockTemplateRepository) *mockProposalRepository {
	return &mockProposalRepository{
		proposals: make(map[uuid.UUID]*entity.ProposalTracking),
		templates: templates,
	}
}

func (m *mockProposalRepository) Create(ctx context.Context, p *entity.ProposalTracking) error {
	if p.TemplateID != nil {
		if _, err := m.templates.IncrementUsage(ctx, *p.TemplateID); err != nil {
			return err
		}
	}
	c := *p
	m.proposals[p.ID] = &c
	return nil
}

func (m *mockProposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ProposalTracking, error) {
	if p, ok := m.proposals[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, apperror.ErrProposalNotFound
}

func (m *mockProposalRepository) ListByUser(ctx context.Context, userID uuid.UUID, f repository.ProposalFilter) ([]*entity.ProposalTracking, int, error) {
	var all []*entity.ProposalTracking
	for _, p := range m.proposals {
		if p.UserID != userID {
			continue
		}
		if f.Outcome != nil && p.CurrentOutcome != *f.Outcome {
			continue
		}
		if f.Platform != "" && p.Platform != f.Platform {
			continue
		}
		c := *p
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	start := min(f.Page.Offset(), len(all))
	end := min(start+f.Page.Limit(), len(all))
	return all[start:end], len(all), nil
}

func (m *mockProposalRepository) Update(ctx context.Context, p *entity.ProposalTracking) error {
	if _, ok := m.proposals[p.ID]; !ok {
		return apperror.ErrProposalNotFound
	}
	c := *p
	m.proposals[p.ID] = &c
	m.updates++
	return nil
}

func (m *mockProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.proposals[id]; !ok {
		return apperror.ErrProposalNotFound
	}
	delete(m.proposals, id)
	return nil
}

type mockTemplateRepository struct {
	templates map[uuid.UUID]*entity.Template
}

func newMockTemplateRepository() *mockTemplateRepository {
	return &mockTemplateRepository{templates: make(map[uuid.UUID]*entity.Template)}
}

func (m *mockTemplateRepository) Create(ctx context.Context, t *entity.Template) error {
	m.templates[t.ID] = t
	return nil
}

func (m *mockTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	if t, ok := m.templates[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, apperror.ErrTemplateNotFound
}

func (m *mockTemplateRepository) ListByUser(ctx context.Context, userID uuid.UUID, f repository.TemplateFilter) ([]*entity.Template, int, error) {
	return nil, 0, nil
}

func (m *mockTemplateRepository) Update(ctx context.Context, t *entity.Template) error {
	m.templates[t.ID] = t
	return nil
}

func (m *mockTemplateRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, apperror.ErrTemplateNotFound
	}
	now := time.Now().UTC()
	t.UsageCount++
	t.LastUsedAt = &now
	return t, nil
}

func (m *mockTemplateRepository) ToggleFavorite(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	return nil, nil
}

func (m *mockTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.templates, id)
	return nil
}

type mockPublisher struct {
	events []string
	data   []any
}

func (m *mockPublisher) Publish(userID uuid.UUID, event string, data any) {
	m.events = append(m.events, event)
	m.data = append(m.data, data)
}
