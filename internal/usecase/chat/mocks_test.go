package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

// scriptedModel отдаёт заранее заданные шаги. Последний шаг повторяется.
type scriptedModel struct {
	mu       sync.Mutex
	steps    []scriptedStep
	calls    int
	requests []repository.ChatRequest
}

type scriptedStep struct {
	deltas []string
	calls  []repository.ToolCall
	err    error
	block  bool
}

func (m *scriptedModel) Step(ctx context.Context, req repository.ChatRequest, onText func(string) error) (*repository.StepResult, error) {
	m.mu.Lock()
	idx := m.calls
	if idx >= len(m.steps) {
		idx = len(m.steps) - 1
	}
	s := m.steps[idx]
	m.calls++
	turns := append([]repository.ChatTurn(nil), req.Turns...)
	m.requests = append(m.requests, repository.ChatRequest{System: req.System, Turns: turns, Tools: req.Tools})
	m.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	text := ""
	for _, d := range s.deltas {
		if err := onText(d); err != nil {
			return nil, err
		}
		text += d
	}
	return &repository.StepResult{Text: text, ToolCalls: s.calls}, nil
}

type mockUsers struct {
	users map[uuid.UUID]*entity.User
}

func (m *mockUsers) Create(ctx context.Context, u *entity.User) error { m.users[u.ID] = u; return nil }

func (m *mockUsers) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, apperror.ErrUserNotFound
}

func (m *mockUsers) Update(ctx context.Context, u *entity.User) error { return nil }

func (m *mockUsers) SetRole(ctx context.Context, email string, role valueobject.Role) error {
	return nil
}

type mockConversations struct {
	mu    sync.Mutex
	convs map[uuid.UUID]*entity.Conversation
}

func (m *mockConversations) Create(ctx context.Context, c *entity.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs[c.ID] = c
	return nil
}

func (m *mockConversations) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.convs[id]; ok {
		return c, nil
	}
	return nil, apperror.ErrConversationNotFound
}

func (m *mockConversations) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Conversation, int, error) {
	return nil, 0, nil
}

func (m *mockConversations) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.convs[id]; ok {
		c.UpdatedAt = at
	}
	return nil
}

func (m *mockConversations) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type mockMessages struct {
	mu   sync.Mutex
	msgs []*entity.Message
}

func (m *mockMessages) Append(ctx context.Context, messages []*entity.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, messages...)
	return nil
}

func (m *mockMessages) ListByConversation(ctx context.Context, id uuid.UUID) ([]*entity.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Message
	for _, msg := range m.msgs {
		if msg.ConversationID == id {
			out = append(out, msg)
		}
	}
	return out, nil
}

type mockTemplates struct {
	templates       []*entity.Template
	lastLimit       int
	failOnCancelled bool
}

func (m *mockTemplates) Create(ctx context.Context, t *entity.Template) error {
	m.templates = append(m.templates, t)
	return nil
}

func (m *mockTemplates) FindByID(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	for _, t := range m.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, apperror.ErrTemplateNotFound
}

func (m *mockTemplates) ListByUser(ctx context.Context, userID uuid.UUID, f repository.TemplateFilter) ([]*entity.Template, int, error) {
	if m.failOnCancelled && ctx.Err() != nil {
		return nil, 0, ctx.Err()
	}
	m.lastLimit = f.Page.Limit()
	var out []*entity.Template
	for _, t := range m.templates {
		if t.UserID != userID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		out = append(out, t)
	}
	total := len(out)
	if len(out) > f.Page.Limit() {
		out = out[:f.Page.Limit()]
	}
	return out, total, nil
}

func (m *mockTemplates) Update(ctx context.Context, t *entity.Template) error { return nil }

func (m *mockTemplates) IncrementUsage(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	return m.FindByID(ctx, id)
}

func (m *mockTemplates) ToggleFavorite(ctx context.Context, id uuid.UUID) (*entity.Template, error) {
	return m.FindByID(ctx, id)
}

func (m *mockTemplates) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type mockProjects struct {
	projects []*entity.Project
}

func (m *mockProjects) Create(ctx context.Context, p *entity.Project) error { return nil }

func (m *mockProjects) FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	return nil, apperror.ErrProjectNotFound
}

func (m *mockProjects) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Project, int, error) {
	var out []*entity.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *mockProjects) Update(ctx context.Context, p *entity.Project) error { return nil }

func (m *mockProjects) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type mockTestimonials struct {
	testimonials []*entity.Testimonial
	err          error
}

func (m *mockTestimonials) Create(ctx context.Context, t *entity.Testimonial) error { return nil }

func (m *mockTestimonials) FindByID(ctx context.Context, id uuid.UUID) (*entity.Testimonial, error) {
	return nil, apperror.ErrTestimonialNotFound
}

func (m *mockTestimonials) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Testimonial, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []*entity.Testimonial
	for _, t := range m.testimonials {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (m *mockTestimonials) Update(ctx context.Context, t *entity.Testimonial) error { return nil }

func (m *mockTestimonials) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type mockProposals struct {
	proposals map[uuid.UUID]*entity.ProposalTracking
}

func (m *mockProposals) Create(ctx context.Context, p *entity.ProposalTracking) error {
	m.proposals[p.ID] = p
	return nil
}

func (m *mockProposals) FindByID(ctx context.Context, id uuid.UUID) (*entity.ProposalTracking, error) {
	if p, ok := m.proposals[id]; ok {
		return p, nil
	}
	return nil, apperror.ErrProposalNotFound
}

func (m *mockProposals) ListByUser(ctx context.Context, userID uuid.UUID, f repository.ProposalFilter) ([]*entity.ProposalTracking, int, error) {
	return nil, 0, nil
}

func (m *mockProposals) Update(ctx context.Context, p *entity.ProposalTracking) error { return nil }

func (m *mockProposals) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type proposalCreatorFunc func(ctx context.Context, userID uuid.UUID, p entity.ProposalParams) (*entity.ProposalTracking, error)

func (f proposalCreatorFunc) Execute(ctx context.Context, userID uuid.UUID, p entity.ProposalParams) (*entity.ProposalTracking, error) {
	return f(ctx, userID, p)
}

type templateCreatorFunc func(ctx context.Context, userID uuid.UUID, p entity.TemplateParams) (*entity.Template, error)

func (f templateCreatorFunc) Execute(ctx context.Context, userID uuid.UUID, p entity.TemplateParams) (*entity.Template, error) {
	return f(ctx, userID, p)
}

type fixture struct {
	user         *entity.User
	model        *scriptedModel
	convs        *mockConversations
	msgs         *mockMessages
	templates    *mockTemplates
	projects     *mockProjects
	testimonials *mockTestimonials
	proposals    *mockProposals
	tools        *Tools
	agent        *Agent
}

func newFixture(steps ...scriptedStep) *fixture {
	user, _ := entity.NewUser("Ada", "ada@example.com", "hash")
	f := &fixture{
		user:         user,
		model:        &scriptedModel{steps: steps},
		convs:        &mockConversations{convs: map[uuid.UUID]*entity.Conversation{}},
		msgs:         &mockMessages{},
		templates:    &mockTemplates{},
		projects:     &mockProjects{},
		testimonials: &mockTestimonials{},
		proposals:    &mockProposals{proposals: map[uuid.UUID]*entity.ProposalTracking{}},
	}
	f.tools = &Tools{
		Templates:    f.templates,
		Projects:     f.projects,
		Testimonials: f.testimonials,
		Proposals:    f.proposals,
		CreateProposal: proposalCreatorFunc(func(ctx context.Context, userID uuid.UUID, p entity.ProposalParams) (*entity.ProposalTracking, error) {
			proposal, err := entity.NewProposalTracking(userID, p)
			if err != nil {
				return nil, err
			}
			return proposal, f.proposals.Create(ctx, proposal)
		}),
		CreateTemplate: templateCreatorFunc(func(ctx context.Context, userID uuid.UUID, p entity.TemplateParams) (*entity.Template, error) {
			tpl, err := entity.NewTemplate(userID, p)
			if err != nil {
				return nil, err
			}
			return tpl, f.templates.Create(ctx, tpl)
		}),
	}
	users := &mockUsers{users: map[uuid.UUID]*entity.User{user.ID: user}}
	f.agent = NewAgent(f.model, users, f.convs, f.msgs, f.tools, Options{})
	return f
}

// recorder собирает события потока.
type recorder struct {
	events []Event
}

func (r *recorder) emit(e Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recorder) count(eventType string) int {
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
