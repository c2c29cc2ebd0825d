package chat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

const (
	ToolGetTemplates               = "get_templates"
	ToolGetPortfolio               = "get_portfolio"
	ToolSaveProposal               = "save_proposal"
	ToolCreateTemplateFromProposal = "create_template_from_proposal"

	defaultToolLimit = 10
	maxToolLimit     = 50
	portfolioLimit   = 20
)

// ProposalCreator сохраняет предложение от имени пользователя.
type ProposalCreator interface {
	Execute(ctx context.Context, userID uuid.UUID, params entity.ProposalParams) (*entity.ProposalTracking, error)
}

// TemplateCreator создаёт шаблон от имени пользователя.
type TemplateCreator interface {
	Execute(ctx context.Context, userID uuid.UUID, params entity.TemplateParams) (*entity.Template, error)
}

// Tools набор инструментов модели. Каждый вызов ограничен данными userID.
type Tools struct {
	Templates      repository.TemplateRepository
	Projects       repository.ProjectRepository
	Testimonials   repository.TestimonialRepository
	Proposals      repository.ProposalRepository
	CreateProposal ProposalCreator
	CreateTemplate TemplateCreator
}

var errUnknownTool = errors.New("unknown tool")

// Specs описания инструментов для провайдера.
func (t *Tools) Specs() []repository.ToolSpec {
	return []repository.ToolSpec{
		{
			Name:        ToolGetTemplates,
			Description: "List the freelancer's saved proposal templates, most recently updated first.",
			Params: map[string]repository.ToolParam{
				"status": {Type: "string", Description: "Only templates with this status.", Enum: []string{"draft", "active", "archived"}},
				"limit":  {Type: "integer", Description: "Maximum number of templates, 1-50. Default 10."},
			},
		},
		{
			Name:        ToolGetPortfolio,
			Description: "Get the freelancer's portfolio projects and client testimonials.",
			Params:      map[string]repository.ToolParam{},
		},
		{
			Name:        ToolSaveProposal,
			Description: "Save a proposal the freelancer sent so its outcome can be tracked.",
			Params: map[string]repository.ToolParam{
				"jobTitle":        {Type: "string", Description: "Title of the job posting."},
				"jobDescription":  {Type: "string", Description: "Description of the job."},
				"proposalContent": {Type: "string", Description: "Final proposal text."},
				"platform":        {Type: "string", Description: "Platform, e.g. upwork, fiverr, linkedin."},
				"jobPostingUrl":   {Type: "string", Description: "Link to the job posting."},
				"templateId":      {Type: "string", Description: "Id of the template the proposal was based on."},
			},
			Required: []string{"jobTitle", "jobDescription", "proposalContent"},
		},
		{
			Name:        ToolCreateTemplateFromProposal,
			Description: "Create a reusable draft template from a saved proposal.",
			Params: map[string]repository.ToolParam{
				"proposalId": {Type: "string", Description: "Id of the saved proposal."},
				"title":      {Type: "string", Description: "Name of the new template."},
				"tone":       {Type: "string", Description: "Tone of the template.", Enum: valueobject.ToneStrings()},
				"category":   {Type: "string", Description: "Category, e.g. Web development."},
			},
			Required: []string{"proposalId", "title"},
		},
	}
}

// Run выполняет инструмент. Ошибка уровня приложения возвращается модели
// как {"error": "..."}; наружу уходит только отмена контекста.
func (t *Tools) Run(ctx context.Context, userID uuid.UUID, call repository.ToolCall) (map[string]any, error) {
	var (
		out map[string]any
		err error
	)
	switch call.Name {
	case ToolGetTemplates:
		out, err = t.getTemplates(ctx, userID, call.Args)
	case ToolGetPortfolio:
		out, err = t.getPortfolio(ctx, userID)
	case ToolSaveProposal:
		out, err = t.saveProposal(ctx, userID, call.Args)
	case ToolCreateTemplateFromProposal:
		out, err = t.createTemplateFromProposal(ctx, userID, call.Args)
	default:
		err = fmt.Errorf("%w: %s", errUnknownTool, call.Name)
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return map[string]any{"error": toolErrorMessage(err)}, nil
	}
	return out, nil
}

func toolErrorMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if errors.Is(err, errUnknownTool) {
		return err.Error()
	}
	return "Tool failed"
}

func (t *Tools) getTemplates(ctx context.Context, userID uuid.UUID, args map[string]any) (map[string]any, error) {
	limit := argInt(args, "limit", defaultToolLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > maxToolLimit {
		limit = maxToolLimit
	}
	filter := repository.TemplateFilter{Page: pagination.Params{Page: 1, PageSize: limit}}
	if s := argString(args, "status"); s != "" {
		status, err := valueobject.NewTemplateStatus(s)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	items, total, err := t.Templates.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, apperror.Internal(err, "list", "templates")
	}
	list := make([]map[string]any, 0, len(items))
	for _, tpl := range items {
		list = append(list, map[string]any{
			"id":          tpl.ID.String(),
			"title":       tpl.Title,
			"description": tpl.Description,
			"content":     tpl.Content,
			"tone":        string(tpl.Tone),
			"status":      string(tpl.Status),
			"category":    tpl.Category,
			"tags":        tpl.Tags,
			"usageCount":  tpl.UsageCount,
			"isFavorite":  tpl.IsFavorite,
		})
	}
	return map[string]any{"templates": list, "total": total}, nil
}

// getPortfolio загружает проекты и отзывы параллельно.
func (t *Tools) getPortfolio(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	page := pagination.Params{Page: 1, PageSize: portfolioLimit}
	var (
		projects     []*entity.Project
		testimonials []*entity.Testimonial
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, _, err = t.Projects.ListByUser(gctx, userID, page)
		return err
	})
	g.Go(func() error {
		var err error
		testimonials, _, err = t.Testimonials.ListByUser(gctx, userID, page)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal(err, "get", "portfolio")
	}

	projectList := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		item := map[string]any{
			"id":           p.ID.String(),
			"title":        p.Title,
			"description":  p.Description,
			"clientName":   p.ClientName,
			"url":          p.URL,
			"technologies": p.Technologies,
			"results":      p.Results,
		}
		if p.CompletedAt != nil {
			item["completedAt"] = p.CompletedAt.Format("2006-01-02")
		}
		projectList = append(projectList, item)
	}
	testimonialList := make([]map[string]any, 0, len(testimonials))
	for _, tm := range testimonials {
		item := map[string]any{
			"id":          tm.ID.String(),
			"clientName":  tm.ClientName,
			"clientTitle": tm.ClientTitle,
			"company":     tm.Company,
			"content":     tm.Content,
		}
		if tm.Rating != nil {
			item["rating"] = *tm.Rating
		}
		testimonialList = append(testimonialList, item)
	}
	return map[string]any{"projects": projectList, "testimonials": testimonialList}, nil
}

func (t *Tools) saveProposal(ctx context.Context, userID uuid.UUID, args map[string]any) (map[string]any, error) {
	params := entity.ProposalParams{
		JobTitle:        argString(args, "jobTitle"),
		JobDescription:  argString(args, "jobDescription"),
		ProposalContent: argString(args, "proposalContent"),
		Platform:        argString(args, "platform"),
		JobPostingURL:   argString(args, "jobPostingUrl"),
	}
	if raw := argString(args, "templateId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.Validation("Invalid template id")
		}
		params.TemplateID = &id
	}

	p, err := t.CreateProposal.Execute(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"proposalId":     p.ID.String(),
		"jobTitle":       p.JobTitle,
		"platform":       p.Platform,
		"proposalLength": p.ProposalLength,
		"status":         string(p.CurrentOutcome),
	}, nil
}

func (t *Tools) createTemplateFromProposal(ctx context.Context, userID uuid.UUID, args map[string]any) (map[string]any, error) {
	id, err := uuid.Parse(argString(args, "proposalId"))
	if err != nil {
		return nil, apperror.Validation("Invalid proposal id")
	}
	p, err := t.Proposals.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "get", "proposal")
	}
	if !p.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}
	if strings.TrimSpace(p.ProposalContent) == "" {
		return nil, apperror.Validation("Proposal has no content")
	}

	tpl, err := t.CreateTemplate.Execute(ctx, userID, entity.TemplateParams{
		Title:       argString(args, "title"),
		Description: "Created from proposal: " + p.JobTitle,
		Content:     p.ProposalContent,
		Tone:        string(valueobject.ToneOrDefault(argString(args, "tone"))),
		Status:      string(valueobject.TemplateStatusDraft),
		Category:    argString(args, "category"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"templateId": tpl.ID.String(),
		"title":      tpl.Title,
		"status":     string(tpl.Status),
	}, nil
}

func argString(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// argInt принимает число из JSON (float64), int или строку.
func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
