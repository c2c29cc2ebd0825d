package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

// GeminiProvider реализует AIProvider поверх Gemini API.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: не задан GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiProvider{client: cl, modelName: modelName}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiProvider) model(system string) *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.modelName)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return m
}

// Step стримит один шаг. Последняя реплика уходит сообщением,
// предыдущие становятся историей чата.
func (g *GeminiProvider) Step(ctx context.Context, req repository.ChatRequest, onText func(string) error) (*repository.StepResult, error) {
	contents := toContents(req.Turns)
	if len(contents) == 0 {
		return nil, errors.New("gemini: пустая история")
	}

	m := g.model(req.System)
	if len(req.Tools) > 0 {
		m.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(req.Tools)}}
	}

	cs := m.StartChat()
	cs.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	iter := cs.SendMessageStream(ctx, last.Parts...)
	res := &repository.StepResult{}
	var text strings.Builder
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gemini stream: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				if p == "" {
					continue
				}
				text.WriteString(string(p))
				if err := onText(string(p)); err != nil {
					return nil, err
				}
			case genai.FunctionCall:
				// Gemini не присваивает вызовам id
				res.ToolCalls = append(res.ToolCalls, repository.ToolCall{
					ID:   "call_" + uuid.NewString(),
					Name: p.Name,
					Args: nonNilArgs(p.Args),
				})
			}
		}
	}
	res.Text = text.String()
	return res, nil
}

// GenerateJSON разовая генерация с ResponseMIMEType=application/json.
func (g *GeminiProvider) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	m := g.model(system)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.7)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: пустой ответ")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// toContents переводит историю в роли user/model. Результаты инструментов
// отправляются от имени user, соседние реплики одной роли склеиваются.
func toContents(turns []repository.ChatTurn) []*genai.Content {
	var out []*genai.Content
	push := func(role string, parts []genai.Part) {
		if len(parts) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Parts = append(out[n-1].Parts, parts...)
			return
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}

	for _, t := range turns {
		switch t.Role {
		case valueobject.MessageRoleUser:
			if t.Text != "" {
				push("user", []genai.Part{genai.Text(t.Text)})
			}
		case valueobject.MessageRoleAssistant:
			var parts []genai.Part
			if t.Text != "" {
				parts = append(parts, genai.Text(t.Text))
			}
			for _, c := range t.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: c.Name, Args: nonNilArgs(c.Args)})
			}
			push("model", parts)
		case valueobject.MessageRoleTool:
			var parts []genai.Part
			for _, r := range t.ToolResults {
				parts = append(parts, genai.FunctionResponse{Name: r.Name, Response: nonNilArgs(r.Output)})
			}
			push("user", parts)
		}
	}
	return out
}

func toDeclarations(specs []repository.ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		decl := &genai.FunctionDeclaration{Name: s.Name, Description: s.Description}
		// Gemini отвергает object-схему без свойств
		if len(s.Params) > 0 {
			props := make(map[string]*genai.Schema, len(s.Params))
			for name, p := range s.Params {
				props[name] = toSchema(p)
			}
			decl.Parameters = &genai.Schema{Type: genai.TypeObject, Properties: props, Required: s.Required}
		}
		decls = append(decls, decl)
	}
	return decls
}

func toSchema(p repository.ToolParam) *genai.Schema {
	s := &genai.Schema{Type: schemaType(p.Type), Description: p.Description}
	if len(p.Enum) > 0 {
		s.Format = "enum"
		s.Enum = p.Enum
	}
	if p.Type == "array" {
		items := p.ItemsType
		if items == "" {
			items = "string"
		}
		s.Items = &genai.Schema{Type: schemaType(items)}
	}
	return s
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

var _ repository.AIProvider = (*GeminiProvider)(nil)
