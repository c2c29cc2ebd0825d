package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

// Client реализует AIProvider через OpenAI-совместимый API (Bothub и т.п.).
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL, apiKey, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			// общий дедлайн хода задаёт контекст
			Timeout: 120 * time.Second,
		},
	}
}

func (c *Client) Name() string { return "openai" }

// StatusError ответ API с кодом >= 400.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai: код ответа %d: %s", e.StatusCode, e.Body)
}

type oaFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type oaToolCall struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Function oaFunction `json:"function"`
}

type oaMessage struct {
	Role       string       `json:"role"`
	Content    string       `json:"content"`
	ToolCalls  []oaToolCall `json:"tool_calls,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
}

type oaTool struct {
	Type     string         `json:"type"`
	Function map[string]any `json:"function"`
}

// toMessages переводит историю в формат chat/completions.
// Результаты инструментов раскладываются в отдельные сообщения role=tool.
func toMessages(system string, turns []repository.ChatTurn) ([]oaMessage, error) {
	msgs := make([]oaMessage, 0, len(turns)+1)
	if system != "" {
		msgs = append(msgs, oaMessage{Role: "system", Content: system})
	}
	for _, t := range turns {
		switch t.Role {
		case valueobject.MessageRoleUser:
			msgs = append(msgs, oaMessage{Role: "user", Content: t.Text})
		case valueobject.MessageRoleAssistant:
			m := oaMessage{Role: "assistant", Content: t.Text}
			for _, call := range t.ToolCalls {
				args, err := json.Marshal(nonNilArgs(call.Args))
				if err != nil {
					return nil, err
				}
				m.ToolCalls = append(m.ToolCalls, oaToolCall{
					ID:       call.ID,
					Type:     "function",
					Function: oaFunction{Name: call.Name, Arguments: string(args)},
				})
			}
			msgs = append(msgs, m)
		case valueobject.MessageRoleTool:
			for _, res := range t.ToolResults {
				out, err := json.Marshal(res.Output)
				if err != nil {
					return nil, err
				}
				msgs = append(msgs, oaMessage{Role: "tool", ToolCallID: res.CallID, Content: string(out)})
			}
		}
	}
	return msgs, nil
}

func toTools(specs []repository.ToolSpec) []oaTool {
	tools := make([]oaTool, 0, len(specs))
	for _, s := range specs {
		tools = append(tools, oaTool{
			Type: "function",
			Function: map[string]any{
				"name":        s.Name,
				"description": s.Description,
				"parameters":  jsonSchema(s),
			},
		})
	}
	return tools
}

// jsonSchema описание параметров инструмента в JSON Schema.
func jsonSchema(s repository.ToolSpec) map[string]any {
	props := make(map[string]any, len(s.Params))
	for name, p := range s.Params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Type == "array" {
			items := p.ItemsType
			if items == "" {
				items = "string"
			}
			prop["items"] = map[string]any{"type": items}
		}
		props[name] = prop
	}
	schema := map[string]any{"type": "object", "properties": props}
	if len(s.Required) > 0 {
		schema["required"] = s.Required
	}
	return schema
}

func nonNilArgs(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	return args
}

// Step выполняет запрос с stream=true и передаёт текстовые чанки в onText.
func (c *Client) Step(ctx context.Context, req repository.ChatRequest, onText func(string) error) (*repository.StepResult, error) {
	msgs, err := toMessages(req.System, req.Turns)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"model":    c.model,
		"messages": msgs,
		"stream":   true,
	}
	if len(req.Tools) > 0 {
		payload["tools"] = toTools(req.Tools)
	}

	resp, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readStream(resp.Body, onText)
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
	} `json:"choices"`
}

type partialCall struct {
	id   string
	name string
	args strings.Builder
}

// readStream разбирает SSE поток до [DONE] или EOF. Аргументы вызовов
// приходят кусками и склеиваются по index.
func readStream(body io.Reader, onText func(string) error) (*repository.StepResult, error) {
	reader := bufio.NewReader(body)
	var text strings.Builder
	calls := map[int]*partialCall{}

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		done := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				break
			}
			var chunk streamChunk
			if data != "" && json.Unmarshal([]byte(data), &chunk) == nil && len(chunk.Choices) > 0 {
				delta := chunk.Choices[0].Delta
				if delta.Content != "" {
					text.WriteString(delta.Content)
					if err := onText(delta.Content); err != nil {
						return nil, err
					}
				}
				for _, tc := range delta.ToolCalls {
					pc, ok := calls[tc.Index]
					if !ok {
						pc = &partialCall{}
						calls[tc.Index] = pc
					}
					if tc.ID != "" {
						pc.id = tc.ID
					}
					if tc.Function.Name != "" {
						pc.name = tc.Function.Name
					}
					pc.args.WriteString(tc.Function.Arguments)
				}
			}
		}
		if done {
			break
		}
	}

	res := &repository.StepResult{Text: text.String()}
	indexes := make([]int, 0, len(calls))
	for i := range calls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		pc := calls[i]
		if pc.name == "" {
			continue
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(pc.args.String()); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("ai: некорректные аргументы %s: %w", pc.name, err)
			}
		}
		id := pc.id
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		res.ToolCalls = append(res.ToolCalls, repository.ToolCall{ID: id, Name: pc.name, Args: args})
	}
	return res, nil
}

// GenerateJSON разовый запрос в JSON режиме.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []oaMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		"max_tokens":      2048,
		"temperature":     0.7,
		"response_format": map[string]string{"type": "json_object"},
	}

	resp, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("ai: пустой ответ")
	}
	return result.Choices[0].Message.Content, nil
}

// post выполняет запрос. При коде >= 400 тело закрывается и возвращается StatusError.
func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("ai: baseURL не задан")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return resp, nil
}

var _ repository.AIProvider = (*Client)(nil)
