package repository

import (
	"context"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

// ToolCall вызов инструмента, запрошенный моделью.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult ответ инструмента, возвращаемый модели.
type ToolResult struct {
	CallID string
	Name   string
	Output map[string]any
}

// ChatTurn одна реплика истории в нейтральном для провайдера виде.
type ChatTurn struct {
	Role        valueobject.MessageRole
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// ToolParam параметр инструмента. Type: string, integer, number, boolean, array.
// Для array ItemsType задаёт тип элементов.
type ToolParam struct {
	Type        string
	Description string
	Enum        []string
	ItemsType   string
}

type ToolSpec struct {
	Name        string
	Description string
	Params      map[string]ToolParam
	Required    []string
}

type ChatRequest struct {
	System string
	Turns  []ChatTurn
	Tools  []ToolSpec
}

// StepResult итог одного шага модели: текст и/или вызовы инструментов.
type StepResult struct {
	Text      string
	ToolCalls []ToolCall
}

// ChatModel выполняет один шаг диалога, передавая текст по мере генерации.
type ChatModel interface {
	Step(ctx context.Context, req ChatRequest, onText func(delta string) error) (*StepResult, error)
}

// TextGenerator разовая генерация. Ответ должен быть JSON объектом.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
}

// AIProvider провайдер LLM.
type AIProvider interface {
	ChatModel
	TextGenerator
	Name() string
}
