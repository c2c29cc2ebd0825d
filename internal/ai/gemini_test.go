package ai

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

func TestToContents(t *testing.T) {
	contents := toContents([]repository.ChatTurn{
		{Role: valueobject.MessageRoleUser, Text: "hi"},
		{Role: valueobject.MessageRoleAssistant, Text: "checking", ToolCalls: []repository.ToolCall{{ID: "c1", Name: "get_portfolio"}}},
		{Role: valueobject.MessageRoleTool, ToolResults: []repository.ToolResult{{CallID: "c1", Name: "get_portfolio", Output: map[string]any{"projects": []any{}}}}},
		{Role: valueobject.MessageRoleUser, Text: "thanks"},
	})

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	require.Len(t, contents[1].Parts, 2)
	fc, ok := contents[1].Parts[1].(genai.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "get_portfolio", fc.Name)

	// ответ инструмента и следующее сообщение пользователя склеены
	assert.Equal(t, "user", contents[2].Role)
	require.Len(t, contents[2].Parts, 2)
	_, ok = contents[2].Parts[0].(genai.FunctionResponse)
	assert.True(t, ok)
}

func TestToDeclarations(t *testing.T) {
	decls := toDeclarations([]repository.ToolSpec{
		{Name: "get_portfolio"},
		{Name: "get_templates", Params: map[string]repository.ToolParam{
			"status": {Type: "string", Enum: []string{"draft", "active"}},
			"limit":  {Type: "integer"},
		}},
	})
	require.Len(t, decls, 2)
	assert.Nil(t, decls[0].Parameters)
	params := decls[1].Parameters
	require.NotNil(t, params)
	assert.Equal(t, genai.TypeObject, params.Type)
	assert.Equal(t, genai.TypeInteger, params.Properties["limit"].Type)
	assert.Equal(t, []string{"draft", "active"}, params.Properties["status"].Enum)
}
