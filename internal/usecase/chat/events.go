package chat

// Типы событий потока UI-сообщений.
const (
	EventStart               = "start"
	EventStartStep           = "start-step"
	EventTextStart           = "text-start"
	EventTextDelta           = "text-delta"
	EventTextEnd             = "text-end"
	EventToolInputAvailable  = "tool-input-available"
	EventToolOutputAvailable = "tool-output-available"
	EventFinishStep          = "finish-step"
	EventFinish              = "finish"
	EventError               = "error"
)

// Event один чанк потока. Пустые поля не сериализуются.
type Event struct {
	Type       string `json:"type"`
	MessageID  string `json:"messageId,omitempty"`
	ID         string `json:"id,omitempty"`
	Delta      string `json:"delta,omitempty"`
	ToolCallID string `json:"toolCallId,omitempty"`
	ToolName   string `json:"toolName,omitempty"`
	Input      any    `json:"input,omitempty"`
	Output     any    `json:"output,omitempty"`
	ErrorText  string `json:"errorText,omitempty"`
}

// Emitter получает события по мере их появления. Ошибка прерывает ход.
type Emitter func(Event) error
