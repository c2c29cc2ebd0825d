package valueobject

import (
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneConfident    Tone = "confident"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
)

var AllTones = []Tone{
	ToneProfessional,
	ToneFriendly,
	ToneConfident,
	ToneEnthusiastic,
	ToneFormal,
	ToneCasual,
}

func (t Tone) IsValid() bool {
	for _, v := range AllTones {
		if t == v {
			return true
		}
	}
	return false
}

func NewTone(tone string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(tone)))
	if !t.IsValid() {
		return "", apperror.Validation("Tone must be one of: professional, friendly, confident, enthusiastic, formal, casual")
	}
	return t, nil
}

// ToneOrDefault используется для ответов модели: неизвестный тон не ошибка.
func ToneOrDefault(tone string) Tone {
	if t, err := NewTone(tone); err == nil {
		return t
	}
	return ToneProfessional
}

// ToneStrings для enum-схем инструментов модели.
func ToneStrings() []string {
	out := make([]string, len(AllTones))
	for i, t := range AllTones {
		out[i] = string(t)
	}
	return out
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// MessageRole автор сообщения в чате.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleTool      MessageRole = "tool"
)

func (r MessageRole) IsValid() bool {
	switch r {
	case MessageRoleUser, MessageRoleAssistant, MessageRoleTool:
		return true
	}
	return false
}
