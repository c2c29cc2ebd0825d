// Package llmjson достаёт JSON объект из свободного ответа модели.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoJSON = errors.New("no JSON object in model output")

// Validator проверяет разобранное значение. nil означает "без проверки".
type Validator[T any] func(T) error

// Extract разбирает первый сбалансированный {...} блок, в том числе внутри
// markdown-ограждения ```json ... ``` и с текстом вокруг.
func Extract[T any](raw string, validate Validator[T]) (T, error) {
	var zero T

	block := balancedObject(stripFences(raw))
	if block == "" {
		return zero, ErrNoJSON
	}

	var out T
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	if validate != nil {
		if err := validate(out); err != nil {
			return zero, fmt.Errorf("invalid model output: %w", err)
		}
	}
	return out, nil
}

func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// balancedObject первый {...} с учётом строк и экранирования.
func balancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
