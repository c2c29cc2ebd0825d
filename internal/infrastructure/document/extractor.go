package document

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// DocconvExtractor достаёт текст из pdf/docx/doc/odt/rtf через docconv.
// Обычный текст возвращается как есть.
type DocconvExtractor struct{}

func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{}
}

func (e *DocconvExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var text string
	if contentType == "text/plain" {
		text = string(data)
	} else {
		res, err := docconv.Convert(bytes.NewReader(data), contentType, false)
		if err != nil {
			return "", fmt.Errorf("docconv: не удалось извлечь текст (%s): %w", contentType, err)
		}
		text = res.Body
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return normalize(text), nil
}

// normalize убирает \r, хвостовые пробелы и лишние пустые строки.
func normalize(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

var _ repository.DocumentExtractor = (*DocconvExtractor)(nil)
