package storage

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// SniffLen сколько байт нужно для определения типа.
const SniffLen = 512

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Типы документов, из которых docconv умеет достать текст.
var documentTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/msword":                      true,
	"application/vnd.oasis.opendocument.text": true,
	"application/rtf":                         true,
	"text/plain":                              true,
}

// DetectImage определяет тип по магическим байтам. Разрешены только изображения.
func DetectImage(head []byte) (string, error) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", apperror.Validation("Unsupported file type. Only JPEG, PNG, GIF and WebP images are allowed")
	}
	if _, ok := imageTypes[kind.MIME.Value]; !ok {
		return "", apperror.Validation("Unsupported file type. Only JPEG, PNG, GIF and WebP images are allowed")
	}
	return kind.MIME.Value, nil
}

// DetectDocument определяет тип документа для импорта шаблона.
// Файлы без сигнатуры считаются текстом, если это валидный UTF-8.
func DetectDocument(data []byte, filename string) (string, error) {
	kind, _ := filetype.Match(data)
	if kind != filetype.Unknown {
		mime := kind.MIME.Value
		if mime == "application/zip" && strings.EqualFold(filepath.Ext(filename), ".docx") {
			mime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		}
		if documentTypes[mime] {
			return mime, nil
		}
		return "", unsupportedDocument()
	}

	if len(data) > 0 && utf8.Valid(data) {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".rtf":
			return "application/rtf", nil
		default:
			return "text/plain", nil
		}
	}
	return "", unsupportedDocument()
}

// ReadHead читает первые SniffLen байт и возвращает reader со всем содержимым.
func ReadHead(r io.Reader) ([]byte, io.Reader, error) {
	head := make([]byte, SniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, nil, err
	}
	head = head[:n]
	return head, io.MultiReader(bytes.NewReader(head), r), nil
}

func extensionFor(contentType, fallback string) string {
	if ext, ok := imageTypes[contentType]; ok {
		return ext
	}
	return strings.ToLower(fallback)
}

func unsupportedDocument() error {
	return apperror.Validation("Unsupported document type. Use PDF, DOCX, DOC, ODT, RTF or TXT")
}
