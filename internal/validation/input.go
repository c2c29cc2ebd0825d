package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Ограничения полей. Сообщения об ошибках видит пользователь, поэтому на английском.
const (
	MaxNameLength           = 100
	MaxBioLength            = 2000
	MaxTitleLength          = 200
	MaxDescriptionLength    = 1000
	MaxTemplateContentLen   = 20000
	MaxCategoryLength       = 100
	MaxTagLength            = 50
	MaxTagsCount            = 20
	MaxJobDescriptionLength = 20000
	MaxProposalContentLen   = 20000
	MaxNotesLength          = 5000
	MaxPlatformLength       = 50
	MaxURLLength            = 500
	MaxTestimonialLength    = 5000
	MaxChatMessageLength    = 8000
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		if min == 1 {
			return fmt.Errorf("%s is required", fieldName)
		}
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateRequired проверяет, что строка не пустая после trim.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// NormalizeEmail приводит email к каноничному виду.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("Email is required")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("Invalid email address")
	}

	localPart, domainPart := parts[0], parts[1]
	if len(localPart) == 0 || len(localPart) > 64 || len(domainPart) > 255 {
		return fmt.Errorf("Invalid email address")
	}
	if !emailLocalRegex.MatchString(localPart) || !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("Invalid email address")
	}

	return nil
}

// ValidateURL допускает пустое значение, иначе требует http(s) ссылку.
func ValidateURL(fieldName, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if len(raw) > MaxURLLength {
		return fmt.Errorf("%s must be at most %d characters", fieldName, MaxURLLength)
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("%s must be a valid URL", fieldName)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must start with http:// or https://", fieldName)
	}
	return nil
}

// NormalizeTags убирает пустые и повторяющиеся теги, сохраняя порядок.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ValidateTags проверяет количество и длину тегов.
func ValidateTags(fieldName string, tags []string) error {
	if len(tags) > MaxTagsCount {
		return fmt.Errorf("%s cannot contain more than %d items", fieldName, MaxTagsCount)
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return fmt.Errorf("each of %s must be at most %d characters", strings.ToLower(fieldName), MaxTagLength)
		}
	}
	return nil
}

// First возвращает первую ненулевую ошибку.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
