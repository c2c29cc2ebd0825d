package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
)

// AppError несёт код, сообщение для клиента и исходную причину.
// Message уходит клиенту как есть, Cause только в лог.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал
// с обёрнутыми копиями сентинелов.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation возвращает ошибку валидации с текстом для пользователя.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Internal сворачивает неожиданную ошибку в "Failed to <verb> <entity>".
// Уже типизированные ошибки пропускаются без изменений.
func Internal(err error, verb, entity string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != ErrCodeInternal {
		return err
	}
	return Wrap(err, ErrCodeInternal, fmt.Sprintf("Failed to %s %s", verb, entity))
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func IsForbidden(err error) bool {
	return hasCode(err, ErrCodeForbidden)
}

func IsUnauthorized(err error) bool {
	return hasCode(err, ErrCodeUnauthorized) || hasCode(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Сообщения фиксированы: клиент сверяет их как строки.
var (
	ErrTemplateNotFound     = New(ErrCodeNotFound, "Template not found.")
	ErrProposalNotFound     = New(ErrCodeNotFound, "Proposal not found.")
	ErrProjectNotFound      = New(ErrCodeNotFound, "Project not found.")
	ErrTestimonialNotFound  = New(ErrCodeNotFound, "Testimonial not found.")
	ErrConversationNotFound = New(ErrCodeNotFound, "Conversation not found.")
	ErrUserNotFound         = New(ErrCodeNotFound, "User not found.")
	ErrWaitlistNotFound     = New(ErrCodeNotFound, "Waitlist entry not found.")
	ErrSessionNotFound      = New(ErrCodeNotFound, "Session not found.")

	ErrUnauthorized       = New(ErrCodeUnauthorized, "Unauthorized")
	ErrForbidden          = New(ErrCodeForbidden, "Unauthorized")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "Invalid email or password")
	ErrEmailTaken         = New(ErrCodeConflict, "Email is already registered")
	ErrNotOnWaitlist      = New(ErrCodeForbidden, "This email is not on the waitlist")
)
