package ai

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/logger"
)

// Fallback переключается на запасной провайдер, если основной недоступен
// или исчерпал квоту. Шаг, уже начавший стримить текст, не переключается.
type Fallback struct {
	primary   repository.AIProvider
	secondary repository.AIProvider
}

func NewFallback(primary, secondary repository.AIProvider) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *Fallback) Step(ctx context.Context, req repository.ChatRequest, onText func(string) error) (*repository.StepResult, error) {
	streamed := false
	res, err := f.primary.Step(ctx, req, func(delta string) error {
		streamed = true
		return onText(delta)
	})
	if err == nil || streamed || !shouldFallback(ctx, err) {
		return res, err
	}
	f.logSwitch(err)
	return f.secondary.Step(ctx, req, onText)
}

func (f *Fallback) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	out, err := f.primary.GenerateJSON(ctx, system, prompt)
	if err == nil || !shouldFallback(ctx, err) {
		return out, err
	}
	f.logSwitch(err)
	return f.secondary.GenerateJSON(ctx, system, prompt)
}

func (f *Fallback) logSwitch(err error) {
	logger.Log.WithError(err).
		WithField("primary", f.primary.Name()).
		WithField("secondary", f.secondary.Name()).
		Warn("[AI] Основной провайдер недоступен, переключаемся на запасной")
}

func shouldFallback(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return isConnectionError(err) || isQuotaError(err)
}

func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection reset", "no such host", "unavailable", "eof"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= http.StatusInternalServerError
}

func isQuotaError(err error) bool {
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"quota", "resource_exhausted", "resource exhausted", "rate limit", "429"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

var _ repository.AIProvider = (*Fallback)(nil)
