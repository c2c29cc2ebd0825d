package ai

import (
	"context"
	"fmt"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/logger"
)

// NewProvider собирает провайдер по AI_PROVIDER. Для auto основной Gemini,
// запасной OpenAI-совместимый API. Без ключа Gemini auto сводится к openai.
func NewProvider(ctx context.Context, cfg config.AIConfig) (repository.AIProvider, func() error, error) {
	noop := func() error { return nil }
	openai := NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model)

	switch cfg.Provider {
	case "openai":
		return openai, noop, nil
	case "gemini":
		g, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, err
		}
		return g, g.Close, nil
	case "auto", "":
		if cfg.GeminiAPIKey == "" {
			logger.Log.Info("[AI] GEMINI_API_KEY не задан, используется только OpenAI-совместимый провайдер")
			return openai, noop, nil
		}
		g, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Log.WithError(err).Warn("[AI] Gemini недоступен, используется OpenAI-совместимый провайдер")
			return openai, noop, nil
		}
		return NewFallback(g, openai), g.Close, nil
	default:
		return nil, noop, fmt.Errorf("ai: неизвестный провайдер %q", cfg.Provider)
	}
}
