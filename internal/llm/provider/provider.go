package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/expense-assistant/internal/common"
	"github.com/joseph-ayodele/expense-assistant/internal/llm"
	"github.com/joseph-ayodele/expense-assistant/internal/llm/gemini"
	"github.com/joseph-ayodele/expense-assistant/internal/llm/openai"
)

// New builds the configured model client behind the client-side rate limit.
// It returns nil for the "none" provider; callers then run local extraction only.
func New(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.FieldExtractor, error) {
	var fx llm.FieldExtractor
	switch cfg.Provider {
	case common.ProviderNone:
		logger.Info("no language model configured, using local extraction only")
		return nil, nil
	case common.ProviderOpenAI:
		fx = openai.NewClient(openai.Config{
			APIKey:          cfg.OpenAIAPIKey,
			BaseURL:         cfg.OpenAIBaseURL,
			Model:           cfg.OpenAIModel,
			Temperature:     cfg.Temperature,
			Timeout:         cfg.Timeout,
			LenientOptional: cfg.Lenient,
		}, logger)
	case common.ProviderGemini:
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
			Lenient:     cfg.Lenient,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		fx = c
	default:
		return nil, fmt.Errorf("%w: unsupported LLM_PROVIDER %q", common.ErrInvalidInput, cfg.Provider)
	}

	logger.Info("language model configured", "provider", cfg.Provider, "requests_per_minute", cfg.RequestsPerMinute)
	return llm.NewRateLimited(fx, cfg.RequestsPerMinute, cfg.Burst), nil
}
