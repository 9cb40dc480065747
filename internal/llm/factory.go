package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/abhisek/quizarena/internal/store"
)

// New builds the configured provider and wraps it as
// retry -> logging -> vendor, so every attempt is logged. events and
// logger may be nil.
func New(ctx context.Context, cfg Config, events store.EventRepo, logger *log.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		return NewMockProvider(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	if events != nil {
		base = WithLogging(base, cfg.Provider, events, logger)
	}
	return WithRetry(base, cfg.Retry), nil
}
