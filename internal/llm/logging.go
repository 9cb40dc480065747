package llm

import (
	"context"
	"log"
	"time"

	"github.com/abhisek/quizarena/internal/store"
)

// LoggingProvider appends an llm_request event for every Generate call.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	logger   *log.Logger
	now      func() time.Time
}

// WithLogging wraps p. provider is the vendor name stored with each event.
func WithLogging(p Provider, provider string, events store.EventRepo, logger *log.Logger) *LoggingProvider {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingProvider{inner: p, provider: provider, events: events, logger: logger, now: time.Now}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: l.now().Sub(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	// The request outcome wins over a failed write.
	if werr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); werr != nil {
		l.logger.Printf("llm: recording request event failed: %v", werr)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }
