package session

import (
	"context"
	"errors"

	"github.com/abhisek/quizarena/internal/quiz"
)

var (
	// ErrSupplyUnavailable means neither the supply nor the fallback
	// produced a usable batch.
	ErrSupplyUnavailable = errors.New("question supply unavailable")

	// ErrInsufficientQuestions is reported when a supply returns fewer
	// valid questions than the session needs.
	ErrInsufficientQuestions = errors.New("not enough questions")
)

// Supply hands the engine an ordered batch of questions. Fetch is called
// once per Start and must honor ctx cancellation.
type Supply interface {
	Fetch(ctx context.Context, subject, topic string) ([]quiz.Question, error)
}

// SupplyFunc adapts a function to Supply.
type SupplyFunc func(ctx context.Context, subject, topic string) ([]quiz.Question, error)

func (f SupplyFunc) Fetch(ctx context.Context, subject, topic string) ([]quiz.Question, error) {
	return f(ctx, subject, topic)
}

// DefaultSupply always returns quiz.DefaultBatch.
var DefaultSupply Supply = SupplyFunc(func(context.Context, string, string) ([]quiz.Question, error) {
	return quiz.DefaultBatch(), nil
})
