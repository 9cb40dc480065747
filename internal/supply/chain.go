package supply

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/quizarena/internal/quiz"
	"github.com/abhisek/quizarena/internal/session"
)

// Chain tries each supply in order and returns the first batch holding at
// least Min valid questions. Shorter batches and errors move on to the
// next supply.
type Chain struct {
	Supplies []session.Supply
	Min      int
}

var _ session.Supply = Chain{}

func (c Chain) Fetch(ctx context.Context, subject, topic string) ([]quiz.Question, error) {
	var errs []error
	for i, s := range c.Supplies {
		if s == nil {
			continue
		}
		batch, err := s.Fetch(ctx, subject, topic)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("supply %d: %w", i, err))
			continue
		}
		valid, _ := quiz.Sanitize(batch)
		if len(valid) < max(c.Min, 1) {
			errs = append(errs, fmt.Errorf("supply %d: %w: %d of %d", i, session.ErrInsufficientQuestions, len(valid), c.Min))
			continue
		}
		return batch, nil
	}
	return nil, errors.Join(append([]error{session.ErrSupplyUnavailable}, errs...)...)
}
