package quiz

import (
	"errors"
	"fmt"
)

// ErrInvalidQuestion is wrapped by every validation failure.
var ErrInvalidQuestion = errors.New("invalid question")

// Kind describes how a question is answered.
type Kind string

const (
	// KindMultipleChoice questions carry an ordered set of labeled options,
	// exactly one of which is correct.
	KindMultipleChoice Kind = "multiple_choice"

	// KindTrueFalse questions are answered with True or False.
	KindTrueFalse Kind = "true_false"
)

// Option is a single labeled choice of a multiple-choice question.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Question is one item of a session's question batch.
type Question struct {
	// ID is opaque and unique within a session.
	ID string `json:"id" yaml:"id"`

	Kind   Kind   `json:"kind" yaml:"kind"`
	Prompt string `json:"prompt" yaml:"prompt"`

	// Options is populated only for KindMultipleChoice.
	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`

	// CorrectOptionID names the correct option (KindMultipleChoice only).
	CorrectOptionID string `json:"correct_option_id,omitempty" yaml:"correct_option_id,omitempty"`

	// CorrectValue is the correct answer for KindTrueFalse.
	CorrectValue bool `json:"correct_value,omitempty" yaml:"correct_value,omitempty"`

	// Explanation is shown after the question is resolved. Optional.
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`

	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Topic   string `json:"topic,omitempty" yaml:"topic,omitempty"`
}

// Validate checks that the question's correct answer refers to a value that
// exists among its own options (multiple choice) or to True/False.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidQuestion)
	}
	if q.Prompt == "" {
		return fmt.Errorf("%w %q: empty prompt", ErrInvalidQuestion, q.ID)
	}

	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w %q: multiple choice needs at least 2 options", ErrInvalidQuestion, q.ID)
		}
		seen := make(map[string]bool, len(q.Options))
		found := false
		for _, opt := range q.Options {
			if opt.ID == "" {
				return fmt.Errorf("%w %q: option with empty id", ErrInvalidQuestion, q.ID)
			}
			if seen[opt.ID] {
				return fmt.Errorf("%w %q: duplicate option id %q", ErrInvalidQuestion, q.ID, opt.ID)
			}
			seen[opt.ID] = true
			if opt.ID == q.CorrectOptionID {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("%w %q: correct option %q is not among its options", ErrInvalidQuestion, q.ID, q.CorrectOptionID)
		}
	case KindTrueFalse:
		if len(q.Options) > 0 || q.CorrectOptionID != "" {
			return fmt.Errorf("%w %q: true/false question must not carry options", ErrInvalidQuestion, q.ID)
		}
	default:
		return fmt.Errorf("%w %q: unknown kind %q", ErrInvalidQuestion, q.ID, q.Kind)
	}
	return nil
}

// IsCorrect reports whether a is the question's correct answer.
// Unset and Timeout answers are never correct.
func (q Question) IsCorrect(a Answer) bool {
	switch a.kind {
	case answerOption:
		return q.Kind == KindMultipleChoice && a.option == q.CorrectOptionID
	case answerBool:
		return q.Kind == KindTrueFalse && a.value == q.CorrectValue
	default:
		return false
	}
}

// Accepts reports whether a is a well-formed answer to q: an existing
// option for multiple choice, a boolean for true/false.
func (q Question) Accepts(a Answer) bool {
	switch a.kind {
	case answerOption:
		_, ok := q.Option(a.option)
		return q.Kind == KindMultipleChoice && ok
	case answerBool:
		return q.Kind == KindTrueFalse
	default:
		return false
	}
}

// CorrectAnswer returns the question's correct answer as an Answer.
func (q Question) CorrectAnswer() Answer {
	if q.Kind == KindTrueFalse {
		return Bool(q.CorrectValue)
	}
	return Choice(q.CorrectOptionID)
}

// Option returns the option with the given id.
func (q Question) Option(id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// ValidateBatch validates every question and checks id uniqueness.
func ValidateBatch(batch []Question) error {
	seen := make(map[string]bool, len(batch))
	for _, q := range batch {
		if err := q.Validate(); err != nil {
			return err
		}
		if seen[q.ID] {
			return fmt.Errorf("%w %q: duplicate id in batch", ErrInvalidQuestion, q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// Sanitize drops invalid and duplicate questions, preserving order.
// The dropped questions are returned alongside their validation errors.
func Sanitize(batch []Question) ([]Question, []error) {
	var (
		out  = make([]Question, 0, len(batch))
		errs []error
		seen = make(map[string]bool, len(batch))
	)
	for _, q := range batch {
		if err := q.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[q.ID] {
			errs = append(errs, fmt.Errorf("%w %q: duplicate id in batch", ErrInvalidQuestion, q.ID))
			continue
		}
		seen[q.ID] = true
		out = append(out, q)
	}
	return out, errs
}
