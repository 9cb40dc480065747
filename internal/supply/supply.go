// Package supply provides the question sources a session draws its batch
// from: in-memory and YAML banks, LLM generation, a Redis cache and an
// ordered fallback chain. Every source implements session.Supply.
package supply

import (
	"errors"
	"strings"

	"github.com/abhisek/quizarena/internal/quiz"
)

// ErrNoQuestions is returned when a source has nothing for the requested
// subject and topic.
var ErrNoQuestions = errors.New("no questions for subject")

func key(subject, topic string) string {
	return strings.ToLower(strings.TrimSpace(subject)) + "/" + strings.ToLower(strings.TrimSpace(topic))
}

func clone(batch []quiz.Question) []quiz.Question {
	out := make([]quiz.Question, len(batch))
	for i, q := range batch {
		q.Options = append([]quiz.Option(nil), q.Options...)
		out[i] = q
	}
	return out
}
