package supply

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/quizarena/internal/quiz"
	"github.com/abhisek/quizarena/internal/session"
)

// Static serves batches held in memory, keyed by subject and topic.
// Lookups are case-insensitive. A request whose topic has no batch of its
// own gets every question of the subject, in insertion order.
type Static struct {
	mu      sync.RWMutex
	batches map[string][]quiz.Question
	order   []string
}

var _ session.Supply = (*Static)(nil)

func NewStatic() *Static {
	return &Static{batches: make(map[string][]quiz.Question)}
}

// Add appends questions to the subject/topic batch.
func (s *Static) Add(subject, topic string, questions ...quiz.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(subject, topic)
	if _, ok := s.batches[k]; !ok {
		s.order = append(s.order, k)
	}
	for _, q := range questions {
		if q.Subject == "" {
			q.Subject = subject
		}
		if q.Topic == "" {
			q.Topic = topic
		}
		s.batches[k] = append(s.batches[k], q)
	}
}

func (s *Static) Fetch(ctx context.Context, subject, topic string) ([]quiz.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if batch, ok := s.batches[key(subject, topic)]; ok && len(batch) > 0 {
		return clone(batch), nil
	}

	prefix := key(subject, "")
	var all []quiz.Question
	for _, k := range s.order {
		if strings.HasPrefix(k, prefix) {
			all = append(all, s.batches[k]...)
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoQuestions, subject, topic)
	}
	return clone(all), nil
}

// Subjects lists the subject/topic pairs held, in insertion order.
func (s *Static) Subjects() [][2]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][2]string, 0, len(s.order))
	for _, k := range s.order {
		if len(s.batches[k]) == 0 {
			continue
		}
		q := s.batches[k][0]
		out = append(out, [2]string{q.Subject, q.Topic})
	}
	return out
}
