// Package opponent simulates the rival player in battle mode.
package opponent

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Path identifies how the player resolved the question the opponent is
// answering alongside.
type Path int

const (
	// PathAnswered means the player submitted an answer.
	PathAnswered Path = iota
	// PathTimedOut means the question timer ran out.
	PathTimedOut
)

func (p Path) String() string {
	switch p {
	case PathAnswered:
		return "answered"
	case PathTimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("Path(%d)", int(p))
	}
}

// Simulator decides whether the opponent got a question right.
type Simulator interface {
	Answer(path Path) bool
}

// Default probabilities for the two resolution paths.
const (
	DefaultAnsweredProbability = 0.6
	DefaultTimedOutProbability = 0.5
)

// Bernoulli draws one independent trial per question with a
// path-dependent success probability. It is safe for concurrent use.
type Bernoulli struct {
	AnsweredProbability float64
	TimedOutProbability float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBernoulli returns a simulator using the given probabilities. A nil
// rnd uses a randomly seeded source.
func NewBernoulli(answered, timedOut float64, rnd *rand.Rand) *Bernoulli {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Bernoulli{
		AnsweredProbability: answered,
		TimedOutProbability: timedOut,
		rnd:                 rnd,
	}
}

// Default returns a simulator with the stock probabilities.
func Default(rnd *rand.Rand) *Bernoulli {
	return NewBernoulli(DefaultAnsweredProbability, DefaultTimedOutProbability, rnd)
}

func (b *Bernoulli) Answer(path Path) bool {
	p := b.AnsweredProbability
	if path == PathTimedOut {
		p = b.TimedOutProbability
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rnd == nil {
		b.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return b.rnd.Float64() < p
}

// Fixed returns scripted outcomes in order, then false once exhausted.
// Tests use it to make battle sessions deterministic.
type Fixed struct {
	mu       sync.Mutex
	outcomes []bool
	paths    []Path
}

// NewFixed returns a Fixed that yields outcomes in order.
func NewFixed(outcomes ...bool) *Fixed {
	return &Fixed{outcomes: outcomes}
}

func (f *Fixed) Answer(path Path) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if len(f.outcomes) == 0 {
		return false
	}
	out := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return out
}

// Calls returns the paths Answer was called with, in order.
func (f *Fixed) Calls() []Path {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Path(nil), f.paths...)
}
