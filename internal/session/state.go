package session

import (
	"github.com/abhisek/quizarena/internal/quiz"
	"github.com/abhisek/quizarena/internal/scoring"
)

// Status is the state machine's current state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusCountdown
	StatusQuestion
	StatusResult
	StatusSummary
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusCountdown:
		return "countdown"
	case StatusQuestion:
		return "question"
	case StatusResult:
		return "result"
	case StatusSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// Tri is a tri-state boolean.
type Tri int8

const (
	TriUnset Tri = iota
	TriFalse
	TriTrue
)

func triOf(b bool) Tri {
	if b {
		return TriTrue
	}
	return TriFalse
}

// Bool returns the value and whether it is set.
func (t Tri) Bool() (value, ok bool) {
	return t == TriTrue, t != TriUnset
}

func (t Tri) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "unset"
	}
}

// State is a read-only snapshot of a session, safe to keep after the
// engine moves on.
type State struct {
	Status    Status
	SessionID string
	Mode      Mode

	// CurrentIndex is 0-based into the session's batch.
	CurrentIndex  int
	QuestionCount int

	// TimeRemaining is the seconds left on the countdown that matters in
	// the current state: the pre-session countdown, the question timer or
	// the session-wide timer.
	TimeRemaining int

	PlayerScore     int
	OpponentScore   int
	PlayerCorrect   int
	PlayerIncorrect int
	PlayerSkipped   int
	OpponentCorrect int

	// Question is the question on screen during Question and Result.
	Question *quiz.Question

	// SelectedAnswer is unset until the player answers or the timer runs
	// out, then immutable for the question.
	SelectedAnswer quiz.Answer

	// Only meaningful during Result.
	LastAnswerCorrect   Tri
	LastOpponentCorrect Tri
	LastDelta           int
	Category            scoring.Category
	Feedback            string

	// UsedFallback is set when the batch came from the fallback supply.
	UsedFallback bool

	// Summary is non-nil once Status is StatusSummary.
	Summary *Summary

	// Version increases with every accepted event. Observers receiving
	// snapshots from several goroutines keep the highest.
	Version uint64
}

// Finished reports whether the session reached its summary.
func (s State) Finished() bool { return s.Status == StatusSummary }
