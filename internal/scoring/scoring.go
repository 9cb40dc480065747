// Package scoring converts answer outcomes into point deltas and feedback
// categories. Everything here is pure.
package scoring

import "github.com/abhisek/quizarena/internal/quiz"

// Policy holds the point values for one game mode.
type Policy struct {
	// Correct is the flat base award for a correct answer.
	Correct int

	// Incorrect is the delta for a wrong or timed-out answer: zero in
	// battle mode, a negative penalty in solo mode.
	Incorrect int

	// SubscriptionMultiplier scales Correct for subscribed players.
	// Values below 1 are treated as 1.
	SubscriptionMultiplier int
}

// Points returns the delta for a single resolved question. Subscription
// scales only correct answers; the incorrect delta is never modified.
func Points(isCorrect, isSubscribed bool, p Policy) int {
	if !isCorrect {
		return p.Incorrect
	}
	if isSubscribed && p.SubscriptionMultiplier > 1 {
		return p.Correct * p.SubscriptionMultiplier
	}
	return p.Correct
}

// Category classifies a resolved question for feedback.
type Category string

const (
	CategoryCorrect   Category = "correct"
	CategoryIncorrect Category = "incorrect"
	CategoryTimedOut  Category = "timed_out"
)

// Categorize derives the feedback category from the selected answer
// alone. A Timeout answer is always CategoryTimedOut.
func Categorize(q quiz.Question, selected quiz.Answer) Category {
	switch {
	case selected.IsTimeout():
		return CategoryTimedOut
	case q.IsCorrect(selected):
		return CategoryCorrect
	default:
		return CategoryIncorrect
	}
}
