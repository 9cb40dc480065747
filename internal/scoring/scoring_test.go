package scoring

import (
	"math/rand/v2"
	"testing"

	"github.com/abhisek/quizarena/internal/quiz"
)

var (
	battle = Policy{Correct: 10, Incorrect: 0, SubscriptionMultiplier: 2}
	solo   = Policy{Correct: 10, Incorrect: -2, SubscriptionMultiplier: 2}
)

func TestPoints(t *testing.T) {
	tests := []struct {
		name       string
		correct    bool
		subscribed bool
		policy     Policy
		want       int
	}{
		{"battle correct", true, false, battle, 10},
		{"battle correct subscribed", true, true, battle, 20},
		{"battle wrong", false, false, battle, 0},
		{"battle wrong subscribed", false, true, battle, 0},
		{"solo correct", true, false, solo, 10},
		{"solo correct subscribed", true, true, solo, 20},
		{"solo wrong", false, false, solo, -2},
		{"solo wrong subscribed keeps penalty", false, true, solo, -2},
		{"zero multiplier treated as one", true, true, Policy{Correct: 10}, 10},
		{"triple multiplier", true, true, Policy{Correct: 5, SubscriptionMultiplier: 3}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Points(tt.correct, tt.subscribed, tt.policy); got != tt.want {
				t.Errorf("Points() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	q := quiz.Question{ID: "t", Kind: quiz.KindTrueFalse, Prompt: "p", CorrectValue: false}

	tests := []struct {
		name string
		a    quiz.Answer
		want Category
	}{
		{"correct", quiz.Bool(false), CategoryCorrect},
		{"incorrect", quiz.Bool(true), CategoryIncorrect},
		{"timeout", quiz.Timeout, CategoryTimedOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(q, tt.a); got != tt.want {
				t.Errorf("Categorize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPick(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 7))
	for _, c := range []Category{CategoryCorrect, CategoryIncorrect, CategoryTimedOut} {
		msg := DefaultMessages.Pick(c, rnd)
		found := false
		for _, line := range DefaultMessages[c] {
			if line == msg {
				found = true
			}
		}
		if !found {
			t.Errorf("Pick(%s) = %q, not in table", c, msg)
		}
	}

	if got := (Messages{}).Pick(CategoryCorrect, nil); got != "" {
		t.Errorf("Pick on empty table = %q, want empty", got)
	}

	custom := Messages{CategoryTimedOut: {"tick tock"}}
	if got := custom.Pick(CategoryTimedOut, nil); got != "tick tock" {
		t.Errorf("custom Pick = %q", got)
	}
}
