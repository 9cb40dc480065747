package scoring

import "math/rand/v2"

// Messages maps each category to interchangeable feedback lines.
type Messages map[Category][]string

// DefaultMessages is the stock feedback table.
var DefaultMessages = Messages{
	CategoryCorrect: {
		"Correct!",
		"Nailed it!",
		"Spot on!",
		"Great job, keep going!",
	},
	CategoryIncorrect: {
		"Not quite.",
		"Close, but no.",
		"Keep at it, you'll get the next one.",
	},
	CategoryTimedOut: {
		"Time's up!",
		"Too slow this time.",
		"The clock won that one.",
	},
}

// Pick returns one line for the category. A nil rnd uses the global
// source. Unknown categories yield the empty string.
func (m Messages) Pick(c Category, rnd *rand.Rand) string {
	lines := m[c]
	if len(lines) == 0 {
		return ""
	}
	if rnd == nil {
		return lines[rand.IntN(len(lines))]
	}
	return lines[rnd.IntN(len(lines))]
}
