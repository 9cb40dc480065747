package quiz

import "math/rand/v2"

// DefaultBatch returns the built-in batch used when a question supply fails
// or comes back short. It always holds 5 valid questions.
func DefaultBatch() []Question {
	return []Question{
		{
			ID:     "default-1",
			Kind:   KindMultipleChoice,
			Prompt: "What is 7 * 8?",
			Options: []Option{
				{ID: "a", Label: "54"},
				{ID: "b", Label: "56"},
				{ID: "c", Label: "64"},
				{ID: "d", Label: "58"},
			},
			CorrectOptionID: "b",
			Explanation:     "7 * 8 = 56.",
			Subject:         "general",
		},
		{
			ID:           "default-2",
			Kind:         KindTrueFalse,
			Prompt:       "Water boils at 100 degrees Celsius at sea level.",
			CorrectValue: true,
			Subject:      "general",
		},
		{
			ID:     "default-3",
			Kind:   KindMultipleChoice,
			Prompt: "Which planet is closest to the Sun?",
			Options: []Option{
				{ID: "a", Label: "Venus"},
				{ID: "b", Label: "Earth"},
				{ID: "c", Label: "Mercury"},
				{ID: "d", Label: "Mars"},
			},
			CorrectOptionID: "c",
			Subject:         "general",
		},
		{
			ID:           "default-4",
			Kind:         KindTrueFalse,
			Prompt:       "A triangle can have two right angles.",
			CorrectValue: false,
			Explanation:  "The angles of a triangle sum to 180 degrees, so two right angles leave nothing for the third.",
			Subject:      "general",
		},
		{
			ID:     "default-5",
			Kind:   KindMultipleChoice,
			Prompt: "Which of these is a prime number?",
			Options: []Option{
				{ID: "a", Label: "21"},
				{ID: "b", Label: "27"},
				{ID: "c", Label: "29"},
				{ID: "d", Label: "33"},
			},
			CorrectOptionID: "c",
			Subject:         "general",
		},
	}
}

// Shuffle returns a reshuffled copy of batch. The input is not mutated.
func Shuffle(batch []Question, rnd *rand.Rand) []Question {
	out := make([]Question, len(batch))
	copy(out, batch)
	if rnd == nil {
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
