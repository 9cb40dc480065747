package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizarena/internal/quiz"
	"github.com/abhisek/quizarena/internal/ui/theme"
)

// OptionList renders the answers of one question as a numbered list.
// True/false questions get two synthetic entries.
type OptionList struct {
	Labels   []string
	Answers  []quiz.Answer
	Selected int

	// Chosen and Correct are set by Reveal once the question resolves.
	Chosen   quiz.Answer
	Correct  quiz.Answer
	revealed bool
}

// NewOptionList builds the list for q with the cursor on the first entry.
func NewOptionList(q quiz.Question) OptionList {
	var o OptionList
	switch q.Kind {
	case quiz.KindTrueFalse:
		o.Labels = []string{"True", "False"}
		o.Answers = []quiz.Answer{quiz.Bool(true), quiz.Bool(false)}
	default:
		for _, opt := range q.Options {
			o.Labels = append(o.Labels, opt.Label)
			o.Answers = append(o.Answers, quiz.Choice(opt.ID))
		}
	}
	return o
}

// Len returns the number of entries.
func (o OptionList) Len() int { return len(o.Answers) }

// Move shifts the cursor by delta, clamped to the list.
func (o *OptionList) Move(delta int) {
	o.Selected = max(0, min(len(o.Answers)-1, o.Selected+delta))
}

// Current returns the answer under the cursor.
func (o OptionList) Current() (quiz.Answer, bool) {
	return o.At(o.Selected)
}

// At returns the answer at position i.
func (o OptionList) At(i int) (quiz.Answer, bool) {
	if i < 0 || i >= len(o.Answers) {
		return quiz.Answer{}, false
	}
	return o.Answers[i], true
}

// Reveal marks the player's answer and the correct one. chosen may be
// quiz.Timeout, in which case only the correct entry is highlighted.
func (o *OptionList) Reveal(chosen, correct quiz.Answer) {
	o.Chosen, o.Correct, o.revealed = chosen, correct, true
}

// Revealed reports whether Reveal has been called.
func (o OptionList) Revealed() bool { return o.revealed }

// View renders the list.
func (o OptionList) View() string {
	var b strings.Builder
	for i, label := range o.Labels {
		prefix := "  "
		if i == o.Selected && !o.revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, label)

		style := theme.Unselected
		switch {
		case o.revealed && o.Answers[i] == o.Correct:
			style = theme.Correct
		case o.revealed && o.Answers[i] == o.Chosen:
			style = theme.Incorrect
		case o.revealed:
			style = theme.Muted
		case i == o.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
