package quiz

import "strconv"

type answerKind int

const (
	answerUnset answerKind = iota
	answerOption
	answerBool
	answerTimeout
)

// Answer is a player's submitted value for a question: an option id, a
// boolean, or the Timeout sentinel. The zero value is unset.
type Answer struct {
	kind   answerKind
	option string
	value  bool
}

// Timeout is recorded when the per-question timer expires without an answer.
var Timeout = Answer{kind: answerTimeout}

// Choice answers a multiple-choice question with the given option id.
func Choice(optionID string) Answer {
	return Answer{kind: answerOption, option: optionID}
}

// Bool answers a true/false question.
func Bool(v bool) Answer {
	return Answer{kind: answerBool, value: v}
}

// IsSet reports whether the answer holds any value, including Timeout.
func (a Answer) IsSet() bool { return a.kind != answerUnset }

// IsTimeout reports whether the answer is the Timeout sentinel.
func (a Answer) IsTimeout() bool { return a.kind == answerTimeout }

// OptionID returns the chosen option id, if this is a choice answer.
func (a Answer) OptionID() (string, bool) {
	return a.option, a.kind == answerOption
}

// Value returns the boolean value, if this is a true/false answer.
func (a Answer) Value() (bool, bool) {
	return a.value, a.kind == answerBool
}

func (a Answer) String() string {
	switch a.kind {
	case answerOption:
		return a.option
	case answerBool:
		return strconv.FormatBool(a.value)
	case answerTimeout:
		return "timeout"
	default:
		return ""
	}
}
