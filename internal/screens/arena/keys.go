package arena

import (
	"charm.land/bubbles/v2/key"

	"github.com/abhisek/quizarena/internal/ui/layout"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Answer  key.Binding
	Pick    key.Binding
	True    key.Binding
	False   key.Binding
	Skip    key.Binding
	Restart key.Binding
	Quit    key.Binding
	Ack     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "Choose")),
		Down:    key.NewBinding(key.WithKeys("down", "j")),
		Answer:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Answer")),
		Pick:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "Pick")),
		True:    key.NewBinding(key.WithKeys("t", "y"), key.WithHelp("T", "True")),
		False:   key.NewBinding(key.WithKeys("f", "n"), key.WithHelp("F", "False")),
		Skip:    key.NewBinding(key.WithKeys("s"), key.WithHelp("S", "Skip")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("R", "Restart")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("Esc", "Leave")),
		Ack:     key.NewBinding(key.WithKeys("enter", "esc", "q"), key.WithHelp("Enter", "OK")),
	}
}

// hints converts bindings to footer hints, skipping those without help.
func hints(bindings ...key.Binding) []layout.KeyHint {
	out := make([]layout.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		out = append(out, layout.KeyHint{Key: h.Key, Description: h.Desc})
	}
	return out
}
