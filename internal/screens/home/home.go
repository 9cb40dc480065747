// Package home is the start screen: pick a subject and a mode.
package home

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizarena/internal/router"
	"github.com/abhisek/quizarena/internal/screen"
	"github.com/abhisek/quizarena/internal/session"
	"github.com/abhisek/quizarena/internal/ui/components"
	"github.com/abhisek/quizarena/internal/ui/layout"
	"github.com/abhisek/quizarena/internal/ui/theme"
)

// Launcher builds the play screen for a fully resolved config.
type Launcher func(cfg session.Config) (screen.Screen, error)

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	presets []session.Config
	launch  Launcher

	subject components.TextInput
	topic   components.TextInput
	menu    components.Menu
	focus   int // 0 menu, 1 subject, 2 topic

	tab  key.Binding
	done key.Binding

	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the home screen. Each preset becomes a menu entry; the
// subject and topic typed on screen override the presets' own.
func New(presets []session.Config, launch Launcher) *HomeScreen {
	h := &HomeScreen{
		presets: presets,
		launch:  launch,
		tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Subject")),
		done:    key.NewBinding(key.WithKeys("enter", "esc")),
	}

	var subject, topic string
	if len(presets) > 0 {
		subject, topic = presets[0].Subject, presets[0].Topic
	}
	h.subject = components.NewTextInput("Subject", "general", subject, 40)
	h.topic = components.NewTextInput("Topic", "any", topic, 40)

	items := make([]components.MenuItem, 0, len(presets)+1)
	for i, cfg := range presets {
		items = append(items, components.MenuItem{
			Label:  strings.ToUpper(string(cfg.Mode)),
			Detail: Describe(cfg),
			Action: func() tea.Cmd { return h.start(i) },
		})
	}
	items = append(items, components.MenuItem{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }})
	h.menu = components.NewMenu(items)
	return h
}

// Describe summarizes a preset in one line.
func Describe(cfg session.Config) string {
	switch cfg.Timing {
	case session.TimingSessionWide:
		return fmt.Sprintf("%d questions, %s on the clock", cfg.QuestionCount, cfg.SessionTimeLimit)
	default:
		s := fmt.Sprintf("%d questions, %s each", cfg.QuestionCount, cfg.QuestionTimeLimit)
		if cfg.HasOpponent() {
			s += ", against a rival"
		}
		return s
	}
}

func (h *HomeScreen) start(i int) tea.Cmd {
	cfg := h.presets[i]
	if v := h.subject.Value(); v != "" {
		cfg.Subject = v
	}
	cfg.Topic = h.topic.Value()

	next, err := h.launch(cfg)
	if err != nil {
		h.errMsg = err.Error()
		return nil
	}
	h.errMsg = ""
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.focus != 0 {
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next field"},
			{Key: "Enter", Description: "Done"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Play"},
		{Key: h.tab.Help().Key, Description: h.tab.Help().Desc},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch {
		case key.Matches(kmsg, h.tab):
			return h, h.setFocus((h.focus + 1) % 3)
		case h.focus != 0 && key.Matches(kmsg, h.done):
			return h, h.setFocus(0)
		}
	}

	var cmd tea.Cmd
	switch h.focus {
	case 1:
		h.subject, cmd = h.subject.Update(msg)
	case 2:
		h.topic, cmd = h.topic.Update(msg)
	default:
		h.menu, cmd = h.menu.Update(msg)
	}
	return h, cmd
}

func (h *HomeScreen) setFocus(f int) tea.Cmd {
	h.focus = f
	h.subject.Blur()
	h.topic.Blur()
	switch f {
	case 1:
		return h.subject.Focus()
	case 2:
		return h.topic.Focus()
	}
	return nil
}

func (h *HomeScreen) View(width, height int) string {
	sections := []string{
		theme.Title.Render("Q U I Z A R E N A"),
		theme.Subtitle.Render("Answer fast. Beat the rival."),
		h.subject.View() + "\n" + h.topic.View(),
		h.menu.View(),
	}
	if h.errMsg != "" {
		sections = append(sections, theme.Incorrect.Render(h.errMsg))
	}
	body := theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}
