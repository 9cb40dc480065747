package components

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizarena/internal/ui/theme"
)

// Button is a single-action control bound to a key.
type Button struct {
	Label   string
	Binding key.Binding
	OnPress func() tea.Cmd
}

// NewButton creates a button pressed by binding.
func NewButton(label string, binding key.Binding, onPress func() tea.Cmd) Button {
	return Button{Label: label, Binding: binding, OnPress: onPress}
}

// Update fires OnPress when the binding matches.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || b.OnPress == nil {
		return b, nil
	}
	if key.Matches(kmsg, b.Binding) {
		return b, b.OnPress()
	}
	return b, nil
}

// View renders the button.
func (b Button) View() string {
	return theme.ButtonActive.Render("▸ " + b.Label)
}

// Alert is a blocking message with one acknowledgement button.
type Alert struct {
	Title   string
	Message string
	Button  Button
}

// NewAlert creates an alert acknowledged by binding.
func NewAlert(title, message string, button Button) Alert {
	return Alert{Title: title, Message: message, Button: button}
}

// Update forwards key presses to the button.
func (a Alert) Update(msg tea.Msg) (Alert, tea.Cmd) {
	var cmd tea.Cmd
	a.Button, cmd = a.Button.Update(msg)
	return a, cmd
}

// View renders the alert centered in width x height.
func (a Alert) View(width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.Incorrect.Render(a.Title),
		"",
		theme.Body.Width(min(width-10, 56)).Align(lipgloss.Center).Render(a.Message),
		"",
		a.Button.View(),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.AlertCard.Render(body))
}
