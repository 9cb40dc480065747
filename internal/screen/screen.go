package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizarena/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is implemented by screens holding resources that must be released
// when they leave the stack, such as a running session.
type Closer interface {
	Close()
}

// WalletChangedMsg asks the app to reload the header wallet.
type WalletChangedMsg struct{}

// Envelope addresses a message to one screen on the stack, whether or not
// it is the active one. Screens use it for results of background work that
// must reach them while another screen is on top.
type Envelope struct {
	To  Screen
	Msg tea.Msg
}
