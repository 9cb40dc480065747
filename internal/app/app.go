package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizarena/internal/router"
	"github.com/abhisek/quizarena/internal/screen"
	"github.com/abhisek/quizarena/internal/screens/home"
	"github.com/abhisek/quizarena/internal/session"
	"github.com/abhisek/quizarena/internal/ui/layout"
)

// Options configures the program.
type Options struct {
	// Presets are offered on the home screen, in order.
	Presets []session.Config

	// Launch builds the play screen for a chosen preset.
	Launch home.Launcher

	// AutoStart, when set, is pushed over the home screen at startup.
	AutoStart screen.Screen

	// Wallet loads the header balance. Optional.
	Wallet func(ctx context.Context) (layout.Wallet, error)
}

type walletMsg struct {
	wallet layout.Wallet
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	wallet layout.Wallet
	width  int
	height int
}

// NewAppModel creates the model with the home screen at the bottom of the
// stack.
func NewAppModel(opts Options) AppModel {
	return AppModel{
		router: router.New(home.New(opts.Presets, opts.Launch)),
		opts:   opts,
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadWallet()}
	if next := m.opts.AutoStart; next != nil {
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: next} })
	}
	return tea.Batch(cmds...)
}

func (m AppModel) loadWallet() tea.Cmd {
	if m.opts.Wallet == nil {
		return nil
	}
	load := m.opts.Wallet
	return func() tea.Msg {
		w, err := load(context.Background())
		if err != nil {
			return nil
		}
		return walletMsg{wallet: w}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case walletMsg:
		m.wallet = msg.wallet
		return m, nil

	case screen.WalletChangedMsg:
		return m, m.loadWallet()

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.router.Close()
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}
	header := layout.RenderHeader(title, m.wallet, m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		hints = hp.KeyHints()
	}
	footer := layout.RenderFooter(hints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled. Any running session is cancelled on the way out.
func Run(ctx context.Context, opts Options) error {
	model := NewAppModel(opts)
	p := tea.NewProgram(model)

	stop := context.AfterFunc(ctx, p.Quit)
	defer stop()
	defer model.router.Close()

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
