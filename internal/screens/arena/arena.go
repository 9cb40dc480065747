// Package arena is the play screen. It owns a session.Engine, feeds it key
// presses and redraws from the snapshots the engine publishes.
package arena

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizarena/internal/clock"
	"github.com/abhisek/quizarena/internal/quiz"
	"github.com/abhisek/quizarena/internal/router"
	"github.com/abhisek/quizarena/internal/screen"
	"github.com/abhisek/quizarena/internal/screens/summary"
	"github.com/abhisek/quizarena/internal/session"
	"github.com/abhisek/quizarena/internal/ui/components"
	"github.com/abhisek/quizarena/internal/ui/layout"
)

// Deps are the collaborators handed to the screen's engine.
type Deps struct {
	Config   session.Config
	Supply   session.Supply
	Fallback session.Supply
	Recorder session.Recorder

	// Clock defaults to clock.Real.
	Clock  clock.Scheduler
	Logger *log.Logger
}

// Screen implements screen.Screen for one running session.
type Screen struct {
	engine *session.Engine
	cfg    session.Config
	keys   keyMap

	// events is the bridge from engine goroutines into the program.
	events    chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once

	state      session.State
	options    components.OptionList
	optionsKey string
	summarized string
	alert      *components.Alert
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Closer = (*Screen)(nil)

// New creates the screen and its engine. The session starts on Init.
func New(d Deps) (*Screen, error) {
	s := &Screen{
		cfg:    d.Config,
		keys:   defaultKeys(),
		events: make(chan tea.Msg, 32),
		done:   make(chan struct{}),
	}
	eng, err := session.NewEngine(d.Config, session.Options{
		Clock:    d.Clock,
		Supply:   d.Supply,
		Fallback: d.Fallback,
		Logger:   d.Logger,
		Recorder: session.MultiRecorder{d.Recorder, session.RecorderFunc(s.recorded)},
		OnChange: s.publish,
	})
	if err != nil {
		return nil, err
	}
	s.engine = eng
	s.state = eng.State()
	return s, nil
}

// Engine exposes the underlying state machine.
func (s *Screen) Engine() *session.Engine { return s.engine }

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.listen(), s.start())
}

func (s *Screen) Title() string {
	title := "Battle"
	if s.cfg.Mode == session.ModeSolo {
		title = "Solo"
	}
	return title + " · " + s.cfg.Subject
}

func (s *Screen) KeyHints() []layout.KeyHint {
	k := s.keys
	switch {
	case s.alert != nil:
		return hints(k.Ack)
	case s.state.Status == session.StatusQuestion && s.state.Question != nil && s.state.Question.Kind == quiz.KindTrueFalse:
		return hints(k.True, k.False, k.Skip, k.Quit)
	case s.state.Status == session.StatusQuestion:
		return hints(k.Up, k.Answer, k.Pick, k.Skip, k.Quit)
	case s.state.Status == session.StatusCountdown, s.state.Status == session.StatusResult:
		return hints(k.Restart, k.Quit)
	default:
		return hints(k.Quit)
	}
}

// Close cancels the session. It is safe to call more than once.
func (s *Screen) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.engine.Cancel()
	})
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		return s, tea.Batch(s.apply(msg.State), s.listen())

	case recordedMsg:
		return s, tea.Batch(s.listen(), func() tea.Msg { return screen.WalletChangedMsg{} })

	case startedMsg:
		return s.handleStarted(msg)

	case summary.PlayAgainMsg:
		return s, s.call(func() { s.engine.Restart() })

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// publish is the engine's OnChange hook. It may run on any goroutine.
func (s *Screen) publish(st session.State) {
	select {
	case s.events <- stateMsg{State: st}:
	case <-s.done:
	}
}

// recorded is the last sink of the engine's recorder chain.
func (s *Screen) recorded(ctx context.Context, r session.Result) error {
	select {
	case s.events <- recordedMsg{Result: r}:
		return nil
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// listen waits for the next engine event. Events are addressed to this
// screen so they still reach it while the summary is on top.
func (s *Screen) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case m := <-s.events:
			return screen.Envelope{To: s, Msg: m}
		case <-s.done:
			return nil
		}
	}
}

func (s *Screen) start() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{Err: s.engine.Start(context.Background())}
	}
}

// call runs an engine operation off the update loop; the resulting
// snapshot arrives through listen.
func (s *Screen) call(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

// apply adopts a snapshot unless a newer one was already seen.
func (s *Screen) apply(st session.State) tea.Cmd {
	if st.Version < s.state.Version {
		return nil
	}
	s.state = st

	switch st.Status {
	case session.StatusQuestion:
		if k := st.SessionID + "/" + strconv.Itoa(st.CurrentIndex); k != s.optionsKey && st.Question != nil {
			s.options = components.NewOptionList(*st.Question)
			s.optionsKey = k
		}
	case session.StatusResult:
		if st.Question != nil {
			s.options.Reveal(st.SelectedAnswer, st.Question.CorrectAnswer())
		}
	case session.StatusSummary:
		if st.Summary != nil && s.summarized != st.SessionID {
			s.summarized = st.SessionID
			next := summary.New(*st.Summary, s.cfg.Subscribed)
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}
	return nil
}

func (s *Screen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err == nil || errors.Is(msg.Err, session.ErrCancelled) {
		return s, nil
	}
	title := "Could not start the session"
	if errors.Is(msg.Err, session.ErrSupplyUnavailable) {
		title = "No questions available"
	}
	alert := components.NewAlert(title, msg.Err.Error(),
		components.NewButton("OK", s.keys.Ack, func() tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}))
	s.alert = &alert
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.alert != nil {
		var cmd tea.Cmd
		*s.alert, cmd = s.alert.Update(msg)
		return s, cmd
	}

	switch {
	case key.Matches(msg, s.keys.Quit):
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case key.Matches(msg, s.keys.Restart):
		return s, s.call(func() { s.engine.Restart() })
	}

	if s.state.Status != session.StatusQuestion || s.state.Question == nil {
		return s, nil
	}
	index := s.state.CurrentIndex

	switch {
	case key.Matches(msg, s.keys.Skip):
		return s, s.call(func() { s.engine.SkipAt(index) })
	case key.Matches(msg, s.keys.Up):
		s.options.Move(-1)
	case key.Matches(msg, s.keys.Down):
		s.options.Move(1)
	case key.Matches(msg, s.keys.Answer):
		if a, ok := s.options.Current(); ok {
			return s, s.submit(index, a)
		}
	case key.Matches(msg, s.keys.Pick):
		i, _ := strconv.Atoi(msg.String())
		if a, ok := s.options.At(i - 1); ok {
			s.options.Selected = i - 1
			return s, s.submit(index, a)
		}
	case s.state.Question.Kind == quiz.KindTrueFalse && key.Matches(msg, s.keys.True):
		return s, s.submit(index, quiz.Bool(true))
	case s.state.Question.Kind == quiz.KindTrueFalse && key.Matches(msg, s.keys.False):
		return s, s.submit(index, quiz.Bool(false))
	}
	return s, nil
}

// submit answers the question that was on screen when the key was pressed.
func (s *Screen) submit(index int, a quiz.Answer) tea.Cmd {
	return s.call(func() { s.engine.SubmitAnswerAt(index, a) })
}
