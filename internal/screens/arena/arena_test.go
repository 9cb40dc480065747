package arena

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizarena/internal/clock"
	"github.com/abhisek/quizarena/internal/quiz"
	"github.com/abhisek/quizarena/internal/router"
	"github.com/abhisek/quizarena/internal/screen"
	"github.com/abhisek/quizarena/internal/screens/summary"
	"github.com/abhisek/quizarena/internal/session"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// tfBatch returns n true/false questions whose answer is always true.
func tfBatch(n int) []quiz.Question {
	out := make([]quiz.Question, n)
	for i := range out {
		out[i] = quiz.Question{
			ID:           fmt.Sprintf("q%d", i+1),
			Kind:         quiz.KindTrueFalse,
			Prompt:       fmt.Sprintf("Statement %d holds", i+1),
			CorrectValue: true,
			Explanation:  "It always does.",
		}
	}
	return out
}

func supplyOf(batch []quiz.Question, err error) session.Supply {
	return session.SupplyFunc(func(context.Context, string, string) ([]quiz.Question, error) {
		return batch, err
	})
}

type recorderSpy struct {
	results []session.Result
}

func (r *recorderSpy) Record(_ context.Context, res session.Result) error {
	r.results = append(r.results, res)
	return nil
}

func newTestScreen(t *testing.T, supply, fallback session.Supply) (*Screen, *clock.Fake, *recorderSpy) {
	t.Helper()
	cfg := session.SoloConfig()
	cfg.Subject = "science"
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	rec := &recorderSpy{}
	s, err := New(Deps{Config: cfg, Supply: supply, Fallback: fallback, Recorder: rec, Clock: clk})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, clk, rec
}

// pump feeds every queued engine event to the screen and returns the
// commands produced by snapshots.
func pump(t *testing.T, s *Screen) []tea.Cmd {
	t.Helper()
	var cmds []tea.Cmd
	for {
		select {
		case m := <-s.events:
			if sm, ok := m.(stateMsg); ok {
				if cmd := s.apply(sm.State); cmd != nil {
					cmds = append(cmds, cmd)
				}
				continue
			}
			s.Update(m)
		default:
			return cmds
		}
	}
}

// started runs the start command and feeds its result back.
func started(t *testing.T, s *Screen) {
	t.Helper()
	msg := s.start()()
	s.Update(msg)
	pump(t, s)
}

// press sends a key and runs the engine call it schedules.
func press(t *testing.T, s *Screen, k tea.KeyPressMsg) tea.Msg {
	t.Helper()
	_, cmd := s.Update(k)
	var out tea.Msg
	if cmd != nil {
		out = cmd()
	}
	pump(t, s)
	return out
}

func TestStart_ShowsFirstQuestion(t *testing.T) {
	s, _, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)

	require.Equal(t, session.StatusQuestion, s.state.Status)
	view := s.View(80, 24)
	assert.Contains(t, view, "Statement 1 holds")
	assert.Contains(t, view, "Question 1/5")
	assert.Contains(t, view, "True")
	assert.Equal(t, "Solo · science", s.Title())
}

func TestNumberKeyAnswers(t *testing.T) {
	s, _, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)

	press(t, s, keyPress('1'))

	require.Equal(t, session.StatusResult, s.state.Status)
	assert.Equal(t, 10, s.state.PlayerScore)
	assert.True(t, s.options.Revealed())
	view := s.View(80, 24)
	assert.Contains(t, view, "+10")
	assert.Contains(t, view, "It always does.")
}

func TestFalseKeyAppliesPenalty(t *testing.T) {
	s, _, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)

	press(t, s, keyPress('f'))

	require.Equal(t, session.StatusResult, s.state.Status)
	assert.Equal(t, -2, s.state.PlayerScore)
	assert.Equal(t, 1, s.state.PlayerIncorrect)
}

func TestArrowsAndEnter(t *testing.T) {
	s, _, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)

	press(t, s, specialKey(tea.KeyDown))
	assert.Equal(t, 1, s.options.Selected)
	press(t, s, specialKey(tea.KeyEnter))

	assert.Equal(t, 1, s.state.PlayerIncorrect)
}

func TestSkipKeyMovesOn(t *testing.T) {
	s, _, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)

	press(t, s, keyPress('s'))

	assert.Equal(t, session.StatusQuestion, s.state.Status)
	assert.Equal(t, 1, s.state.CurrentIndex)
	assert.Equal(t, 1, s.state.PlayerSkipped)
	assert.Contains(t, s.View(80, 24), "Statement 2 holds")
}

func TestKeysIgnoredOutsideQuestion(t *testing.T) {
	s, _, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)
	press(t, s, keyPress('t'))
	require.Equal(t, session.StatusResult, s.state.Status)

	press(t, s, keyPress('f'))

	assert.Equal(t, 10, s.state.PlayerScore)
	assert.Equal(t, 0, s.state.PlayerIncorrect)
}

func TestStaleSnapshotIgnored(t *testing.T) {
	s, _, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)
	current := s.state

	old := current
	old.Version--
	old.Status = session.StatusLoading
	s.Update(stateMsg{State: old})

	assert.Equal(t, current.Status, s.state.Status)
	assert.Equal(t, current.Version, s.state.Version)
}

func TestFullSessionPushesSummary(t *testing.T) {
	s, clk, rec := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)
	resultDelay := s.cfg.ResultDelay

	var cmds []tea.Cmd
	for i := 0; i < 5; i++ {
		require.Equal(t, i, s.state.CurrentIndex)
		press(t, s, keyPress('t'))
		clk.Advance(resultDelay)
		cmds = append(cmds, pump(t, s)...)
	}

	require.Equal(t, session.StatusSummary, s.state.Status)
	require.Len(t, cmds, 1)
	push, ok := cmds[0]().(router.PushScreenMsg)
	require.True(t, ok, "expected a push of the summary screen")
	_, ok = push.Screen.(*summary.SummaryScreen)
	assert.True(t, ok)

	require.Len(t, rec.results, 1)
	assert.Equal(t, 50, rec.results[0].PointsEarned)
}

func TestPlayAgainRestarts(t *testing.T) {
	s, clk, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)
	for i := 0; i < 5; i++ {
		press(t, s, keyPress('t'))
		clk.Advance(s.cfg.ResultDelay)
		pump(t, s)
	}
	first := s.state.SessionID

	_, cmd := s.Update(summary.PlayAgainMsg{})
	require.NotNil(t, cmd)
	cmd()
	pump(t, s)

	assert.Equal(t, session.StatusQuestion, s.state.Status)
	assert.Equal(t, 0, s.state.PlayerScore)
	assert.NotEqual(t, first, s.state.SessionID)
}

func TestSupplyUnavailableShowsBlockingAlert(t *testing.T) {
	down := errors.New("bank offline")
	s, _, _ := newTestScreen(t, supplyOf(nil, down), supplyOf(nil, down))
	started(t, s)

	require.NotNil(t, s.alert)
	assert.Equal(t, session.StatusIdle, s.state.Status)
	assert.Contains(t, s.View(80, 24), "No questions available")
	assert.Len(t, s.KeyHints(), 1)

	// Other keys do nothing while the alert is up.
	assert.Nil(t, press(t, s, keyPress('s')))

	msg := press(t, s, specialKey(tea.KeyEnter))
	_, ok := msg.(router.PopScreenMsg)
	assert.True(t, ok, "acknowledging the alert should leave the screen")
}

func TestQuitKeyPopsAndCloseCancels(t *testing.T) {
	s, clk, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)

	msg := press(t, s, specialKey(tea.KeyEscape))
	_, ok := msg.(router.PopScreenMsg)
	require.True(t, ok)

	s.Close()
	s.Close()
	assert.Equal(t, session.StatusIdle, s.engine.State().Status)
	assert.Zero(t, clk.Pending())
}

func TestKeyHintsFollowState(t *testing.T) {
	s, _, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)

	var keys []string
	for _, h := range s.KeyHints() {
		keys = append(keys, h.Key)
	}
	assert.Equal(t, "T F S Esc", strings.Join(keys, " "))
}

func TestLateAnswerKeyIgnoredAfterSkip(t *testing.T) {
	s, _, _ := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	started(t, s)

	_, late := s.Update(keyPress('t'))
	require.NotNil(t, late)
	press(t, s, keyPress('s'))
	require.Equal(t, 1, s.state.CurrentIndex)

	late()
	pump(t, s)

	assert.Equal(t, session.StatusQuestion, s.state.Status)
	assert.Equal(t, 1, s.state.CurrentIndex)
	assert.Equal(t, 0, s.state.PlayerScore)
}

type homeStub struct{}

func (h homeStub) Init() tea.Cmd                           { return nil }
func (h homeStub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return h, nil }
func (h homeStub) View(int, int) string                    { return "home" }
func (h homeStub) Title() string                           { return "Home" }

// program runs the screen stack the way tea.Program does: every command
// runs on its own goroutine and its result goes back through the router.
type program struct {
	t       *testing.T
	r       *router.Router
	msgs    chan tea.Msg
	wallets int
}

func newProgram(t *testing.T) *program {
	return &program{t: t, r: router.New(homeStub{}), msgs: make(chan tea.Msg, 64)}
}

func (p *program) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() { p.msgs <- cmd() }()
}

func (p *program) send(msg tea.Msg) {
	switch msg := msg.(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			p.run(c)
		}
	case screen.WalletChangedMsg:
		p.wallets++
	default:
		p.run(p.r.Update(msg))
	}
}

func (p *program) waitFor(what string, cond func() bool) {
	p.t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case m := <-p.msgs:
			p.send(m)
		case <-deadline:
			p.t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func TestPlayAgainUnderRouter(t *testing.T) {
	s, clk, rec := newTestScreen(t, supplyOf(tfBatch(5), nil), nil)
	p := newProgram(t)
	p.send(router.PushScreenMsg{Screen: s})

	for i := 0; i < 5; i++ {
		p.waitFor(fmt.Sprintf("question %d", i+1), func() bool {
			return s.state.Status == session.StatusQuestion && s.state.CurrentIndex == i
		})
		p.send(keyPress('t'))
		p.waitFor("result", func() bool { return s.state.Status == session.StatusResult })
		clk.Advance(s.cfg.ResultDelay)
	}

	p.waitFor("summary screen", func() bool {
		_, ok := p.r.Active().(*summary.SummaryScreen)
		return ok
	})
	// The recorder's event can arrive while the summary is on top.
	p.waitFor("wallet refresh", func() bool { return p.wallets == 1 })
	require.Len(t, rec.results, 1)
	first := s.state.SessionID

	p.send(router.PopScreenMsg{})
	p.send(summary.PlayAgainMsg{})
	p.waitFor("replayed session", func() bool {
		return s.state.Status == session.StatusQuestion && s.state.SessionID != first
	})
	assert.True(t, p.r.Active() == screen.Screen(s))
	assert.Equal(t, 0, s.state.PlayerScore)

	p.send(keyPress('t'))
	p.waitFor("answer after replay", func() bool { return s.state.Status == session.StatusResult })
	assert.Equal(t, 10, s.state.PlayerScore)
}
