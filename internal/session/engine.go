// Package session implements the timed quiz/battle state machine.
//
// An Engine sequences a fixed batch of questions through
// Idle -> Loading -> Countdown -> Question <-> Result -> Summary. All
// timing goes through an injected clock.Scheduler, scoring through
// scoring.Points and the rival through an opponent.Simulator, so a whole
// session can be driven deterministically with clock.Fake.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizarena/internal/clock"
	"github.com/abhisek/quizarena/internal/opponent"
	"github.com/abhisek/quizarena/internal/quiz"
	"github.com/abhisek/quizarena/internal/scoring"
)

var (
	// ErrCancelled is returned by Start when Cancel interrupts loading.
	ErrCancelled = errors.New("session cancelled")

	// ErrNotIdle is returned by Start when a session is already running.
	ErrNotIdle = errors.New("session already started")
)

// Options wires the engine's collaborators. Only Supply is usually set by
// callers; everything else has a working default.
type Options struct {
	// Clock drives every countdown. Defaults to clock.Real.
	Clock clock.Scheduler

	// Supply provides the batch. When nil the Fallback is used directly.
	Supply Supply

	// Fallback is tried when Supply fails or comes back short.
	// Defaults to DefaultSupply.
	Fallback Supply

	// Recorder receives the result once per run. Optional.
	Recorder Recorder

	// Opponent draws the rival's outcomes in battle mode. Defaults to a
	// Bernoulli simulator using the config's probabilities.
	Opponent opponent.Simulator

	// Rand drives restart shuffles, feedback picks and the default
	// opponent. Defaults to a randomly seeded source.
	Rand *rand.Rand

	// Messages is the feedback table. Defaults to scoring.DefaultMessages.
	Messages scoring.Messages

	// Logger receives operational warnings. Defaults to log.Default().
	Logger *log.Logger

	// OnChange is called with a fresh snapshot after every accepted event.
	// It runs outside the engine lock and may call back into the engine.
	OnChange func(State)

	// OnRecordError is called when the Recorder fails.
	OnRecordError func(error)

	// NewID generates session ids. Defaults to uuid.NewString.
	NewID func() string
}

type timerSlot int

const (
	slotCountdown timerSlot = iota
	slotQuestion
	slotSession
	slotResult
	numSlots
)

type armedTimer struct {
	handle clock.Handle
	token  uint64
}

// Engine is the session state machine. All methods are safe for
// concurrent use; events are applied one at a time.
type Engine struct {
	cfg  Config
	opts Options
	rnd  *rand.Rand

	mu         sync.Mutex
	state      State
	gen        uint64
	tokens     uint64
	timers     [numSlots]armedTimer
	loadCancel context.CancelFunc

	batch     []quiz.Question
	questions []quiz.Question
	deltas    []int
	startedAt time.Time

	questionLeft int
	sessionLeft  int

	// pending is the result awaiting delivery once the lock is released.
	pending *Result
}

// NewEngine validates cfg and returns an idle engine.
func NewEngine(cfg Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Fallback == nil {
		opts.Fallback = DefaultSupply
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Messages == nil {
		opts.Messages = scoring.DefaultMessages
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Opponent == nil {
		src := rand.New(rand.NewPCG(opts.Rand.Uint64(), opts.Rand.Uint64()))
		opts.Opponent = opponent.NewBernoulli(cfg.OpponentAnsweredProbability, cfg.OpponentTimedOutProbability, src)
	}

	return &Engine{
		cfg:   cfg,
		opts:  opts,
		rnd:   opts.Rand,
		state: State{Status: StatusIdle, Mode: cfg.Mode},
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// State returns a snapshot of the current session.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Start loads a batch and enters the countdown. It blocks while the supply
// is fetched. Supply problems fall back to Options.Fallback; if that also
// fails the engine returns to Idle and the error wraps
// ErrSupplyUnavailable.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state.Status != StatusIdle {
		status := e.state.Status
		e.mu.Unlock()
		return fmt.Errorf("%w: status %s", ErrNotIdle, status)
	}
	e.gen++
	gen := e.gen
	loadCtx, cancel := context.WithCancel(ctx)
	e.loadCancel = cancel
	e.state = State{
		Status:    StatusLoading,
		Mode:      e.cfg.Mode,
		SessionID: e.opts.NewID(),
		Version:   e.state.Version + 1,
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)

	batch, usedFallback, err := e.load(loadCtx)
	cancel()

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return ErrCancelled
	}
	e.loadCancel = nil
	version := e.state.Version + 1
	if err != nil {
		e.state = State{Status: StatusIdle, Mode: e.cfg.Mode, Version: version}
		snap = e.snapshotLocked()
		e.mu.Unlock()
		e.notify(snap)
		return err
	}
	e.batch = batch
	e.state.UsedFallback = usedFallback
	e.beginLocked(batch)
	e.state.Version = version
	snap = e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return nil
}

// SubmitAnswer resolves the current question with a. It reports whether
// the answer was accepted; answers outside the Question state, repeated
// answers and answers that do not fit the question are ignored.
func (e *Engine) SubmitAnswer(a quiz.Answer) bool {
	return e.dispatch(func() bool {
		s := &e.state
		if s.Status != StatusQuestion || s.SelectedAnswer.IsSet() {
			return false
		}
		if !e.questions[s.CurrentIndex].Accepts(a) {
			return false
		}
		e.resolveLocked(a, opponent.PathAnswered)
		return true
	})
}

// SubmitAnswerAt is SubmitAnswer bound to the question at index. An answer
// meant for an earlier question is ignored once the session has moved on.
func (e *Engine) SubmitAnswerAt(index int, a quiz.Answer) bool {
	return e.dispatch(func() bool {
		s := &e.state
		if s.Status != StatusQuestion || s.CurrentIndex != index || s.SelectedAnswer.IsSet() {
			return false
		}
		if !e.questions[index].Accepts(a) {
			return false
		}
		e.resolveLocked(a, opponent.PathAnswered)
		return true
	})
}

// Skip moves past the current question without scoring it.
func (e *Engine) Skip() bool {
	return e.dispatch(func() bool {
		if e.state.Status != StatusQuestion {
			return false
		}
		return e.skipLocked()
	})
}

// SkipAt skips the question at index, and only while it is on screen. A
// repeated SkipAt for a question already skipped is a no-op.
func (e *Engine) SkipAt(index int) bool {
	return e.dispatch(func() bool {
		if e.state.Status != StatusQuestion || e.state.CurrentIndex != index {
			return false
		}
		return e.skipLocked()
	})
}

// Restart resets every counter and replays the loaded batch in a new
// order, starting again from the countdown.
func (e *Engine) Restart() bool {
	return e.dispatch(func() bool {
		switch e.state.Status {
		case StatusCountdown, StatusQuestion, StatusResult, StatusSummary:
		default:
			return false
		}
		e.state.SessionID = e.opts.NewID()
		e.beginLocked(quiz.Shuffle(e.batch, e.rnd))
		return true
	})
}

// Cancel tears the session down from any state, cancelling every timer and
// any in-flight load.
func (e *Engine) Cancel() bool {
	return e.dispatch(func() bool {
		if e.state.Status == StatusIdle {
			return false
		}
		e.gen++
		if e.loadCancel != nil {
			e.loadCancel()
			e.loadCancel = nil
		}
		e.disarmAllLocked()
		e.state = State{Status: StatusIdle, Mode: e.cfg.Mode, Version: e.state.Version}
		e.batch, e.questions, e.deltas = nil, nil, nil
		e.pending = nil
		return true
	})
}

// dispatch applies fn under the lock. When fn accepts the event, observers
// are notified and any pending result is recorded after unlocking.
func (e *Engine) dispatch(fn func() bool) bool {
	e.mu.Lock()
	if !fn() {
		e.mu.Unlock()
		return false
	}
	e.state.Version++
	snap := e.snapshotLocked()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	e.notify(snap)
	if pending != nil {
		e.record(*pending)
	}
	return true
}

func (e *Engine) notify(s State) {
	if e.opts.OnChange != nil {
		e.opts.OnChange(s)
	}
}

func (e *Engine) record(r Result) {
	if e.opts.Recorder == nil {
		return
	}
	ctx := context.Background()
	if e.cfg.RecordTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.RecordTimeout)
		defer cancel()
	}
	if err := e.opts.Recorder.Record(ctx, r); err != nil {
		e.opts.Logger.Printf("session %s: recording result failed: %v", r.SessionID, err)
		if e.opts.OnRecordError != nil {
			e.opts.OnRecordError(err)
		}
	}
}

func (e *Engine) snapshotLocked() State {
	s := e.state
	if s.Question != nil {
		q := *s.Question
		s.Question = &q
	}
	if s.Summary != nil {
		sum := *s.Summary
		s.Summary = &sum
	}
	return s
}

// load fetches from the supply, falling back when needed. It runs without
// the lock.
func (e *Engine) load(ctx context.Context) ([]quiz.Question, bool, error) {
	var primaryErr error
	if e.opts.Supply != nil {
		batch, err := e.fetch(ctx, e.opts.Supply)
		if err == nil {
			return batch, false, nil
		}
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		e.opts.Logger.Printf("session: supply for %s/%s unusable, using fallback: %v", e.cfg.Subject, e.cfg.Topic, err)
		primaryErr = err
	}

	batch, err := e.fetch(ctx, e.opts.Fallback)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		return nil, false, fmt.Errorf("%w: %w", ErrSupplyUnavailable, errors.Join(primaryErr, err))
	}
	return batch, e.opts.Supply != nil, nil
}

func (e *Engine) fetch(ctx context.Context, s Supply) ([]quiz.Question, error) {
	raw, err := s.Fetch(ctx, e.cfg.Subject, e.cfg.Topic)
	if err != nil {
		return nil, err
	}
	valid, dropped := quiz.Sanitize(raw)
	for _, derr := range dropped {
		e.opts.Logger.Printf("session: dropping question: %v", derr)
	}
	if len(valid) < e.cfg.MinQuestions {
		return nil, fmt.Errorf("%w: %d usable, need %d", ErrInsufficientQuestions, len(valid), e.cfg.MinQuestions)
	}
	if len(valid) > e.cfg.QuestionCount {
		valid = valid[:e.cfg.QuestionCount]
	}
	return valid, nil
}

// beginLocked resets the run and enters the countdown, or the first
// question when no countdown is configured.
func (e *Engine) beginLocked(questions []quiz.Question) {
	e.disarmAllLocked()
	e.state = State{
		Status:        StatusCountdown,
		SessionID:     e.state.SessionID,
		Mode:          e.cfg.Mode,
		QuestionCount: len(questions),
		UsedFallback:  e.state.UsedFallback,
		Version:       e.state.Version,
	}
	e.questions = questions
	e.deltas = nil
	e.pending = nil

	if secs := seconds(e.cfg.Countdown); secs > 0 {
		e.state.TimeRemaining = secs
		e.armLocked(slotCountdown, time.Second, true, e.onCountdownTick)
		return
	}
	e.startPlayLocked()
}

func (e *Engine) startPlayLocked() {
	e.startedAt = e.opts.Clock.Now()
	if e.cfg.Timing == TimingSessionWide {
		e.sessionLeft = seconds(e.cfg.SessionTimeLimit)
		e.armLocked(slotSession, time.Second, true, e.onSessionTick)
	}
	e.showQuestionLocked(0)
}

func (e *Engine) showQuestionLocked(i int) {
	s := &e.state
	s.Status = StatusQuestion
	s.CurrentIndex = i
	s.Question = &e.questions[i]
	s.SelectedAnswer = quiz.Answer{}
	s.LastAnswerCorrect = TriUnset
	s.LastOpponentCorrect = TriUnset
	s.LastDelta = 0
	s.Category = ""
	s.Feedback = ""

	if e.cfg.Timing == TimingPerQuestion {
		e.questionLeft = seconds(e.cfg.QuestionTimeLimit)
		s.TimeRemaining = e.questionLeft
		e.armLocked(slotQuestion, time.Second, true, e.onQuestionTick)
		return
	}
	s.TimeRemaining = e.sessionLeft
}

func (e *Engine) resolveLocked(a quiz.Answer, path opponent.Path) {
	e.disarmLocked(slotQuestion)

	s := &e.state
	q := e.questions[s.CurrentIndex]
	correct := q.IsCorrect(a)
	delta := scoring.Points(correct, e.cfg.Subscribed, e.cfg.Scoring)

	s.SelectedAnswer = a
	s.LastAnswerCorrect = triOf(correct)
	s.LastDelta = delta
	s.PlayerScore += delta
	e.deltas = append(e.deltas, delta)
	if correct {
		s.PlayerCorrect++
	} else {
		s.PlayerIncorrect++
	}
	s.Category = scoring.Categorize(q, a)
	s.Feedback = e.opts.Messages.Pick(s.Category, e.rnd)

	if e.cfg.HasOpponent() {
		hit := e.opts.Opponent.Answer(path)
		s.LastOpponentCorrect = triOf(hit)
		if hit {
			s.OpponentScore += e.cfg.Scoring.Correct
			s.OpponentCorrect++
		}
	}

	s.Status = StatusResult
	e.armLocked(slotResult, e.cfg.ResultDelay, false, e.onResultElapsed)
}

func (e *Engine) skipLocked() bool {
	if e.state.SelectedAnswer.IsSet() {
		return false
	}
	e.disarmLocked(slotQuestion)
	e.state.PlayerSkipped++
	e.advanceLocked()
	return true
}

func (e *Engine) advanceLocked() {
	next := e.state.CurrentIndex + 1
	if next < len(e.questions) {
		e.showQuestionLocked(next)
		return
	}
	e.finishLocked(false)
}

func (e *Engine) finishLocked(expired bool) {
	e.disarmAllLocked()

	s := &e.state
	tally := Tally{
		PlayerScore:     s.PlayerScore,
		OpponentScore:   s.OpponentScore,
		Correct:         s.PlayerCorrect,
		Incorrect:       s.PlayerIncorrect,
		Skipped:         s.PlayerSkipped,
		OpponentCorrect: s.OpponentCorrect,
		Deltas:          e.deltas,
	}
	sum := Summarize(e.cfg, tally, e.startedAt, e.opts.Clock.Now(), expired)
	sum.SessionID = s.SessionID
	sum.QuestionCount = len(e.questions)

	s.Status = StatusSummary
	s.Summary = &sum
	s.Question = nil
	s.SelectedAnswer = quiz.Answer{}
	s.LastAnswerCorrect = TriUnset
	s.LastOpponentCorrect = TriUnset
	if expired {
		s.TimeRemaining = 0
	}

	r := NewResult(sum, e.cfg.Subscribed)
	e.pending = &r
}

func (e *Engine) onCountdownTick() bool {
	if e.state.Status != StatusCountdown {
		return false
	}
	e.state.TimeRemaining--
	if e.state.TimeRemaining > 0 {
		return true
	}
	e.disarmLocked(slotCountdown)
	e.startPlayLocked()
	return true
}

func (e *Engine) onQuestionTick() bool {
	if e.state.Status != StatusQuestion {
		return false
	}
	e.questionLeft--
	e.state.TimeRemaining = e.questionLeft
	if e.questionLeft > 0 {
		return true
	}
	e.resolveLocked(quiz.Timeout, opponent.PathTimedOut)
	return true
}

// onSessionTick ends the session when the budget runs out. A question still
// on screen is discarded; one already in Result keeps its score.
func (e *Engine) onSessionTick() bool {
	switch e.state.Status {
	case StatusQuestion, StatusResult:
	default:
		return false
	}
	e.sessionLeft--
	e.state.TimeRemaining = e.sessionLeft
	if e.sessionLeft > 0 {
		return true
	}
	e.finishLocked(true)
	return true
}

func (e *Engine) onResultElapsed() bool {
	if e.state.Status != StatusResult {
		return false
	}
	e.advanceLocked()
	return true
}

// armLocked installs a timer in slot, cancelling whatever was there. The
// callback is dropped if the slot has been re-armed or cleared since.
func (e *Engine) armLocked(slot timerSlot, d time.Duration, repeat bool, fn func() bool) {
	e.disarmLocked(slot)
	e.tokens++
	token := e.tokens

	cb := func() {
		e.dispatch(func() bool {
			if e.timers[slot].token != token {
				return false
			}
			if !repeat {
				e.timers[slot] = armedTimer{}
			}
			return fn()
		})
	}

	var h clock.Handle
	if repeat {
		h = e.opts.Clock.Every(d, cb)
	} else {
		h = e.opts.Clock.After(d, cb)
	}
	e.timers[slot] = armedTimer{handle: h, token: token}
}

func (e *Engine) disarmLocked(slot timerSlot) {
	if h := e.timers[slot].handle; h != nil {
		h.Cancel()
	}
	e.timers[slot] = armedTimer{}
}

func (e *Engine) disarmAllLocked() {
	for slot := range numSlots {
		e.disarmLocked(slot)
	}
}
