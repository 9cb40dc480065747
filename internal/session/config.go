package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/quizarena/internal/opponent"
	"github.com/abhisek/quizarena/internal/scoring"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid session config")

// Mode selects the game variant.
type Mode string

const (
	ModeBattle Mode = "battle"
	ModeSolo   Mode = "solo"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBattle, ModeSolo:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeBattle, ModeSolo)
	}
}

// Timing selects which countdown bounds play.
type Timing int

const (
	// TimingPerQuestion restarts a fixed timer for every question. Expiry
	// resolves the question as a timeout.
	TimingPerQuestion Timing = iota

	// TimingSessionWide runs one timer for the whole session. Expiry ends
	// the session immediately.
	TimingSessionWide
)

func (t Timing) String() string {
	switch t {
	case TimingPerQuestion:
		return "per_question"
	case TimingSessionWide:
		return "session_wide"
	default:
		return fmt.Sprintf("Timing(%d)", int(t))
	}
}

// Config parameterizes one session. Use BattleConfig or SoloConfig as a
// starting point.
type Config struct {
	Mode    Mode
	Subject string
	Topic   string

	// QuestionCount is the batch size. A longer supply is truncated.
	QuestionCount int

	// MinQuestions is the smallest usable batch. A supply that yields
	// fewer valid questions triggers the fallback.
	MinQuestions int

	Timing            Timing
	QuestionTimeLimit time.Duration // TimingPerQuestion only
	SessionTimeLimit  time.Duration // TimingSessionWide only

	// Countdown is the pre-session countdown. Zero starts the first
	// question right after loading.
	Countdown time.Duration

	// ResultDelay is how long the Result state is displayed.
	ResultDelay time.Duration

	Scoring    scoring.Policy
	Subscribed bool

	// Opponent probabilities, battle mode only. The two paths are kept
	// separate on purpose.
	OpponentAnsweredProbability float64
	OpponentTimedOutProbability float64

	// RecordTimeout bounds the recorder call at Summary.
	RecordTimeout time.Duration
}

// BattleConfig returns the two-player preset: 5 questions, 15 seconds
// each, +10 per correct answer and no penalty.
func BattleConfig() Config {
	return Config{
		Mode:                        ModeBattle,
		Subject:                     "general",
		QuestionCount:               5,
		MinQuestions:                5,
		Timing:                      TimingPerQuestion,
		QuestionTimeLimit:           15 * time.Second,
		Countdown:                   3 * time.Second,
		ResultDelay:                 2 * time.Second,
		Scoring:                     scoring.Policy{Correct: 10, Incorrect: 0, SubscriptionMultiplier: 2},
		OpponentAnsweredProbability: opponent.DefaultAnsweredProbability,
		OpponentTimedOutProbability: opponent.DefaultTimedOutProbability,
		RecordTimeout:               10 * time.Second,
	}
}

// SoloConfig returns the single-player game preset: 10 questions under
// one 300 second budget, +10 / -2.
func SoloConfig() Config {
	return Config{
		Mode:             ModeSolo,
		Subject:          "general",
		QuestionCount:    10,
		MinQuestions:     5,
		Timing:           TimingSessionWide,
		SessionTimeLimit: 300 * time.Second,
		ResultDelay:      time.Second,
		Scoring:          scoring.Policy{Correct: 10, Incorrect: -2, SubscriptionMultiplier: 2},
		RecordTimeout:    10 * time.Second,
	}
}

// ConfigFor returns the preset for mode.
func ConfigFor(mode Mode) (Config, error) {
	switch mode {
	case ModeBattle:
		return BattleConfig(), nil
	case ModeSolo:
		return SoloConfig(), nil
	default:
		return Config{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, mode)
	}
}

// HasOpponent reports whether sessions with this config simulate a rival.
func (c Config) HasOpponent() bool { return c.Mode == ModeBattle }

// Validate rejects configs the engine cannot run.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Mode == ModeBattle || c.Mode == ModeSolo, "unknown mode %q", c.Mode)
	check(c.QuestionCount >= 1, "question count must be positive, got %d", c.QuestionCount)
	check(c.MinQuestions >= 1 && c.MinQuestions <= c.QuestionCount,
		"min questions must be in [1, %d], got %d", c.QuestionCount, c.MinQuestions)

	switch c.Timing {
	case TimingPerQuestion:
		check(c.QuestionTimeLimit >= time.Second, "question time limit must be at least 1s, got %s", c.QuestionTimeLimit)
	case TimingSessionWide:
		check(c.SessionTimeLimit >= time.Second, "session time limit must be at least 1s, got %s", c.SessionTimeLimit)
	default:
		check(false, "unknown timing %s", c.Timing)
	}

	check(c.Countdown >= 0, "countdown must not be negative")
	check(c.ResultDelay >= 0, "result delay must not be negative")
	check(c.RecordTimeout >= 0, "record timeout must not be negative")
	check(c.Scoring.Correct >= 0, "correct points must not be negative, got %d", c.Scoring.Correct)
	check(c.Scoring.Incorrect <= 0, "incorrect points must not be positive, got %d", c.Scoring.Incorrect)
	check(inUnit(c.OpponentAnsweredProbability), "opponent answered probability %v outside [0, 1]", c.OpponentAnsweredProbability)
	check(inUnit(c.OpponentTimedOutProbability), "opponent timed out probability %v outside [0, 1]", c.OpponentTimedOutProbability)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func inUnit(p float64) bool { return p >= 0 && p <= 1 }

// seconds rounds d up to whole seconds.
func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
