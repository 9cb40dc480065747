package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Result is what a finished session reports to its Recorder.
type Result struct {
	SessionID string `json:"session_id"`
	Mode      Mode   `json:"mode"`
	Subject   string `json:"subject"`
	Topic     string `json:"topic,omitempty"`

	// PointsEarned is the positive reward total used for currency
	// crediting. Score may be lower when penalties applied.
	PointsEarned  int `json:"points_earned"`
	Score         int `json:"score"`
	OpponentScore int `json:"opponent_score,omitempty"`

	// QuestionsAttempted counts resolved questions, correct plus wrong.
	// Skips are reported separately.
	QuestionsAttempted int `json:"questions_attempted"`
	QuestionsCorrect   int `json:"questions_correct"`
	QuestionsWrong     int `json:"questions_wrong"`
	QuestionsSkipped   int `json:"questions_skipped"`

	Accuracy   float64       `json:"accuracy"`
	Outcome    Outcome       `json:"outcome,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Expired    bool          `json:"expired,omitempty"`
	Subscribed bool          `json:"subscribed,omitempty"`

	CompletedAt time.Time `json:"completed_at"`
}

// DurationSeconds returns the session length in whole seconds.
func (r Result) DurationSeconds() int {
	return int(r.Duration / time.Second)
}

// NewResult builds the recorder payload from a summary.
func NewResult(s Summary, subscribed bool) Result {
	return Result{
		SessionID:          s.SessionID,
		Mode:               s.Mode,
		Subject:            s.Subject,
		Topic:              s.Topic,
		PointsEarned:       s.TotalReward,
		Score:              s.PlayerScore,
		OpponentScore:      s.OpponentScore,
		QuestionsAttempted: s.Correct + s.Incorrect,
		QuestionsCorrect:   s.Correct,
		QuestionsWrong:     s.Incorrect,
		QuestionsSkipped:   s.Skipped,
		Accuracy:           s.Accuracy,
		Outcome:            s.Outcome,
		Duration:           s.Duration,
		Expired:            s.Expired,
		Subscribed:         subscribed,
		CompletedAt:        s.EndedAt,
	}
}

// Recorder persists or forwards finished sessions. The engine calls
// Record once per run; an error never alters the session outcome.
type Recorder interface {
	Record(ctx context.Context, r Result) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, r Result) error

func (f RecorderFunc) Record(ctx context.Context, r Result) error { return f(ctx, r) }

// MultiRecorder fans a result out to every sink, in order. All sinks are
// attempted; their errors are joined.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ctx context.Context, r Result) error {
	var errs []error
	for i, rec := range m {
		if rec == nil {
			continue
		}
		if err := rec.Record(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("recorder %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
