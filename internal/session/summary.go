package session

import "time"

// Outcome is the battle result from the player's point of view.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "win"
	OutcomeTie  Outcome = "tie"
	OutcomeLoss Outcome = "loss"
)

// Tally is the raw counter set a finished session hands to Summarize.
type Tally struct {
	PlayerScore     int
	OpponentScore   int
	Correct         int
	Incorrect       int
	Skipped         int
	OpponentCorrect int

	// Deltas holds every point delta applied to the player, in order.
	Deltas []int
}

// Summary is the final report of a session.
type Summary struct {
	SessionID     string
	Mode          Mode
	Subject       string
	Topic         string
	QuestionCount int

	PlayerScore     int
	OpponentScore   int
	Correct         int
	Incorrect       int
	Skipped         int
	OpponentCorrect int

	// Accuracy is Correct / (Correct + Incorrect), 0 when both are 0.
	Accuracy float64

	// Outcome is OutcomeNone for modes without an opponent.
	Outcome Outcome

	// TotalReward sums the positive deltas only. It differs from
	// PlayerScore whenever penalties were applied.
	TotalReward int

	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration

	// Expired is set when a session-wide timer ended play.
	Expired bool
}

// Summarize derives the final report from a tally.
func Summarize(cfg Config, t Tally, startedAt, endedAt time.Time, expired bool) Summary {
	s := Summary{
		Mode:            cfg.Mode,
		Subject:         cfg.Subject,
		Topic:           cfg.Topic,
		PlayerScore:     t.PlayerScore,
		OpponentScore:   t.OpponentScore,
		Correct:         t.Correct,
		Incorrect:       t.Incorrect,
		Skipped:         t.Skipped,
		OpponentCorrect: t.OpponentCorrect,
		Accuracy:        Accuracy(t.Correct, t.Incorrect),
		TotalReward:     TotalReward(t.Deltas),
		StartedAt:       startedAt,
		EndedAt:         endedAt,
		Expired:         expired,
	}
	if endedAt.After(startedAt) {
		s.Duration = endedAt.Sub(startedAt)
	}
	if cfg.HasOpponent() {
		s.Outcome = DecideOutcome(t.PlayerScore, t.OpponentScore)
	}
	return s
}

// Accuracy returns correct/(correct+incorrect), or 0 for an empty session.
func Accuracy(correct, incorrect int) float64 {
	total := correct + incorrect
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// DecideOutcome compares the two final scores.
func DecideOutcome(player, opponent int) Outcome {
	switch {
	case player > opponent:
		return OutcomeWin
	case player == opponent:
		return OutcomeTie
	default:
		return OutcomeLoss
	}
}

// TotalReward sums the positive deltas.
func TotalReward(deltas []int) int {
	total := 0
	for _, d := range deltas {
		if d > 0 {
			total += d
		}
	}
	return total
}
