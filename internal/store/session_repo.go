package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizarena/internal/session"
)

// SessionRecord is a persisted session result.
type SessionRecord struct {
	session.Result
	Sequence  int64
	Timestamp time.Time
}

// SessionTotals aggregates every recorded session.
type SessionTotals struct {
	Sessions         int
	PointsEarned     int
	QuestionsCorrect int
	QuestionsWrong   int
	QuestionsSkipped int
	BestScore        int
	Wins             int
	Ties             int
	Losses           int
}

// Accuracy is the lifetime correct/(correct+wrong) ratio.
func (t SessionTotals) Accuracy() float64 {
	return session.Accuracy(t.QuestionsCorrect, t.QuestionsWrong)
}

// SessionRepo stores finished sessions. It implements session.Recorder.
type SessionRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var _ session.Recorder = (*SessionRepo)(nil)

var sessionColumns = []string{
	"sequence", "timestamp", "session_id", "mode", "subject", "topic",
	"points_earned", "score", "opponent_score",
	"questions_attempted", "questions_correct", "questions_wrong", "questions_skipped",
	"accuracy", "outcome", "duration_ms", "expired", "subscribed", "completed_at",
}

// Record appends one session result.
func (r *SessionRepo) Record(ctx context.Context, res session.Result) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	completed := res.CompletedAt.UTC()
	if res.CompletedAt.IsZero() {
		completed = now
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableSessionResults).
		Columns(sessionColumns...).
		Values(seqNum, now, res.SessionID, string(res.Mode), res.Subject, res.Topic,
			res.PointsEarned, res.Score, res.OpponentScore,
			res.QuestionsAttempted, res.QuestionsCorrect, res.QuestionsWrong, res.QuestionsSkipped,
			res.Accuracy, string(res.Outcome), res.Duration.Milliseconds(), res.Expired, res.Subscribed, completed).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session result %s: %w", res.SessionID, err)
	}
	return nil
}

// Recent returns recorded sessions, newest first.
func (r *SessionRepo) Recent(ctx context.Context, opts QueryOpts) ([]SessionRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(sessionColumns...).
		From(entsql.Table(tableSessionResults)).
		OrderBy(entsql.Desc("sequence"))
	query, args := opts.apply(sel).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var (
			rec        SessionRecord
			mode       string
			outcome    string
			durationMs int64
		)
		if err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.SessionID, &mode, &rec.Subject, &rec.Topic,
			&rec.PointsEarned, &rec.Score, &rec.OpponentScore,
			&rec.QuestionsAttempted, &rec.QuestionsCorrect, &rec.QuestionsWrong, &rec.QuestionsSkipped,
			&rec.Accuracy, &outcome, &durationMs, &rec.Expired, &rec.Subscribed, &rec.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.Mode = session.Mode(mode)
		rec.Outcome = session.Outcome(outcome)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Totals aggregates recorded sessions. An empty mode covers all modes.
func (r *SessionRepo) Totals(ctx context.Context, mode session.Mode) (SessionTotals, error) {
	var t SessionTotals

	sel := entsql.Dialect(dialect.SQLite).
		Select(
			"COUNT(*)",
			"COALESCE(SUM(points_earned), 0)",
			"COALESCE(SUM(questions_correct), 0)",
			"COALESCE(SUM(questions_wrong), 0)",
			"COALESCE(SUM(questions_skipped), 0)",
			"COALESCE(MAX(score), 0)",
		).
		From(entsql.Table(tableSessionResults))
	if mode != "" {
		sel.Where(entsql.EQ("mode", string(mode)))
	}
	query, args := sel.Query()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&t.Sessions, &t.PointsEarned, &t.QuestionsCorrect, &t.QuestionsWrong, &t.QuestionsSkipped, &t.BestScore)
	if err != nil {
		return SessionTotals{}, fmt.Errorf("aggregate sessions: %w", err)
	}

	sel = entsql.Dialect(dialect.SQLite).
		Select("outcome", "COUNT(*)").
		From(entsql.Table(tableSessionResults)).
		Where(entsql.NEQ("outcome", "")).
		GroupBy("outcome")
	if mode != "" {
		sel.Where(entsql.EQ("mode", string(mode)))
	}
	query, args = sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return SessionTotals{}, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return SessionTotals{}, fmt.Errorf("scan outcome: %w", err)
		}
		switch session.Outcome(outcome) {
		case session.OutcomeWin:
			t.Wins = n
		case session.OutcomeTie:
			t.Ties = n
		case session.OutcomeLoss:
			t.Losses = n
		}
	}
	return t, rows.Err()
}
