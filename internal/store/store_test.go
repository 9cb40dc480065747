package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhisek/quizarena/internal/session"
)

var testDBs atomic.Int64

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:quizarena-test-%d?mode=memory&cache=shared", testDBs.Add(1))
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is covered by TestOpenFileDatabase.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizarena.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	// Reopening runs the migration again against an existing schema.
	s.Close()
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2.Close()
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{tableSessionResults, tableLLMRequests, tableRewards, tableSequence} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}
	for i, seq := range seqs {
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}

	// Seeding again must not reset the counter.
	sc, err := newSequenceCounter(ctx, s.DB())
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	seq, err := sc.Next(ctx)
	if err != nil {
		t.Fatalf("next after reseed: %v", err)
	}
	if seq != 6 {
		t.Errorf("seq after reseed = %d, want 6", seq)
	}
}

func sampleResult(id string, mode session.Mode, score, reward int, outcome session.Outcome) session.Result {
	return session.Result{
		SessionID:          id,
		Mode:               mode,
		Subject:            "science",
		Topic:              "planets",
		PointsEarned:       reward,
		Score:              score,
		OpponentScore:      10,
		QuestionsAttempted: 4,
		QuestionsCorrect:   3,
		QuestionsWrong:     1,
		QuestionsSkipped:   1,
		Accuracy:           0.75,
		Outcome:            outcome,
		Duration:           42 * time.Second,
		Subscribed:         true,
		CompletedAt:        time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func TestSessionRepoRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	if err := repo.Record(ctx, sampleResult("s1", session.ModeBattle, 30, 30, session.OutcomeWin)); err != nil {
		t.Fatalf("record s1: %v", err)
	}
	if err := repo.Record(ctx, sampleResult("s2", session.ModeSolo, 28, 30, session.OutcomeNone)); err != nil {
		t.Fatalf("record s2: %v", err)
	}

	recs, err := repo.Recent(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[0].SessionID != "s2" || recs[1].SessionID != "s1" {
		t.Errorf("order = %s, %s; want newest first", recs[0].SessionID, recs[1].SessionID)
	}

	got := recs[1]
	want := sampleResult("s1", session.ModeBattle, 30, 30, session.OutcomeWin)
	if got.Mode != want.Mode || got.Score != want.Score || got.PointsEarned != want.PointsEarned {
		t.Errorf("mode/score/points = %s/%d/%d, want %s/%d/%d",
			got.Mode, got.Score, got.PointsEarned, want.Mode, want.Score, want.PointsEarned)
	}
	if got.Duration != want.Duration {
		t.Errorf("duration = %s, want %s", got.Duration, want.Duration)
	}
	if got.Outcome != session.OutcomeWin || !got.Subscribed || got.Accuracy != 0.75 {
		t.Errorf("outcome/subscribed/accuracy = %s/%v/%v", got.Outcome, got.Subscribed, got.Accuracy)
	}
	if !got.CompletedAt.Equal(want.CompletedAt) {
		t.Errorf("completed_at = %v, want %v", got.CompletedAt, want.CompletedAt)
	}

	limited, err := repo.Recent(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("recent limit: %v", err)
	}
	if len(limited) != 1 || limited[0].SessionID != "s2" {
		t.Errorf("limited = %+v", limited)
	}

	older, err := repo.Recent(ctx, QueryOpts{Before: recs[0].Sequence})
	if err != nil {
		t.Fatalf("recent before: %v", err)
	}
	if len(older) != 1 || older[0].SessionID != "s1" {
		t.Errorf("before filter = %+v", older)
	}
}

func TestSessionRepoRejectsDuplicateSession(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	res := sampleResult("dup", session.ModeBattle, 10, 10, session.OutcomeTie)
	if err := repo.Record(ctx, res); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := repo.Record(ctx, res); err == nil {
		t.Error("expected an error recording the same session twice")
	}
}

func TestSessionRepoTotals(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	empty, err := repo.Totals(ctx, "")
	if err != nil {
		t.Fatalf("totals (empty): %v", err)
	}
	if empty.Sessions != 0 || empty.Accuracy() != 0 {
		t.Errorf("empty totals = %+v", empty)
	}

	results := []session.Result{
		sampleResult("a", session.ModeBattle, 40, 40, session.OutcomeWin),
		sampleResult("b", session.ModeBattle, 0, 0, session.OutcomeLoss),
		sampleResult("c", session.ModeBattle, 10, 10, session.OutcomeWin),
		sampleResult("d", session.ModeSolo, 18, 20, session.OutcomeNone),
	}
	for _, r := range results {
		if err := repo.Record(ctx, r); err != nil {
			t.Fatalf("record %s: %v", r.SessionID, err)
		}
	}

	all, err := repo.Totals(ctx, "")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if all.Sessions != 4 || all.PointsEarned != 70 || all.BestScore != 40 {
		t.Errorf("sessions/points/best = %d/%d/%d, want 4/70/40", all.Sessions, all.PointsEarned, all.BestScore)
	}
	if all.Wins != 2 || all.Losses != 1 || all.Ties != 0 {
		t.Errorf("wins/losses/ties = %d/%d/%d", all.Wins, all.Losses, all.Ties)
	}
	if all.QuestionsCorrect != 12 || all.QuestionsWrong != 4 {
		t.Errorf("correct/wrong = %d/%d", all.QuestionsCorrect, all.QuestionsWrong)
	}
	if got := all.Accuracy(); got != 0.75 {
		t.Errorf("accuracy = %v, want 0.75", got)
	}

	solo, err := repo.Totals(ctx, session.ModeSolo)
	if err != nil {
		t.Fatalf("solo totals: %v", err)
	}
	if solo.Sessions != 1 || solo.PointsEarned != 20 || solo.Wins != 0 {
		t.Errorf("solo totals = %+v", solo)
	}
}

func TestEventRepoLLMRequests(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, purpose := range []string{"quiz-batch", "quiz-batch", "explain"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock-1",
			Purpose:      purpose,
			InputTokens:  100 + i,
			OutputTokens: 50,
			LatencyMs:    12,
			Success:      i != 2,
			ErrorMessage: map[bool]string{true: "", false: "boom"}[i != 2],
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	newest := events[0]
	if newest.Purpose != "explain" || newest.Success || newest.ErrorMessage != "boom" {
		t.Errorf("newest = %+v", newest)
	}
	if events[2].InputTokens != 100 {
		t.Errorf("oldest input tokens = %d, want 100", events[2].InputTokens)
	}

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: events[1].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 1 || after[0].Sequence != newest.Sequence {
		t.Errorf("after filter = %+v", after)
	}

	future, err := repo.QueryLLMEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("query from: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("from filter returned %d events", len(future))
	}
}

func TestRewardRepoBalance(t *testing.T) {
	s := openTestStore(t)
	repo := s.RewardRepo()
	ctx := context.Background()

	bal, err := repo.Balance(ctx)
	if err != nil {
		t.Fatalf("balance (empty): %v", err)
	}
	if bal.Coins != 0 || bal.Badges != 0 {
		t.Errorf("empty balance = %+v", bal)
	}

	rewards := []RewardEventData{
		{SessionID: "s1", Kind: RewardCoins, Amount: 30, Reason: "session points"},
		{SessionID: "s1", Kind: RewardBadge, Badge: "session", Rarity: "epic", Amount: 1},
		{SessionID: "s1", Kind: RewardBadge, Badge: "victory", Rarity: "rare", Amount: 1},
		{SessionID: "s2", Kind: RewardCoins, Amount: 12},
		{SessionID: "s2", Kind: RewardBadge, Badge: "session", Rarity: "epic", Amount: 1},
	}
	for _, r := range rewards {
		if err := repo.AppendReward(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	bal, err = repo.Balance(ctx)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Coins != 42 {
		t.Errorf("coins = %d, want 42", bal.Coins)
	}
	if bal.Badges != 3 || bal.BadgesByRarity["epic"] != 2 || bal.BadgesByRarity["rare"] != 1 {
		t.Errorf("badges = %d %v", bal.Badges, bal.BadgesByRarity)
	}

	recs, err := repo.QueryRewards(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 2 || recs[0].SessionID != "s2" || recs[0].Kind != RewardBadge {
		t.Errorf("recent rewards = %+v", recs)
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RewardRepo().AppendReward(ctx, RewardEventData{SessionID: "x", Kind: RewardCoins, Amount: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.SessionRepo().Record(ctx, sampleResult("x", session.ModeSolo, 1, 1, session.OutcomeNone)); err != nil {
		t.Fatal(err)
	}

	rewards, _ := s.RewardRepo().QueryRewards(ctx, QueryOpts{})
	sessions, _ := s.SessionRepo().Recent(ctx, QueryOpts{})
	if len(rewards) != 1 || len(sessions) != 1 {
		t.Fatalf("rewards=%d sessions=%d", len(rewards), len(sessions))
	}
	if sessions[0].Sequence <= rewards[0].Sequence {
		t.Errorf("session sequence %d should follow reward sequence %d", sessions[0].Sequence, rewards[0].Sequence)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("QUIZARENA_DB", filepath.Join(dir, "explicit", "q.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("env path: %v", err)
	}
	if p != filepath.Join(dir, "explicit", "q.db") {
		t.Errorf("path = %s", p)
	}

	t.Setenv("QUIZARENA_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("xdg path: %v", err)
	}
	if want := filepath.Join(dir, "quizarena", "quizarena.db"); p != want {
		t.Errorf("path = %s, want %s", p, want)
	}
}
