// Package rewards credits coins and badges for finished sessions.
package rewards

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/quizarena/internal/session"
	"github.com/abhisek/quizarena/internal/store"
)

// Service computes and persists session rewards. It implements
// session.Recorder so it can sit next to the session repo in a
// session.MultiRecorder.
type Service struct {
	repo store.RewardRepo
	now  func() time.Time

	mu   sync.Mutex
	last []Award
}

var _ session.Recorder = (*Service)(nil)

// NewService creates a Service writing to repo. A nil repo computes awards
// without persisting them.
func NewService(repo store.RewardRepo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Awards returns what a session result earns: its positive points as coins,
// a session badge graded by accuracy, a victory badge graded by margin and a
// perfect-round badge for a clean sweep.
func Awards(r session.Result, at time.Time) []Award {
	var out []Award
	if r.PointsEarned > 0 {
		out = append(out, Award{
			SessionID: r.SessionID,
			Coins:     r.PointsEarned,
			Reason:    fmt.Sprintf("%d points earned", r.PointsEarned),
			AwardedAt: at,
		})
	}
	if r.QuestionsAttempted == 0 {
		return out
	}

	out = append(out, Award{
		SessionID: r.SessionID,
		Badge:     BadgeSession,
		Rarity:    SessionRarity(r.Accuracy),
		Reason:    fmt.Sprintf("Session complete (%.0f%% accuracy)", r.Accuracy*100),
		AwardedAt: at,
	})

	if r.Outcome == session.OutcomeWin {
		margin := r.Score - r.OpponentScore
		out = append(out, Award{
			SessionID: r.SessionID,
			Badge:     BadgeVictory,
			Rarity:    VictoryRarity(margin),
			Reason:    fmt.Sprintf("Won by %d points", margin),
			AwardedAt: at,
		})
	}

	if r.QuestionsWrong == 0 && r.QuestionsSkipped == 0 && !r.Expired {
		out = append(out, Award{
			SessionID: r.SessionID,
			Badge:     BadgePerfect,
			Rarity:    RarityLegendary,
			Reason:    fmt.Sprintf("All %d questions correct", r.QuestionsCorrect),
			AwardedAt: at,
		})
	}
	return out
}

// Record credits the rewards for r. Every award is attempted; the first
// persistence error is returned.
func (s *Service) Record(ctx context.Context, r session.Result) error {
	awards := Awards(r, s.now())

	s.mu.Lock()
	s.last = awards
	s.mu.Unlock()

	if s.repo == nil {
		return nil
	}
	var firstErr error
	for _, a := range awards {
		if err := s.repo.AppendReward(ctx, toEvent(a)); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("credit %s: %w", describe(a), err)
		}
	}
	return firstErr
}

// LastAwards returns the awards from the most recent Record call.
func (s *Service) LastAwards() []Award {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Award(nil), s.last...)
}

// Balance returns the accumulated coins and badge counts.
func (s *Service) Balance(ctx context.Context) (store.Balance, error) {
	if s.repo == nil {
		return store.Balance{BadgesByRarity: map[string]int{}}, nil
	}
	return s.repo.Balance(ctx)
}

func toEvent(a Award) store.RewardEventData {
	if a.IsBadge() {
		return store.RewardEventData{
			SessionID: a.SessionID,
			Kind:      store.RewardBadge,
			Badge:     string(a.Badge),
			Rarity:    string(a.Rarity),
			Amount:    1,
			Reason:    a.Reason,
		}
	}
	return store.RewardEventData{
		SessionID: a.SessionID,
		Kind:      store.RewardCoins,
		Amount:    a.Coins,
		Reason:    a.Reason,
	}
}

func describe(a Award) string {
	if a.IsBadge() {
		return fmt.Sprintf("%s %s badge", a.Rarity, a.Badge)
	}
	return fmt.Sprintf("%d coins", a.Coins)
}
