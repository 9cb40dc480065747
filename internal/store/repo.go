package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

func (o QueryOpts) apply(sel *entsql.Selector) *entsql.Selector {
	if o.After > 0 {
		sel.Where(entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		sel.Where(entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", o.From.UTC()))
	}
	if !o.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", o.To.UTC()))
	}
	if o.Limit > 0 {
		sel.Limit(o.Limit)
	}
	return sel
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEventRecord is a persisted LLM request event.
type LLMRequestEventRecord struct {
	LLMRequestEventData
	Sequence  int64
	Timestamp time.Time
}

// EventRepo provides append and query access to operational events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)
}

// Reward kinds.
const (
	RewardCoins = "coins"
	RewardBadge = "badge"
)

// RewardEventData captures one credited reward: a coin amount or a badge.
type RewardEventData struct {
	SessionID string
	Kind      string // RewardCoins or RewardBadge
	Badge     string // badge type, empty for coins
	Rarity    string // badge rarity, empty for coins
	Amount    int    // coins credited, 1 for badges
	Reason    string
}

// RewardEventRecord is a persisted reward event.
type RewardEventRecord struct {
	RewardEventData
	Sequence  int64
	Timestamp time.Time
}

// Balance is the player's accumulated currency and badge collection.
type Balance struct {
	Coins          int
	Badges         int
	BadgesByRarity map[string]int
}

// RewardRepo persists credited rewards.
type RewardRepo interface {
	AppendReward(ctx context.Context, data RewardEventData) error
	QueryRewards(ctx context.Context, opts QueryOpts) ([]RewardEventRecord, error)
	Balance(ctx context.Context) (Balance, error)
}
