package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type rewardRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *rewardRepo) AppendReward(ctx context.Context, data RewardEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableRewards).
		Columns("sequence", "timestamp", "session_id", "kind", "badge", "rarity", "amount", "reason").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.Kind, data.Badge, data.Rarity, data.Amount, data.Reason).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save reward event: %w", err)
	}
	return nil
}

func (r *rewardRepo) QueryRewards(ctx context.Context, opts QueryOpts) ([]RewardEventRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("sequence", "timestamp", "session_id", "kind", "badge", "rarity", "amount", "reason").
		From(entsql.Table(tableRewards)).
		OrderBy(entsql.Desc("sequence"))
	query, args := opts.apply(sel).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rewards: %w", err)
	}
	defer rows.Close()

	var records []RewardEventRecord
	for rows.Next() {
		var rec RewardEventRecord
		if err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.Kind,
			&rec.Badge, &rec.Rarity, &rec.Amount, &rec.Reason); err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *rewardRepo) Balance(ctx context.Context) (Balance, error) {
	bal := Balance{BadgesByRarity: make(map[string]int)}

	query, args := entsql.Dialect(dialect.SQLite).
		Select("COALESCE(SUM(amount), 0)").
		From(entsql.Table(tableRewards)).
		Where(entsql.EQ("kind", RewardCoins)).
		Query()
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&bal.Coins); err != nil {
		return Balance{}, fmt.Errorf("sum coins: %w", err)
	}

	query, args = entsql.Dialect(dialect.SQLite).
		Select("rarity", "COUNT(*)").
		From(entsql.Table(tableRewards)).
		Where(entsql.EQ("kind", RewardBadge)).
		GroupBy("rarity").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Balance{}, fmt.Errorf("count badges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rarity string
			n      int
		)
		if err := rows.Scan(&rarity, &n); err != nil {
			return Balance{}, fmt.Errorf("scan badge count: %w", err)
		}
		bal.BadgesByRarity[rarity] = n
		bal.Badges += n
	}
	return bal, rows.Err()
}
