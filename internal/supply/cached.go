package supply

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/quizarena/internal/quiz"
	"github.com/abhisek/quizarena/internal/session"
)

// Cached keeps batches from next in Redis as JSON under
// quiz:batch:{subject}:{topic}. Concurrent misses for the same key share
// one upstream fetch. Redis failures are logged and bypass the cache.
type Cached struct {
	// Min is the smallest batch, counted in valid questions, worth
	// caching. Shorter batches are still returned but never stored.
	Min int

	client redis.UniversalClient
	next   session.Supply
	ttl    time.Duration
	logger *log.Logger
	sf     singleflight.Group
}

var _ session.Supply = (*Cached)(nil)

// NewCached wraps next. A ttl of zero stores batches without expiry.
func NewCached(client redis.UniversalClient, next session.Supply, ttl time.Duration, logger *log.Logger) *Cached {
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{client: client, next: next, ttl: ttl, logger: logger}
}

// CacheKey is the Redis key a subject/topic batch is stored under.
func CacheKey(subject, topic string) string {
	return "quiz:batch:" + strings.ToLower(subject) + ":" + strings.ToLower(topic)
}

func (c *Cached) Fetch(ctx context.Context, subject, topic string) ([]quiz.Question, error) {
	k := CacheKey(subject, topic)
	if batch, ok := c.lookup(ctx, k); ok {
		return batch, nil
	}

	v, err, _ := c.sf.Do(k, func() (any, error) {
		// Another caller may have filled the key while we queued.
		if batch, ok := c.lookup(ctx, k); ok {
			return batch, nil
		}
		batch, err := c.next.Fetch(ctx, subject, topic)
		if err != nil {
			return nil, err
		}
		if valid, _ := quiz.Sanitize(batch); len(valid) >= max(c.Min, 1) {
			c.store(ctx, k, batch)
		}
		return batch, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]quiz.Question)), nil
}

// Invalidate drops the cached batch for subject/topic.
func (c *Cached) Invalidate(ctx context.Context, subject, topic string) error {
	return c.client.Del(ctx, CacheKey(subject, topic)).Err()
}

func (c *Cached) lookup(ctx context.Context, k string) ([]quiz.Question, bool) {
	raw, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Printf("supply: cache read %s: %v", k, err)
		return nil, false
	}
	var batch []quiz.Question
	if err := json.Unmarshal(raw, &batch); err != nil || len(batch) == 0 {
		c.logger.Printf("supply: discarding corrupt cache entry %s", k)
		return nil, false
	}
	return batch, true
}

func (c *Cached) store(ctx context.Context, k string, batch []quiz.Question) {
	raw, err := json.Marshal(batch)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, k, raw, c.ttlWithJitter()).Err(); err != nil {
		c.logger.Printf("supply: cache write %s: %v", k, err)
	}
}

// ttlWithJitter spreads expiry over ttl..ttl+10% so batches cached together
// do not all expire together.
func (c *Cached) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	return c.ttl + time.Duration(rand.Int64N(int64(c.ttl)/10+1))
}
