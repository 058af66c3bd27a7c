package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct{ C *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *Redis) Close() error { return r.C.Close() }

// Allow is a fixed-window counter: at most limit hits per window for
// the given key (typically "scope:ip"). Fails open on redis errors so
// a cache outage does not take the public endpoints down.
func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return true
	}
	pipe := r.C.TxPipeline()
	incr := pipe.Incr(ctx, "rl:"+key)
	pipe.Expire(ctx, "rl:"+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true
	}
	return incr.Val() <= int64(limit)
}

// IncrClick bumps the per-day click counter for a link. Mongo keeps
// the lifetime total; these keys back the owner's daily chart and
// roll off after 90 days.
func (r *Redis) IncrClick(ctx context.Context, linkID string, day time.Time) error {
	key := fmt.Sprintf("clicks:%s:%s", linkID, day.UTC().Format("2006-01-02"))
	pipe := r.C.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 90*24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) ClicksOnDay(ctx context.Context, linkID string, day time.Time) (int64, error) {
	key := fmt.Sprintf("clicks:%s:%s", linkID, day.UTC().Format("2006-01-02"))
	n, err := r.C.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
