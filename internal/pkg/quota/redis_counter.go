// Package quota counts metered calls per account per UTC day.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrQuotaExceeded = errors.New("daily query quota exceeded")

// Reservation is one counted call. Key pins the day it was counted against,
// so a release after midnight returns it to the right counter.
type Reservation struct {
	AccountID uuid.UUID
	Key       string
	Used      int64
}

type Counter interface {
	// Reserve counts one call and fails with ErrQuotaExceeded past limit.
	Reserve(ctx context.Context, accountID uuid.UUID) (Reservation, error)
	// Release gives back a reservation whose call did not complete.
	Release(ctx context.Context, r Reservation) error
}

type RedisCounter struct {
	rdb   *redis.Client
	limit int64
	now   func() time.Time
}

// NewRedisCounter returns a counter; limit <= 0 disables enforcement.
func NewRedisCounter(rdb *redis.Client, limit int) *RedisCounter {
	return &RedisCounter{rdb: rdb, limit: int64(limit), now: time.Now}
}

func (c *RedisCounter) key(accountID uuid.UUID) string {
	return fmt.Sprintf("quota:%s:%s", accountID, c.now().UTC().Format("20060102"))
}

func (c *RedisCounter) Reserve(ctx context.Context, accountID uuid.UUID) (Reservation, error) {
	r := Reservation{AccountID: accountID}
	if c.limit <= 0 {
		return r, nil
	}

	key := c.key(accountID)
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return r, fmt.Errorf("quota counter: %w", err)
	}

	used := incr.Val()
	if used > c.limit {
		c.rdb.Decr(ctx, key)
		r.Used = used - 1
		return r, ErrQuotaExceeded
	}
	r.Key = key
	r.Used = used
	return r, nil
}

// Release decrements the counter the reservation was taken from. Reservations
// that were never counted are ignored.
func (c *RedisCounter) Release(ctx context.Context, r Reservation) error {
	if c.limit <= 0 || r.Key == "" {
		return nil
	}
	return c.rdb.Decr(ctx, r.Key).Err()
}
