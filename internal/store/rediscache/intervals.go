// Package rediscache keeps per-day booked interval lists in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"barbearia/backend/internal/availability"
)

const (
	intervalsKeyPrefix = "barbearia:intervals:"
	versionKeyPrefix   = "barbearia:intervals-version:"

	DefaultTTL = 5 * time.Minute

	// Versions outlive the lists they guard.
	versionTTLFactor = 4
)

var ErrInvalidRecord = errors.New("invalid cached interval record")

type intervalRecord struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Ref   string    `json:"ref,omitempty"`
}

type IntervalCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIntervalCache(client *redis.Client, ttl time.Duration) *IntervalCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IntervalCache{client: client, ttl: ttl}
}

// Key is the cache key for a barber and local calendar day.
func Key(barberID string, day time.Time) string {
	return intervalsKeyPrefix + barberID + ":" + day.Format("2006-01-02")
}

func (c *IntervalCache) Get(ctx context.Context, barberID string, day time.Time) ([]availability.BookedInterval, bool, error) {
	data, err := c.client.Get(ctx, Key(barberID, day)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var records []intervalRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	out := make([]availability.BookedInterval, 0, len(records))
	for _, r := range records {
		out = append(out, availability.BookedInterval{Start: r.Start, End: r.End, Ref: r.Ref})
	}
	return out, true, nil
}

func versionKey(barberID string, day time.Time) string {
	return versionKeyPrefix + barberID + ":" + day.Format(time.DateOnly)
}

// Version returns the invalidation counter of a barber-day. Read it before
// fetching from the source and hand it to Set.
func (c *IntervalCache) Version(ctx context.Context, barberID string, day time.Time) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(barberID, day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Set stores intervals only while the barber-day is still at version. A list
// fetched before an invalidation is dropped instead of cached.
func (c *IntervalCache) Set(ctx context.Context, barberID string, day time.Time, version int64, intervals []availability.BookedInterval) error {
	records := make([]intervalRecord, 0, len(intervals))
	for _, iv := range intervals {
		records = append(records, intervalRecord{Start: iv.Start, End: iv.End, Ref: iv.Ref})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	vKey := versionKey(barberID, day)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, Key(barberID, day), data, c.ttl)
			return nil
		})
		return err
	}, vKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate bumps the day's version and drops the cached list.
func (c *IntervalCache) Invalidate(ctx context.Context, barberID string, day time.Time) error {
	vKey := versionKey(barberID, day)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, vKey)
		pipe.Expire(ctx, vKey, versionTTLFactor*c.ttl)
		pipe.Del(ctx, Key(barberID, day))
		return nil
	})
	return err
}

// Ping is the readiness probe for Redis.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
