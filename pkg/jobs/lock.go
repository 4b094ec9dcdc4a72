package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock guards at-most-one-in-flight execution per record. A worker
// acquires the record's key before processing and the TTL bounds how
// long a crashed worker can block a retry.
type Lock struct {
	rdb *redis.Client
}

func NewLock(rdb *redis.Client) *Lock {
	return &Lock{rdb: rdb}
}

func (l *Lock) key(jobType, recordID string) string {
	return fmt.Sprintf("jobs:inflight:%s:%s", jobType, recordID)
}

// Acquire returns false without error when another worker already
// holds the record.
func (l *Lock) Acquire(ctx context.Context, jobType, recordID string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key(jobType, recordID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire job lock: %w", err)
	}
	return ok, nil
}

// Release is best effort; an expired key is not an error.
func (l *Lock) Release(ctx context.Context, jobType, recordID string) error {
	if err := l.rdb.Del(ctx, l.key(jobType, recordID)).Err(); err != nil {
		return fmt.Errorf("failed to release job lock: %w", err)
	}
	return nil
}
