package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockTTL bounds how long a stuck generation can hold its lock. Normal
// releases happen as soon as the eligibility/decrement section finishes.
const lockTTL = 30 * time.Second

// GenerationLock serializes generation attempts per account using SET NX
// with a TTL. Key format: genlock:<account_id>
type GenerationLock struct {
	client *redis.Client
}

// NewGenerationLock creates a GenerationLock wrapping the given Redis client.
func NewGenerationLock(client *redis.Client) *GenerationLock {
	return &GenerationLock{client: client}
}

// Acquire takes the per-account lock. It returns false when another request
// currently holds it.
func (l *GenerationLock) Acquire(ctx context.Context, accountID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(accountID), "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("generation lock acquire: %w", err)
	}
	return ok, nil
}

// Release drops the lock. Releasing a lock that already expired is a no-op.
func (l *GenerationLock) Release(ctx context.Context, accountID string) error {
	if err := l.client.Del(ctx, l.key(accountID)).Err(); err != nil {
		return fmt.Errorf("generation lock release: %w", err)
	}
	return nil
}

func (l *GenerationLock) key(accountID string) string {
	return fmt.Sprintf("genlock:%s", accountID)
}
