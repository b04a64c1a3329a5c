package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked refresh tokens in Redis, keyed by jti. An
// entry lives exactly as long as the token it revokes, so the store
// garbage-collects itself; an unexpired-but-blacklisted token is always
// rejected regardless of sweep timing.
type Blacklist struct {
	client *redis.Client
}

// NewBlacklist constructs a Blacklist.
func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

func (b *Blacklist) key(jti string) string {
	return "blacklist:" + jti
}

// Add revokes a token until its natural expiry. Re-adding an existing
// entry succeeds, which keeps logout idempotent under retries.
func (b *Blacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing to revoke.
		return nil
	}
	if err := b.client.Set(ctx, b.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("auth: blacklist add: %w", err)
	}
	return nil
}

// Contains reports whether a token has been revoked.
func (b *Blacklist) Contains(ctx context.Context, jti string) (bool, error) {
	if err := b.client.Get(ctx, b.key(jti)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("auth: blacklist lookup: %w", err)
	}
	return true, nil
}
