package auth

import (
	"context"
	"errors"
	"time"

	"inkpost/internal/observability"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "blacklist:"

// Denylist records revoked token IDs in Redis until the token would have
// expired anyway. A nil client disables revocation.
type Denylist struct {
	client *redis.Client
	now    func() time.Time
}

// NewDenylist returns a Denylist backed by client.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client, now: time.Now}
}

// Revoke marks jti as revoked until expiresAt.
func (d *Denylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if d.client == nil || jti == "" {
		return nil
	}
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	ctx, span := observability.TraceRedisOperation(ctx, "revoke_token")
	defer span.End()

	if err := d.client.Set(ctx, denylistPrefix+jti, "1", ttl).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("revoke_token").Inc()
		return err
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if d.client == nil || jti == "" {
		return false, nil
	}
	n, err := d.client.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues("check_revoked").Inc()
		return false, err
	}
	return n > 0, nil
}
