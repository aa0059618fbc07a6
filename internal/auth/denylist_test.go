package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenylist_RevokeAndCheck(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewDenylist(client)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl := mr.TTL("blacklist:jti-1")
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "ttl=%s", ttl)

	mr.FastForward(2 * time.Hour)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestDenylist_ExpiredTokenIsNotStored(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	d := NewDenylist(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, d.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("blacklist:old"))
}

func TestDenylist_NilClient(t *testing.T) {
	d := NewDenylist(nil)
	assert.NoError(t, d.Revoke(context.Background(), "x", time.Now().Add(time.Hour)))
	revoked, err := d.IsRevoked(context.Background(), "x")
	assert.NoError(t, err)
	assert.False(t, revoked)
}
