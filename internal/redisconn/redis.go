// Package redisconn opens the Redis connection used for token revocation and
// activity pub/sub.
package redisconn

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"inkpost/internal/middleware"
	"inkpost/internal/observability"

	"github.com/redis/go-redis/v9"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Options parses addr, which is either a redis:// URL or a bare host:port.
func Options(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// Connect returns a pinged client for addr, or nil when addr is empty or
// Redis cannot be reached. The service keeps running without Redis: tokens
// cannot be revoked and activity is relayed to local clients only.
func Connect(addr string) *redis.Client {
	if strings.TrimSpace(addr) == "" {
		middleware.Logger.Warn("REDIS_URL not set, continuing without redis")
		return nil
	}
	opts, err := Options(addr)
	if err != nil {
		middleware.Logger.Warn("invalid REDIS_URL, continuing without redis", slog.String("error", err.Error()))
		return nil
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis connection failed, continuing without redis", slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}
	middleware.Logger.Info("redis connected")
	return client
}
