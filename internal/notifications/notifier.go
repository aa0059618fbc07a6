// Package notifications relays post activity to websocket clients through Redis pub/sub.
package notifications

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"

	"inkpost/internal/middleware"
	"inkpost/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	// ActivityChannel carries events every connected client receives.
	ActivityChannel   = "activity:posts"
	userChannelPrefix = "notifications:user:"
)

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether the notifier has a Redis connection.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishActivity sends a payload to every subscriber of the activity feed.
func (n *Notifier) PublishActivity(ctx context.Context, payload string) error {
	return n.publish(ctx, ActivityChannel, payload)
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID, payload string) error {
	return n.publish(ctx, UserChannel(userID), payload)
}

func (n *Notifier) publish(ctx context.Context, channel, payload string) error {
	if !n.Enabled() {
		return nil
	}
	ctx, span := observability.TraceRedisOperation(ctx, "publish")
	defer span.End()

	if err := n.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("publish").Inc()
		return err
	}
	return nil
}

// StartSubscriber subscribes to the activity feed and all user channels and
// calls onMessage for each incoming message until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, ActivityChannel, userChannelPrefix+"*")
	// Wait for the subscription confirmation so publishes right after
	// StartSubscriber returns are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		observability.RedisErrorRate.WithLabelValues("subscribe").Inc()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in activity subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// userFromChannel extracts the user ID from a user channel name.
func userFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, userChannelPrefix)
	return id, ok && id != ""
}
