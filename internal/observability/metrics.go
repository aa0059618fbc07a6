// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LikesToggled counts like toggles by outcome ("liked" or "unliked").
	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_likes_toggled_total",
		Help: "Total number of like toggles by result",
	}, []string{"result"})

	// CommentsChanged counts comment mutations by action ("added" or "removed").
	CommentsChanged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_comments_total",
		Help: "Total number of comment mutations by action",
	}, []string{"action"})

	// AuthorizationDenials counts requests rejected by the authorization policy.
	AuthorizationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_authorization_denials_total",
		Help: "Total number of authorization denials by action",
	}, []string{"action"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// WebSocketConnectionsTotal is the gauge of active activity-stream connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inkpost_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// RecordLikeToggle increments the like counter for the toggle outcome.
func RecordLikeToggle(liked bool) {
	if liked {
		LikesToggled.WithLabelValues("liked").Inc()
		return
	}
	LikesToggled.WithLabelValues("unliked").Inc()
}
