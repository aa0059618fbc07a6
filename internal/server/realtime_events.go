package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"inkpost/internal/middleware"
)

// Event type constants prevent typos in event names.
const (
	EventPostCreated     = "post_created"
	EventPostUpdated     = "post_updated"
	EventPostDeleted     = "post_deleted"
	EventPostLikeToggled = "post_like_toggled"
	EventCommentCreated  = "comment_created"
	EventCommentDeleted  = "comment_deleted"

	EventPostCommented = "post_commented"
)

type activityEvent struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// publishActivity fans an event out to every connected client. With Redis the
// event goes through pub/sub so every instance relays it, including this one;
// without it the local hub is used directly.
func (s *Server) publishActivity(ctx context.Context, eventType string, payload map[string]any) {
	data, err := json.Marshal(activityEvent{Type: eventType, Payload: payload})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal event",
			slog.String("event", eventType), slog.String("error", err.Error()))
		return
	}
	message := string(data)

	if s.notifier != nil && s.notifier.Enabled() {
		if err := s.notifier.PublishActivity(context.WithoutCancel(ctx), message); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish event",
				slog.String("event", eventType), slog.String("error", err.Error()))
		}
		return
	}
	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
}

// publishUserEvent delivers an event to one user's connections.
func (s *Server) publishUserEvent(ctx context.Context, userID, eventType string, payload map[string]any) {
	data, err := json.Marshal(activityEvent{Type: eventType, Payload: payload})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal event",
			slog.String("event", eventType), slog.String("error", err.Error()))
		return
	}
	message := string(data)

	if s.notifier != nil && s.notifier.Enabled() {
		if err := s.notifier.PublishUser(context.WithoutCancel(ctx), userID, message); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish user event",
				slog.String("event", eventType), slog.String("error", err.Error()))
		}
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(userID, message)
	}
}
