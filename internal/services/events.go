package services

import (
	"context"
	"log/slog"
	"time"
)

// Event channels consumed by downstream indexers.
const (
	ChannelPostCreated = "post.created"
	ChannelPostDeleted = "post.deleted"
)

// EventPublisher publishes post lifecycle events. *mq.MQ satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, channel string, payload any, attrs map[string]string) (string, error)
}

// PostEvent is the payload published on post lifecycle channels.
type PostEvent struct {
	PostID     int       `json:"post_id"`
	CreatorID  int       `json:"creator_id"`
	Category   string    `json:"category"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishPostEvent sends an event if a publisher is configured.
// Publishing is best-effort: failures are logged and never fail the
// originating request.
func publishPostEvent(ctx context.Context, publisher EventPublisher, logger *slog.Logger, channel string, event PostEvent) {
	if publisher == nil {
		return
	}

	if _, err := publisher.PublishJSON(ctx, channel, event, nil); err != nil {
		logger.Warn("publish post event", "channel", channel, "post_id", event.PostID, "error", err)
	}
}
