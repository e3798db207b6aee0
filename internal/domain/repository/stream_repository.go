package repository

import (
	"context"

	"github.com/fuelmap-service/internal/domain"
)

// StreamRepository wraps Redis streams for station update events.
type StreamRepository interface {
	// CreateConsumerGroup creates the consumer group, ignoring
	// already-exists errors.
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeStream reads messages for the given consumer until the
	// context is cancelled.
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	// AckMessage acknowledges a processed message.
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// PublishEvent appends a station update event to the stream.
	PublishEvent(ctx context.Context, stream string, event *domain.StationUpdateEvent) error
}
