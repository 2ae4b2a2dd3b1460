package publisher

import (
	"context"
	"log/slog"

	"github.com/allisson/orders/internal/outbox/domain"
)

// LoggingPublisher only logs messages. It is used when no broker is configured.
type LoggingPublisher struct {
	logger *slog.Logger
}

// NewLoggingPublisher creates a new LoggingPublisher.
func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

// Publish logs msg and always succeeds.
func (p *LoggingPublisher) Publish(ctx context.Context, msg domain.Message) error {
	p.logger.InfoContext(ctx, "event published",
		slog.String("event_type", msg.EventType),
		slog.String("routing_key", msg.RoutingKey),
		slog.String("outbox_id", msg.Headers[domain.HeaderOutboxID]),
		slog.Int("payload_size", len(msg.Payload)),
	)
	return nil
}

// Close is a no-op.
func (p *LoggingPublisher) Close(context.Context) error {
	return nil
}
