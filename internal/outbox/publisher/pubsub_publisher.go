package publisher

import (
	"context"
	"fmt"

	"gocloud.dev/pubsub"

	"github.com/allisson/orders/internal/outbox/domain"

	// Register the supported topic drivers
	_ "gocloud.dev/pubsub/mempubsub"
	_ "gocloud.dev/pubsub/rabbitpubsub"
)

// PubSubPublisher publishes outbox messages to a Go CDK topic.
//
// Supported URLs: mem://topic for in-process delivery and
// rabbit://exchange?key_name=routing_key for RabbitMQ, which routes every
// message with its routing key header. The RabbitMQ server is taken from
// RABBIT_SERVER_URL.
type PubSubPublisher struct {
	topic *pubsub.Topic
}

// NewPubSubPublisher opens the topic identified by topicURL.
func NewPubSubPublisher(ctx context.Context, topicURL string) (*PubSubPublisher, error) {
	topic, err := pubsub.OpenTopic(ctx, topicURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open topic: %w", err)
	}
	return &PubSubPublisher{topic: topic}, nil
}

// Publish sends msg and returns once the broker acknowledged it.
func (p *PubSubPublisher) Publish(ctx context.Context, msg domain.Message) error {
	metadata := make(map[string]string, len(msg.Headers))
	for k, v := range msg.Headers {
		metadata[k] = v
	}

	if err := p.topic.Send(ctx, &pubsub.Message{Body: msg.Payload, Metadata: metadata}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close flushes pending sends and releases the topic.
func (p *PubSubPublisher) Close(ctx context.Context) error {
	return p.topic.Shutdown(ctx)
}
