// Package publisher provides event publisher adapters for the outbox processor.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/orders/internal/outbox/domain"
)

// Supported values for Config.Driver.
const (
	DriverPubSub = "pubsub"
	DriverKafka  = "kafka"
	DriverLog    = "log"
)

// Publisher is an outbox event publisher that holds broker resources.
type Publisher interface {
	Publish(ctx context.Context, msg domain.Message) error
	Close(ctx context.Context) error
}

// Config selects and configures a publisher driver.
type Config struct {
	Driver       string
	TopicURL     string
	KafkaBrokers []string
	KafkaTopic   string
}

// New builds the publisher for config.Driver.
func New(ctx context.Context, config Config, logger *slog.Logger) (Publisher, error) {
	switch config.Driver {
	case DriverPubSub:
		return NewPubSubPublisher(ctx, config.TopicURL)
	case DriverKafka:
		if len(config.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka publisher requires at least one broker")
		}
		return NewKafkaPublisher(config.KafkaBrokers, config.KafkaTopic), nil
	case DriverLog:
		return NewLoggingPublisher(logger), nil
	default:
		return nil, fmt.Errorf("unsupported publisher driver: %s", config.Driver)
	}
}
