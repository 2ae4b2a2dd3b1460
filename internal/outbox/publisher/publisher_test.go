package publisher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/pubsub"

	"github.com/allisson/orders/internal/outbox/domain"
)

func testMessage() domain.Message {
	return domain.Message{
		EventType:  "ORDER_CREATED",
		RoutingKey: "order.created",
		Payload:    []byte(`{"order_number":"ORD-1A2B3C4D"}`),
		Headers: map[string]string{
			domain.HeaderEventType:   "ORDER_CREATED",
			domain.HeaderAggregateID: "ORD-1A2B3C4D",
			domain.HeaderRoutingKey:  "order.created",
			domain.HeaderOutboxID:    "0195a7e0-0000-7000-8000-000000000001",
		},
	}
}

func TestPubSubPublisher_Publish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	publisher, err := NewPubSubPublisher(ctx, "mem://orders-publisher-test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, publisher.Close(ctx))
	}()

	subscription, err := pubsub.OpenSubscription(ctx, "mem://orders-publisher-test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, subscription.Shutdown(ctx))
	}()

	require.NoError(t, publisher.Publish(ctx, testMessage()))

	received, err := subscription.Receive(ctx)
	require.NoError(t, err)
	received.Ack()

	assert.JSONEq(t, `{"order_number":"ORD-1A2B3C4D"}`, string(received.Body))
	assert.Equal(t, "ORDER_CREATED", received.Metadata[domain.HeaderEventType])
	assert.Equal(t, "order.created", received.Metadata[domain.HeaderRoutingKey])
}

func TestPubSubPublisher_PublishAfterClose(t *testing.T) {
	ctx := context.Background()

	publisher, err := NewPubSubPublisher(ctx, "mem://orders-publisher-closed")
	require.NoError(t, err)
	require.NoError(t, publisher.Close(ctx))

	err = publisher.Publish(ctx, testMessage())

	assert.ErrorContains(t, err, "failed to send message")
}

func TestNewPubSubPublisher_InvalidURL(t *testing.T) {
	_, err := NewPubSubPublisher(context.Background(), "unknown://topic")

	assert.ErrorContains(t, err, "failed to open topic")
}

// mockWriter is a mock implementation of messageWriter
type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Run("Success_KeyedByAggregate", func(t *testing.T) {
		writer := &mockWriter{}
		publisher := &KafkaPublisher{writer: writer}

		writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			headers := make(map[string]string, len(msg.Headers))
			for _, h := range msg.Headers {
				headers[h.Key] = string(h.Value)
			}
			return string(msg.Key) == "ORD-1A2B3C4D" &&
				bytes.Equal(msg.Value, []byte(`{"order_number":"ORD-1A2B3C4D"}`)) &&
				headers[domain.HeaderEventType] == "ORDER_CREATED" &&
				headers[domain.HeaderRoutingKey] == "order.created"
		})).Return(nil).Once()

		err := publisher.Publish(context.Background(), testMessage())

		assert.NoError(t, err)
		writer.AssertExpectations(t)
	})

	t.Run("Success_FallsBackToRoutingKey", func(t *testing.T) {
		writer := &mockWriter{}
		publisher := &KafkaPublisher{writer: writer}

		msg := testMessage()
		delete(msg.Headers, domain.HeaderAggregateID)

		writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 && string(msgs[0].Key) == "order.created"
		})).Return(nil).Once()

		assert.NoError(t, publisher.Publish(context.Background(), msg))
	})

	t.Run("Error", func(t *testing.T) {
		writer := &mockWriter{}
		publisher := &KafkaPublisher{writer: writer}

		writer.On("WriteMessages", mock.Anything, mock.Anything).
			Return(errors.New("leader not available")).
			Once()

		err := publisher.Publish(context.Background(), testMessage())

		assert.ErrorContains(t, err, "leader not available")
	})
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &mockWriter{}
	publisher := &KafkaPublisher{writer: writer}
	writer.On("Close").Return(nil).Once()

	assert.NoError(t, publisher.Close(context.Background()))
	writer.AssertExpectations(t)
}

func TestNewKafkaPublisher(t *testing.T) {
	publisher := NewKafkaPublisher([]string{"localhost:9092"}, "orders")

	writer, ok := publisher.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "orders", writer.Topic)
	assert.Equal(t, kafka.RequireOne, writer.RequiredAcks)
}

func TestLoggingPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	publisher := NewLoggingPublisher(logger)

	err := publisher.Publish(context.Background(), testMessage())

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"routing_key":"order.created"`)
	assert.NoError(t, publisher.Close(context.Background()))
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := context.Background()

	t.Run("PubSub", func(t *testing.T) {
		p, err := New(ctx, Config{Driver: DriverPubSub, TopicURL: "mem://orders-factory-test"}, logger)
		require.NoError(t, err)
		assert.IsType(t, &PubSubPublisher{}, p)
		assert.NoError(t, p.Close(ctx))
	})

	t.Run("Kafka", func(t *testing.T) {
		p, err := New(ctx, Config{
			Driver:       DriverKafka,
			KafkaBrokers: []string{"localhost:9092"},
			KafkaTopic:   "orders.events",
		}, logger)
		require.NoError(t, err)
		assert.IsType(t, &KafkaPublisher{}, p)
		assert.NoError(t, p.Close(ctx))
	})

	t.Run("KafkaWithoutBrokers", func(t *testing.T) {
		_, err := New(ctx, Config{Driver: DriverKafka, KafkaTopic: "orders.events"}, logger)
		assert.Error(t, err)
	})

	t.Run("Log", func(t *testing.T) {
		p, err := New(ctx, Config{Driver: DriverLog}, logger)
		require.NoError(t, err)
		assert.IsType(t, &LoggingPublisher{}, p)
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		_, err := New(ctx, Config{Driver: "carrier-pigeon"}, logger)
		assert.ErrorContains(t, err, "unsupported publisher driver")
	})
}
