package domain

// Header keys attached to every published message.
const (
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
	HeaderAggregateID   = "aggregate_id"
	HeaderOutboxID      = "outbox_id"
	HeaderRoutingKey    = "routing_key"
	HeaderTimestamp     = "timestamp"
	HeaderContentType   = "content_type"
)

// Message is what the processor hands to the event publisher.
type Message struct {
	EventType  string
	RoutingKey string
	Payload    []byte
	Headers    map[string]string
}
