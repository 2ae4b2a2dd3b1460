package usecase

// DefaultRoutingKey is used for event types without a dedicated route.
const DefaultRoutingKey = "order.event"

var routingKeys = map[string]string{
	"ORDER_CREATED":   "order.created",
	"ORDER_CANCELED":  "order.canceled",
	"ORDER_CONFIRMED": "order.confirmed",
}

// RoutingKey resolves the broker routing key for an event type.
func RoutingKey(eventType string) string {
	if key, ok := routingKeys[eventType]; ok {
		return key
	}
	return DefaultRoutingKey
}
