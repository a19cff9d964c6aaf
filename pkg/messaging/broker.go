// Package messaging fans committed domain events out to other services.
package messaging

import "context"

// ChannelPrefix namespaces every domain event channel.
const ChannelPrefix = "homecare."

// Broker delivers one event payload to a channel. The outbox relay may
// publish an event more than once.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Close() error
}

// Channel returns the broker channel for an event type.
func Channel(eventType string) string {
	return ChannelPrefix + eventType
}
