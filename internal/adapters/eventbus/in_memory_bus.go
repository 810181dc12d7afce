package eventbus

import (
	"context"
	"sync"

	"SahayCare/internal/core/ports"

	"github.com/rs/zerolog"
)

// inMemoryEventBus implements the ports.EventBus interface
type inMemoryEventBus struct {
	log         zerolog.Logger
	subscribers map[string][]ports.EventHandler
	mu          sync.RWMutex
}

// NewInMemoryEventBus creates a new, empty event bus
func NewInMemoryEventBus(baseLogger *zerolog.Logger) ports.EventBus {
	return &inMemoryEventBus{
		log:         baseLogger.With().Str("component", "in_memory_bus").Logger(),
		subscribers: make(map[string][]ports.EventHandler),
	}
}

// Publish fans an event out to every subscriber of the topic. Handlers run
// in their own goroutines; a failed or slow handler never affects the
// publisher or the other handlers.
func (b *inMemoryEventBus) Publish(ctx context.Context, topic string, data interface{}) error {
	b.mu.RLock()
	handlers := b.subscribers[topic]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		// Fine during partial deployments, but worth seeing in the logs.
		b.log.Warn().Str("topic", topic).Msg("Published event with no subscribers")
		return nil
	}

	event := ports.Event{
		Topic: topic,
		Data:  data,
	}

	for _, handler := range handlers {
		go func(h ports.EventHandler) {
			// Handlers get a fresh background context. Cancelling the
			// publisher's request must not cancel audit or notification work
			// that is already in flight.
			if err := h(context.Background(), event); err != nil {
				b.log.Error().Err(err).Str("topic", topic).Msg("Event handler failed")
			}
		}(handler)
	}

	b.log.Info().Str("topic", topic).Int("handlers", len(handlers)).Msg("Event published")
	return nil
}

// Subscribe registers a handler for a specific topic
func (b *inMemoryEventBus) Subscribe(topic string, handler ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[topic] = append(b.subscribers[topic], handler)
	b.log.Info().Str("topic", topic).Msg("New handler subscribed to topic")
}
