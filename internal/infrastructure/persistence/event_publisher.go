// Package persistence provides infrastructure implementations for data persistence.
package persistence

import (
	"context"
	"sync"

	"github.com/stayflow-tech/stayflow/internal/domain/ddd"
)

// InMemoryEventPublisher implements guest.EventPublisher with in-memory
// storage. This is useful for testing and single-process deployments.
// For production at scale, consider using a message broker.
type InMemoryEventPublisher struct {
	mu       sync.RWMutex
	events   []ddd.DomainEvent
	handlers []EventHandler
}

// EventHandler is a function that handles domain events.
type EventHandler func(event ddd.DomainEvent)

// NewInMemoryEventPublisher creates a new in-memory event publisher.
func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		events:   make([]ddd.DomainEvent, 0, 16),
		handlers: make([]EventHandler, 0, 2),
	}
}

// Publish publishes domain events.
func (p *InMemoryEventPublisher) Publish(ctx context.Context, events ...ddd.DomainEvent) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.events = append(p.events, events...)
	// Copy handlers to avoid holding the lock during handler execution
	handlers := make([]EventHandler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()

	// Notify handlers without the lock so they can call back into the
	// publisher if needed.
	for _, event := range events {
		for _, handler := range handlers {
			handler(event)
		}
	}

	return nil
}

// Subscribe adds an event handler.
func (p *InMemoryEventPublisher) Subscribe(handler EventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}

// GetEvents returns all published events.
func (p *InMemoryEventPublisher) GetEvents() []ddd.DomainEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]ddd.DomainEvent{}, p.events...)
}

// ClearEvents clears all stored events.
func (p *InMemoryEventPublisher) ClearEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = p.events[:0]
}

// GetEventsByType returns events with a specific event name.
func (p *InMemoryEventPublisher) GetEventsByType(eventName string) []ddd.DomainEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var result []ddd.DomainEvent
	for _, event := range p.events {
		if event.EventName() == eventName {
			result = append(result, event)
		}
	}
	return result
}

// GetEventsByAggregateID returns events for a specific aggregate.
func (p *InMemoryEventPublisher) GetEventsByAggregateID(id string) []ddd.DomainEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var result []ddd.DomainEvent
	for _, event := range p.events {
		if event.AggregateID() == id {
			result = append(result, event)
		}
	}
	return result
}

// NoOpEventPublisher is a no-op implementation for when events are not needed.
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher.
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// Publish does nothing.
func (p *NoOpEventPublisher) Publish(ctx context.Context, events ...ddd.DomainEvent) error {
	return nil
}
