// Package ddd provides the shared building blocks for aggregates and
// domain events across bounded contexts.
package ddd

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain.
type DomainEvent interface {
	// EventID returns the unique identifier of this event record.
	EventID() string
	// EventName returns the name of the event.
	EventName() string
	// AggregateID returns the ID of the aggregate this event belongs to.
	AggregateID() string
	// OccurredOn returns when the event occurred.
	OccurredOn() time.Time
	// EventData returns the event payload as keyed data.
	EventData() map[string]any
}

// BaseEvent contains common fields for all domain events.
// Concrete events embed it and provide EventName and EventData.
type BaseEvent struct {
	eventID     string
	aggregateID string
	occurredOn  time.Time
}

// NewBaseEvent creates a BaseEvent for the given aggregate with a fresh
// event ID and the current time.
func NewBaseEvent(aggregateID string) BaseEvent {
	return BaseEvent{
		eventID:     uuid.NewString(),
		aggregateID: aggregateID,
		occurredOn:  time.Now(),
	}
}

// EventID returns the unique identifier of this event record.
func (e BaseEvent) EventID() string {
	return e.eventID
}

// AggregateID returns the aggregate ID.
func (e BaseEvent) AggregateID() string {
	return e.aggregateID
}

// OccurredOn returns when the event occurred.
func (e BaseEvent) OccurredOn() time.Time {
	return e.occurredOn
}

// AggregateRoot is the embeddable base for aggregate roots. It carries the
// aggregate identity, a monotonic version counter and the outbox of
// uncommitted domain events.
//
// The outbox is never drained implicitly: callers that have durably
// recorded the events must call MarkEventsCommitted to uphold exactly-once
// downstream delivery per persistence cycle.
type AggregateRoot struct {
	id      string
	version int64

	// baseVersion is the version the aggregate had when it was loaded
	// from storage (0 for a newly created aggregate). Repositories use
	// it for optimistic concurrency checks. It is never serialized.
	baseVersion int64

	events []DomainEvent
}

// NewAggregateRoot creates the root for a newly constructed aggregate.
// The version starts at 1; the first mutating operation moves it to 2.
func NewAggregateRoot(id string) AggregateRoot {
	return AggregateRoot{
		id:      id,
		version: 1,
		events:  make([]DomainEvent, 0, 4),
	}
}

// RehydrateAggregateRoot restores a root from persisted state without
// emitting events. The base version is pinned to the persisted version so
// a subsequent save can detect concurrent writers.
func RehydrateAggregateRoot(id string, version int64) AggregateRoot {
	return AggregateRoot{
		id:          id,
		version:     version,
		baseVersion: version,
		events:      make([]DomainEvent, 0, 4),
	}
}

// ID returns the aggregate identity.
func (a *AggregateRoot) ID() string {
	return a.id
}

// Version returns the current aggregate version.
func (a *AggregateRoot) Version() int64 {
	return a.version
}

// BaseVersion returns the version the aggregate was loaded at.
// It is 0 for aggregates that have never been persisted.
func (a *AggregateRoot) BaseVersion() int64 {
	return a.baseVersion
}

// UncommittedEvents returns a defensive copy of the event outbox.
func (a *AggregateRoot) UncommittedEvents() []DomainEvent {
	out := make([]DomainEvent, len(a.events))
	copy(out, a.events)
	return out
}

// MarkEventsCommitted clears the outbox. Callers invoke it only after the
// events have been durably recorded downstream.
func (a *AggregateRoot) MarkEventsCommitted() {
	a.events = make([]DomainEvent, 0, 4)
}

// SyncBaseVersion pins the base version to the current version. Repositories
// call it after a successful save so the next save compares against the
// version that is now stored.
func (a *AggregateRoot) SyncBaseVersion() {
	a.baseVersion = a.version
}

// Record appends a domain event to the outbox. Intended for embedding
// aggregates, not for external callers.
func (a *AggregateRoot) Record(event DomainEvent) {
	a.events = append(a.events, event)
}

// BumpVersion increments the aggregate version by exactly one. Embedding
// aggregates call it once per successful mutating operation, after all
// validation has passed.
func (a *AggregateRoot) BumpVersion() {
	a.version++
}
