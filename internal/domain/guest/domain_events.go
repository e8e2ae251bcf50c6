package guest

import (
	"github.com/stayflow-tech/stayflow/internal/domain/ddd"
)

// Event names for the guest aggregate's domain events.
const (
	EventNameGuestRegistered    = "guest.registered"
	EventNameStageAdvanced      = "guest.stage_advanced"
	EventNameJourneyCompleted   = "guest.journey_completed"
	EventNameLoyaltyUpgraded    = "guest.loyalty_upgraded"
	EventNameFulfillmentTracked = "guest.fulfillment_tracked"
	EventNamePreferencesUpdated = "guest.preferences_updated"
	EventNameGuestDeleted       = "guest.deleted"
)

// GuestRegisteredEvent is emitted when a new guest is registered.
type GuestRegisteredEvent struct {
	ddd.BaseEvent
	Name  string
	Phone string
}

// EventName returns the event name.
func (e GuestRegisteredEvent) EventName() string { return EventNameGuestRegistered }

// EventData returns the event payload.
func (e GuestRegisteredEvent) EventData() map[string]any {
	return map[string]any{"name": e.Name, "phone": e.Phone}
}

// NewGuestRegisteredEvent creates a GuestRegisteredEvent.
func NewGuestRegisteredEvent(guestID, name, phone string) GuestRegisteredEvent {
	return GuestRegisteredEvent{
		BaseEvent: ddd.NewBaseEvent(guestID),
		Name:      name,
		Phone:     phone,
	}
}

// StageAdvancedEvent is emitted when a guest moves to the next journey
// stage.
type StageAdvancedEvent struct {
	ddd.BaseEvent
	PreviousStage Stage
	NewStage      Stage
	QualityScore  int
}

// EventName returns the event name.
func (e StageAdvancedEvent) EventName() string { return EventNameStageAdvanced }

// EventData returns the event payload.
func (e StageAdvancedEvent) EventData() map[string]any {
	return map[string]any{
		"previousStage": string(e.PreviousStage),
		"newStage":      string(e.NewStage),
		"qualityScore":  e.QualityScore,
	}
}

// NewStageAdvancedEvent creates a StageAdvancedEvent.
func NewStageAdvancedEvent(guestID string, previous, next Stage, qualityScore int) StageAdvancedEvent {
	return StageAdvancedEvent{
		BaseEvent:     ddd.NewBaseEvent(guestID),
		PreviousStage: previous,
		NewStage:      next,
		QualityScore:  qualityScore,
	}
}

// JourneyCompletedEvent is emitted when a guest finishes a full journey.
type JourneyCompletedEvent struct {
	ddd.BaseEvent
	JourneyID    string
	FinalScore   int
	DurationDays int
	JourneyCount int
}

// EventName returns the event name.
func (e JourneyCompletedEvent) EventName() string { return EventNameJourneyCompleted }

// EventData returns the event payload.
func (e JourneyCompletedEvent) EventData() map[string]any {
	return map[string]any{
		"journeyId":    e.JourneyID,
		"finalScore":   e.FinalScore,
		"durationDays": e.DurationDays,
		"journeyCount": e.JourneyCount,
	}
}

// NewJourneyCompletedEvent creates a JourneyCompletedEvent.
func NewJourneyCompletedEvent(guestID, journeyID string, finalScore, durationDays, journeyCount int) JourneyCompletedEvent {
	return JourneyCompletedEvent{
		BaseEvent:    ddd.NewBaseEvent(guestID),
		JourneyID:    journeyID,
		FinalScore:   finalScore,
		DurationDays: durationDays,
		JourneyCount: journeyCount,
	}
}

// LoyaltyUpgradedEvent is emitted when a guest's loyalty tier increases.
// Downgrades never emit this event.
type LoyaltyUpgradedEvent struct {
	ddd.BaseEvent
	From LoyaltyLevel
	To   LoyaltyLevel
}

// EventName returns the event name.
func (e LoyaltyUpgradedEvent) EventName() string { return EventNameLoyaltyUpgraded }

// EventData returns the event payload.
func (e LoyaltyUpgradedEvent) EventData() map[string]any {
	return map[string]any{"from": string(e.From), "to": string(e.To)}
}

// NewLoyaltyUpgradedEvent creates a LoyaltyUpgradedEvent.
func NewLoyaltyUpgradedEvent(guestID string, from, to LoyaltyLevel) LoyaltyUpgradedEvent {
	return LoyaltyUpgradedEvent{
		BaseEvent: ddd.NewBaseEvent(guestID),
		From:      from,
		To:        to,
	}
}

// FulfillmentTrackedEvent is emitted when a fulfillment event is recorded
// against the guest's current stage.
type FulfillmentTrackedEvent struct {
	ddd.BaseEvent
	Kind   EventKind
	Stage  Stage
	Impact int
}

// EventName returns the event name.
func (e FulfillmentTrackedEvent) EventName() string { return EventNameFulfillmentTracked }

// EventData returns the event payload.
func (e FulfillmentTrackedEvent) EventData() map[string]any {
	return map[string]any{
		"kind":   string(e.Kind),
		"stage":  string(e.Stage),
		"impact": e.Impact,
	}
}

// NewFulfillmentTrackedEvent creates a FulfillmentTrackedEvent.
func NewFulfillmentTrackedEvent(guestID string, kind EventKind, stage Stage, impact int) FulfillmentTrackedEvent {
	return FulfillmentTrackedEvent{
		BaseEvent: ddd.NewBaseEvent(guestID),
		Kind:      kind,
		Stage:     stage,
		Impact:    impact,
	}
}

// PreferencesUpdatedEvent is emitted when the guest's stay preferences
// change.
type PreferencesUpdatedEvent struct {
	ddd.BaseEvent
}

// EventName returns the event name.
func (e PreferencesUpdatedEvent) EventName() string { return EventNamePreferencesUpdated }

// EventData returns the event payload.
func (e PreferencesUpdatedEvent) EventData() map[string]any { return map[string]any{} }

// NewPreferencesUpdatedEvent creates a PreferencesUpdatedEvent.
func NewPreferencesUpdatedEvent(guestID string) PreferencesUpdatedEvent {
	return PreferencesUpdatedEvent{BaseEvent: ddd.NewBaseEvent(guestID)}
}

// GuestDeletedEvent is emitted when a guest is soft-deleted.
type GuestDeletedEvent struct {
	ddd.BaseEvent
}

// EventName returns the event name.
func (e GuestDeletedEvent) EventName() string { return EventNameGuestDeleted }

// EventData returns the event payload.
func (e GuestDeletedEvent) EventData() map[string]any { return map[string]any{} }

// NewGuestDeletedEvent creates a GuestDeletedEvent.
func NewGuestDeletedEvent(guestID string) GuestDeletedEvent {
	return GuestDeletedEvent{BaseEvent: ddd.NewBaseEvent(guestID)}
}
