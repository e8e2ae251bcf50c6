package guest

import (
	"fmt"
	"time"

	"github.com/stayflow-tech/stayflow/internal/domain/ddd"
)

// EventRecord carries the persisted fields of a fulfillment event for
// reconstruction.
type EventRecord struct {
	ID         string
	JourneyID  string
	GuestID    string
	Kind       EventKind
	Stage      Stage
	OccurredAt time.Time
	Payload    map[string]any
	Impact     int
	Source     EventSource
	Metadata   EventMetadata
}

// ReconstructEvent restores a fulfillment event from persisted state,
// keeping its original ID and timestamp.
func ReconstructEvent(rec EventRecord) Event {
	payload := make(map[string]any, len(rec.Payload))
	for k, v := range rec.Payload {
		payload[k] = v
	}
	return Event{
		id:         rec.ID,
		journeyID:  rec.JourneyID,
		guestID:    rec.GuestID,
		kind:       rec.Kind,
		stage:      rec.Stage,
		occurredAt: rec.OccurredAt,
		payload:    payload,
		impact:     clampImpact(rec.Impact),
		source:     rec.Source,
		metadata:   rec.Metadata,
	}
}

// ReconstructionParams carries the persisted state of a guest aggregate.
type ReconstructionParams struct {
	ID               string
	Version          int64
	PersonalInfo     PersonalInfo
	CurrentStage     Stage
	StageStartedAt   time.Time
	JourneyID        string
	JourneyStartedAt time.Time
	StageEvents      []Event
	CompletedStages  []CompletedStageRecord
	Metrics          BusinessMetrics
	Preferences      Preferences
	Tags             Tags
	JourneyCount     int
	TotalJourneyDays int
	Deleted          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReconstructGuest restores a guest aggregate from persisted state without
// triggering domain events. The restored aggregate's base version is
// pinned to the persisted version for optimistic concurrency checks.
func ReconstructGuest(p ReconstructionParams) (*Guest, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	if !p.CurrentStage.IsValid() {
		return nil, fmt.Errorf("%w: invalid stage %q", ErrValidation, p.CurrentStage)
	}
	if p.Version < 1 {
		return nil, fmt.Errorf("%w: version must be at least 1", ErrValidation)
	}

	stageEvents := make([]Event, len(p.StageEvents))
	copy(stageEvents, p.StageEvents)
	completed := make([]CompletedStageRecord, len(p.CompletedStages))
	copy(completed, p.CompletedStages)

	return &Guest{
		AggregateRoot:    ddd.RehydrateAggregateRoot(p.ID, p.Version),
		personalInfo:     p.PersonalInfo,
		currentStage:     p.CurrentStage,
		stageStartedAt:   p.StageStartedAt,
		journeyID:        p.JourneyID,
		journeyStartedAt: p.JourneyStartedAt,
		stageEvents:      stageEvents,
		completedStages:  completed,
		metrics:          p.Metrics,
		preferences:      p.Preferences,
		tags:             p.Tags,
		journeyCount:     p.JourneyCount,
		totalJourneyDays: p.TotalJourneyDays,
		deleted:          p.Deleted,
		createdAt:        p.CreatedAt,
		updatedAt:        p.UpdatedAt,
	}, nil
}
