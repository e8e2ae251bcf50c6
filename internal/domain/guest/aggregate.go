package guest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stayflow-tech/stayflow/internal/domain/ddd"
)

// PersonalInfo holds the guest's identity details. Name and phone are
// required; everything else is optional.
type PersonalInfo struct {
	Name   string
	Phone  string
	Email  string
	IDCard string
	Avatar string
}

// Validate checks the required personal-info fields.
func (p PersonalInfo) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(p.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	return nil
}

// BusinessMetrics accumulates the guest's commercial history across all
// journeys.
type BusinessMetrics struct {
	LifetimeValue  float64
	TotalBookings  int
	TotalNights    int
	AverageRating  float64 // 0..5, 0 means never rated
	RatingCount    int
	ReferralCount  int
	FirstVisitDate time.Time // zero if the guest has never checked in
	LastVisitDate  time.Time
}

// PriceRange is the guest's preferred nightly price band.
type PriceRange struct {
	Min float64
	Max float64
}

// Preferences holds the guest's stay preferences.
type Preferences struct {
	RoomTypes               []string
	PriceRange              PriceRange
	SpecialRequests         []string
	CommunicationPreference string
}

// Tags holds the derived classifications for a guest.
type Tags struct {
	LoyaltyLevel     LoyaltyLevel
	RiskLevel        RiskLevel
	ValueSegment     ValueSegment
	BehaviorPatterns []string
}

// CompletedStageRecord captures a stage the guest has exited, with the
// fulfillment events observed while the stage was active. It is immutable
// once created.
type CompletedStageRecord struct {
	Stage        Stage
	StartedAt    time.Time
	EndedAt      time.Time
	DurationMs   int64
	QualityScore int // 0..100
	Events       []Event
}

// Guest is the aggregate root for the fulfillment bounded context. It owns
// the guest's journey state, metric accumulation and derived tags, and
// enforces the stage state machine. All invariant-checked mutation goes
// through its operations.
type Guest struct {
	ddd.AggregateRoot

	personalInfo PersonalInfo

	// Current journey
	currentStage     Stage
	stageStartedAt   time.Time
	journeyID        string
	journeyStartedAt time.Time
	stageEvents      []Event
	completedStages  []CompletedStageRecord

	metrics     BusinessMetrics
	preferences Preferences
	tags        Tags

	journeyCount     int
	totalJourneyDays int

	deleted   bool
	createdAt time.Time
	updatedAt time.Time
}

// NewGuest creates a new Guest aggregate at the start of the awareness
// stage. The id is assigned by the caller.
func NewGuest(id string, info PersonalInfo) (*Guest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	g := &Guest{
		AggregateRoot:    ddd.NewAggregateRoot(id),
		personalInfo:     info,
		currentStage:     StageAwareness,
		stageStartedAt:   now,
		journeyID:        newJourneyID(),
		journeyStartedAt: now,
		stageEvents:      make([]Event, 0, 8),
		completedStages:  make([]CompletedStageRecord, 0, 5),
		tags: Tags{
			LoyaltyLevel: LoyaltyBronze,
			RiskLevel:    RiskLow,
			ValueSegment: SegmentBudget,
		},
		createdAt: now,
		updatedAt: now,
	}

	g.Record(NewGuestRegisteredEvent(id, info.Name, info.Phone))
	return g, nil
}

func newJourneyID() string {
	return "jrn-" + uuid.NewString()
}

// PersonalInfo returns the guest's identity details.
func (g *Guest) PersonalInfo() PersonalInfo {
	return g.personalInfo
}

// CurrentStage returns the stage the guest is currently in.
func (g *Guest) CurrentStage() Stage {
	return g.currentStage
}

// StageStartedAt returns when the current stage began.
func (g *Guest) StageStartedAt() time.Time {
	return g.stageStartedAt
}

// JourneyID returns the identifier of the in-progress journey.
func (g *Guest) JourneyID() string {
	return g.journeyID
}

// JourneyStartedAt returns when the in-progress journey began.
func (g *Guest) JourneyStartedAt() time.Time {
	return g.journeyStartedAt
}

// CompletedStages returns a copy of the stage history for the current
// journey only.
func (g *Guest) CompletedStages() []CompletedStageRecord {
	out := make([]CompletedStageRecord, len(g.completedStages))
	copy(out, g.completedStages)
	return out
}

// StageEvents returns a copy of the events buffered against the current
// stage.
func (g *Guest) StageEvents() []Event {
	out := make([]Event, len(g.stageEvents))
	copy(out, g.stageEvents)
	return out
}

// Metrics returns the accumulated business metrics.
func (g *Guest) Metrics() BusinessMetrics {
	return g.metrics
}

// Preferences returns the guest's stay preferences.
func (g *Guest) Preferences() Preferences {
	return g.preferences
}

// Tags returns the derived classifications.
func (g *Guest) Tags() Tags {
	return g.tags
}

// JourneyCount returns how many journeys the guest has completed.
func (g *Guest) JourneyCount() int {
	return g.journeyCount
}

// TotalJourneyDays returns the cumulative days spent across completed
// journeys.
func (g *Guest) TotalJourneyDays() int {
	return g.totalJourneyDays
}

// IsDeleted returns true if the guest has been soft-deleted.
func (g *Guest) IsDeleted() bool {
	return g.deleted
}

// CreatedAt returns when the guest was registered.
func (g *Guest) CreatedAt() time.Time {
	return g.createdAt
}

// UpdatedAt returns when the guest was last mutated.
func (g *Guest) UpdatedAt() time.Time {
	return g.updatedAt
}

// EventFactory returns a factory building fulfillment events for the
// guest's current journey.
func (g *Guest) EventFactory(source EventSource) *EventFactory {
	return NewEventFactory(g.ID(), g.journeyID, source)
}

// AdvanceToStage moves the guest to the next journey stage. The target
// must be the exact ordinal successor of the current stage; any other
// target fails with ErrInvalidTransition and leaves the aggregate
// untouched. The exited stage is closed into a CompletedStageRecord that
// owns the events buffered while it was active.
func (g *Guest) AdvanceToStage(target Stage) error {
	if g.deleted {
		return ErrGuestDeleted
	}
	if !g.currentStage.CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot advance from %s to %s", ErrInvalidTransition, g.currentStage, target)
	}

	now := time.Now()
	record := g.closeCurrentStage(now)
	g.completedStages = append(g.completedStages, record)

	previous := g.currentStage
	g.currentStage = target
	g.stageStartedAt = now
	g.stageEvents = make([]Event, 0, 8)
	g.updatedAt = now

	g.BumpVersion()
	g.Record(NewStageAdvancedEvent(g.ID(), previous, target, record.QualityScore))

	return nil
}

// closeCurrentStage builds the immutable record for the stage being
// exited. Quality starts from a neutral baseline of 50 and is adjusted by
// the summed impact of the stage's events, clamped to [0,100].
func (g *Guest) closeCurrentStage(now time.Time) CompletedStageRecord {
	events := make([]Event, len(g.stageEvents))
	copy(events, g.stageEvents)

	return CompletedStageRecord{
		Stage:        g.currentStage,
		StartedAt:    g.stageStartedAt,
		EndedAt:      now,
		DurationMs:   now.Sub(g.stageStartedAt).Milliseconds(),
		QualityScore: stageQuality(events),
		Events:       events,
	}
}

// stageQualityBaseline is the neutral quality score for a stage with no
// recorded events.
const stageQualityBaseline = 50

func stageQuality(events []Event) int {
	score := stageQualityBaseline
	for _, e := range events {
		score += e.Impact()
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// CompleteJourney finishes the current journey. It is only valid from the
// terminal feedback stage. The journey's elapsed days are added to the
// guest's cumulative total, the stage history is cleared and the guest is
// reset to awareness for a fresh journey. History of the completed
// journey is the persistence/export layer's responsibility.
func (g *Guest) CompleteJourney(finalScore int) error {
	if g.deleted {
		return ErrGuestDeleted
	}
	if !g.currentStage.IsTerminal() {
		return fmt.Errorf("%w: current stage is %s", ErrJourneyNotReady, g.currentStage)
	}

	now := time.Now()
	days := int(now.Sub(g.journeyStartedAt).Hours() / 24)
	if days < 0 {
		days = 0
	}

	completedJourneyID := g.journeyID
	g.journeyCount++
	g.totalJourneyDays += days

	g.currentStage = StageAwareness
	g.stageStartedAt = now
	g.journeyID = newJourneyID()
	g.journeyStartedAt = now
	g.stageEvents = make([]Event, 0, 8)
	g.completedStages = make([]CompletedStageRecord, 0, 5)
	g.updatedAt = now

	g.BumpVersion()
	g.Record(NewJourneyCompletedEvent(g.ID(), completedJourneyID, finalScore, days, g.journeyCount))

	return nil
}

// RecordFulfillment buffers a fulfillment event against the current
// stage, applies its metric effects, and refreshes the derived tags. The
// event's stage must match the guest's current stage.
func (g *Guest) RecordFulfillment(evt Event) error {
	if g.deleted {
		return ErrGuestDeleted
	}
	if evt.GuestID() != "" && evt.GuestID() != g.ID() {
		return fmt.Errorf("%w: event belongs to guest %s", ErrValidation, evt.GuestID())
	}
	if evt.Stage() != g.currentStage {
		return fmt.Errorf("%w: event stage %s, current stage %s", ErrEventStageMismatch, evt.Stage(), g.currentStage)
	}

	g.stageEvents = append(g.stageEvents, evt)
	g.applyMetricEffects(evt)
	g.refreshTags(time.Now())

	g.updatedAt = time.Now()
	g.BumpVersion()
	g.Record(NewFulfillmentTrackedEvent(g.ID(), evt.Kind(), evt.Stage(), evt.Impact()))

	return nil
}

// applyMetricEffects folds the commercial side effects of well-known
// event kinds into the business metrics.
func (g *Guest) applyMetricEffects(evt Event) {
	payload := evt.Payload()

	switch evt.Kind() {
	case EventPaymentSucceeded:
		if amount, ok := payloadFloat(payload, "amount"); ok {
			g.metrics.LifetimeValue += amount
		}
	case EventBookingConfirmed:
		g.metrics.TotalBookings++
		if nights, ok := payloadInt(payload, "nights"); ok {
			g.metrics.TotalNights += nights
		}
	case EventCheckIn:
		now := evt.OccurredAt()
		if g.metrics.FirstVisitDate.IsZero() {
			g.metrics.FirstVisitDate = now
		}
		g.metrics.LastVisitDate = now
	case EventReviewSubmitted:
		if rating, ok := payloadFloat(payload, "rating"); ok {
			total := g.metrics.AverageRating*float64(g.metrics.RatingCount) + rating
			g.metrics.RatingCount++
			g.metrics.AverageRating = total / float64(g.metrics.RatingCount)
		}
	case EventReferralMade:
		g.metrics.ReferralCount++
	}
}

func payloadFloat(payload map[string]any, key string) (float64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func payloadInt(payload map[string]any, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// refreshTags recomputes the derived classifications from the current
// metrics and journey history. A loyalty tier increase emits a
// LoyaltyUpgradedEvent; downgrades are a deliberate business decision and
// never happen through this path.
func (g *Guest) refreshTags(now time.Time) {
	level := CalculateLevel(g.metrics, now)
	if level.Tier() > g.tags.LoyaltyLevel.Tier() {
		g.Record(NewLoyaltyUpgradedEvent(g.ID(), g.tags.LoyaltyLevel, level))
		g.tags.LoyaltyLevel = level
	}

	g.tags.RiskLevel = classifyRisk(g.metrics.AverageRating, g.journeyNegativeImpact())
	g.tags.ValueSegment = classifySegment(g.metrics.LifetimeValue, g.metrics.TotalBookings)
}

// journeyNegativeImpact sums the negative impact observed in the current
// journey, both in the open stage buffer and in completed stages.
func (g *Guest) journeyNegativeImpact() int {
	sum := 0
	for _, e := range g.stageEvents {
		if e.IsNegativeImpact() {
			sum += e.Impact()
		}
	}
	for _, rec := range g.completedStages {
		for _, e := range rec.Events {
			if e.IsNegativeImpact() {
				sum += e.Impact()
			}
		}
	}
	return sum
}

// UpdatePreferences replaces the guest's stay preferences.
func (g *Guest) UpdatePreferences(p Preferences) error {
	if g.deleted {
		return ErrGuestDeleted
	}

	g.preferences = p
	g.updatedAt = time.Now()
	g.BumpVersion()
	g.Record(NewPreferencesUpdatedEvent(g.ID()))

	return nil
}

// AddBehaviorPattern tags the guest with an observed behavior pattern.
// Adding a pattern that is already present is a no-op.
func (g *Guest) AddBehaviorPattern(pattern string) error {
	if g.deleted {
		return ErrGuestDeleted
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return fmt.Errorf("%w: behavior pattern is empty", ErrValidation)
	}
	for _, existing := range g.tags.BehaviorPatterns {
		if existing == pattern {
			return nil
		}
	}

	g.tags.BehaviorPatterns = append(g.tags.BehaviorPatterns, pattern)
	g.updatedAt = time.Now()
	g.BumpVersion()

	return nil
}

// MarkDeleted soft-deletes the guest. The record is preserved for audit
// and history queries; finders treat the guest as absent.
func (g *Guest) MarkDeleted() error {
	if g.deleted {
		return ErrGuestDeleted
	}

	g.deleted = true
	g.updatedAt = time.Now()
	g.BumpVersion()
	g.Record(NewGuestDeletedEvent(g.ID()))

	return nil
}

// Invariant provides information about aggregate invariant validation.
type Invariant struct {
	Name    string
	Valid   bool
	Message string
}

// ValidateInvariants checks the aggregate invariants and reports each one.
func (g *Guest) ValidateInvariants() []Invariant {
	invariants := make([]Invariant, 0, 6)

	invariants = append(invariants, Invariant{
		Name:    "NonEmptyID",
		Valid:   g.ID() != "",
		Message: conditionalMessage(g.ID() == "", "guest ID is empty"),
	})
	invariants = append(invariants, Invariant{
		Name:    "ValidStage",
		Valid:   g.currentStage.IsValid(),
		Message: conditionalMessage(!g.currentStage.IsValid(), "current stage is invalid: "+string(g.currentStage)),
	})
	invariants = append(invariants, Invariant{
		Name:    "PositiveVersion",
		Valid:   g.Version() >= 1,
		Message: conditionalMessage(g.Version() < 1, "version must be at least 1"),
	})

	validInfo := g.personalInfo.Validate() == nil
	invariants = append(invariants, Invariant{
		Name:    "ValidPersonalInfo",
		Valid:   validInfo,
		Message: conditionalMessage(!validInfo, "name and phone are required"),
	})

	ratingOK := g.metrics.AverageRating >= 0 && g.metrics.AverageRating <= 5
	invariants = append(invariants, Invariant{
		Name:    "RatingInRange",
		Valid:   ratingOK,
		Message: conditionalMessage(!ratingOK, "average rating outside [0,5]"),
	})

	historyOK := len(g.completedStages) <= g.currentStage.Ordinal() || g.currentStage == StageAwareness
	invariants = append(invariants, Invariant{
		Name:    "HistoryMatchesStage",
		Valid:   historyOK,
		Message: conditionalMessage(!historyOK, "more completed stages than the current stage allows"),
	})

	return invariants
}

// IsValid checks if all aggregate invariants hold.
func (g *Guest) IsValid() bool {
	for _, inv := range g.ValidateInvariants() {
		if !inv.Valid {
			return false
		}
	}
	return true
}

func conditionalMessage(condition bool, msg string) string {
	if condition {
		return msg
	}
	return ""
}

// Summary is a compact view of a guest for display.
type Summary struct {
	ID            string
	Name          string
	Phone         string
	Stage         Stage
	LoyaltyLevel  LoyaltyLevel
	RiskLevel     RiskLevel
	ValueSegment  ValueSegment
	LifetimeValue float64
	JourneyCount  int
	Version       int64
	Deleted       bool
	UpdatedAt     time.Time
}

// Summary returns a compact view of the guest.
func (g *Guest) Summary() Summary {
	return Summary{
		ID:            g.ID(),
		Name:          g.personalInfo.Name,
		Phone:         g.personalInfo.Phone,
		Stage:         g.currentStage,
		LoyaltyLevel:  g.tags.LoyaltyLevel,
		RiskLevel:     g.tags.RiskLevel,
		ValueSegment:  g.tags.ValueSegment,
		LifetimeValue: g.metrics.LifetimeValue,
		JourneyCount:  g.journeyCount,
		Version:       g.Version(),
		Deleted:       g.deleted,
		UpdatedAt:     g.updatedAt,
	}
}
