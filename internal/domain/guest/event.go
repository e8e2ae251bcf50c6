package guest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a well-known kind of fulfillment event. Kinds are
// grouped by the journey stage they normally occur in.
type EventKind string

// Awareness-stage event kinds.
const (
	EventAdView           EventKind = "ad_view"
	EventPageView         EventKind = "page_view"
	EventSearch           EventKind = "search"
	EventSocialMention    EventKind = "social_mention"
	EventReferralReceived EventKind = "referral_received"
	EventCampaignClick    EventKind = "campaign_click"
)

// Evaluation-stage event kinds.
const (
	EventRoomViewed    EventKind = "room_viewed"
	EventPriceChecked  EventKind = "price_checked"
	EventComparison    EventKind = "comparison"
	EventReviewRead    EventKind = "review_read"
	EventInquiry       EventKind = "inquiry"
	EventWishlistAdded EventKind = "wishlist_added"
	EventChatStarted   EventKind = "chat_started"
)

// Booking-stage event kinds.
const (
	EventBookingStarted   EventKind = "booking_started"
	EventBookingConfirmed EventKind = "booking_confirmed"
	EventPaymentSucceeded EventKind = "payment_succeeded"
	EventPaymentFailed    EventKind = "payment_failed"
	EventBookingModified  EventKind = "booking_modified"
	EventBookingCancelled EventKind = "booking_cancelled"
	EventUpsellAccepted   EventKind = "upsell_accepted"
)

// Experiencing-stage event kinds.
const (
	EventCheckIn          EventKind = "check_in"
	EventRoomUpgraded     EventKind = "room_upgraded"
	EventServiceRequest   EventKind = "service_request"
	EventComplaint        EventKind = "complaint"
	EventAmenityUsed      EventKind = "amenity_used"
	EventStaffInteraction EventKind = "staff_interaction"
	EventIssueResolved    EventKind = "issue_resolved"
	EventCheckOut         EventKind = "check_out"
)

// Feedback-stage event kinds.
const (
	EventReviewSubmitted     EventKind = "review_submitted"
	EventSurveyCompleted     EventKind = "survey_completed"
	EventReferralMade        EventKind = "referral_made"
	EventComplaintFollowup   EventKind = "complaint_followup"
	EventRepeatBookingIntent EventKind = "repeat_booking_intent"
)

// kindStages maps each event kind to the stage it belongs to.
func kindStages() map[EventKind]Stage {
	return map[EventKind]Stage{
		EventAdView:           StageAwareness,
		EventPageView:         StageAwareness,
		EventSearch:           StageAwareness,
		EventSocialMention:    StageAwareness,
		EventReferralReceived: StageAwareness,
		EventCampaignClick:    StageAwareness,

		EventRoomViewed:    StageEvaluation,
		EventPriceChecked:  StageEvaluation,
		EventComparison:    StageEvaluation,
		EventReviewRead:    StageEvaluation,
		EventInquiry:       StageEvaluation,
		EventWishlistAdded: StageEvaluation,
		EventChatStarted:   StageEvaluation,

		EventBookingStarted:   StageBooking,
		EventBookingConfirmed: StageBooking,
		EventPaymentSucceeded: StageBooking,
		EventPaymentFailed:    StageBooking,
		EventBookingModified:  StageBooking,
		EventBookingCancelled: StageBooking,
		EventUpsellAccepted:   StageBooking,

		EventCheckIn:          StageExperiencing,
		EventRoomUpgraded:     StageExperiencing,
		EventServiceRequest:   StageExperiencing,
		EventComplaint:        StageExperiencing,
		EventAmenityUsed:      StageExperiencing,
		EventStaffInteraction: StageExperiencing,
		EventIssueResolved:    StageExperiencing,
		EventCheckOut:         StageExperiencing,

		EventReviewSubmitted:     StageFeedback,
		EventSurveyCompleted:     StageFeedback,
		EventReferralMade:        StageFeedback,
		EventComplaintFollowup:   StageFeedback,
		EventRepeatBookingIntent: StageFeedback,
	}
}

// Stage returns the journey stage this kind of event belongs to.
func (k EventKind) Stage() (Stage, bool) {
	stage, ok := kindStages()[k]
	return stage, ok
}

// IsValid returns true if the kind is in the fixed catalog.
func (k EventKind) IsValid() bool {
	_, ok := kindStages()[k]
	return ok
}

// String returns the string representation of the kind.
func (k EventKind) String() string {
	return string(k)
}

// ParseEventKind parses a string into a catalog event kind.
func ParseEventKind(s string) (EventKind, error) {
	kind := EventKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid event kind: %q", s)
	}
	return kind, nil
}

// SourceKind identifies what initiated a fulfillment event.
type SourceKind string

const (
	SourceUser       SourceKind = "user"
	SourceSystem     SourceKind = "system"
	SourceStaff      SourceKind = "staff"
	SourceMobileApp  SourceKind = "mobile_app"
	SourceWebApp     SourceKind = "web_app"
	SourceAPI        SourceKind = "api"
	SourceThirdParty SourceKind = "third_party"
)

// IsValid returns true if the source kind is known.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceUser, SourceSystem, SourceStaff, SourceMobileApp,
		SourceWebApp, SourceAPI, SourceThirdParty:
		return true
	}
	return false
}

// ParseSourceKind parses a string into a source kind.
func ParseSourceKind(s string) (SourceKind, error) {
	kind := SourceKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid source kind: %q", s)
	}
	return kind, nil
}

// EventSource identifies the origin of a fulfillment event.
type EventSource struct {
	Kind       SourceKind
	Identifier string
}

// EventMetadata carries request context captured with an event.
type EventMetadata struct {
	UserAgent  string
	IP         string
	SessionID  string
	DeviceType string
	Location   string
	Referrer   string
	Campaign   string
}

// Severity classifies the magnitude of an event's impact.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Impact bounds. Impact is clamped to this range at construction and never
// mutated afterward.
const (
	MinImpact = -100
	MaxImpact = 100
)

// Severity boundaries on absolute impact.
const (
	criticalImpact = 20
	highImpact     = 15
	mediumImpact   = 5
)

// Event is an immutable record of something that happened during a
// guest's fulfillment journey, scored by its impact on guest sentiment.
type Event struct {
	id         string
	journeyID  string
	guestID    string
	kind       EventKind
	stage      Stage
	occurredAt time.Time
	payload    map[string]any
	impact     int
	source     EventSource
	metadata   EventMetadata
}

// NewEvent constructs a fulfillment event. Impact is clamped to
// [MinImpact, MaxImpact]; the payload is copied.
func NewEvent(guestID, journeyID string, kind EventKind, stage Stage, impact int, payload map[string]any, source EventSource, metadata EventMetadata) Event {
	copied := make(map[string]any, len(payload))
	for k, v := range payload {
		copied[k] = v
	}
	return Event{
		id:         newEventID(),
		journeyID:  journeyID,
		guestID:    guestID,
		kind:       kind,
		stage:      stage,
		occurredAt: time.Now(),
		payload:    copied,
		impact:     clampImpact(impact),
		source:     source,
		metadata:   metadata,
	}
}

// newEventID derives a unique event ID from the current time plus a
// random suffix, keeping IDs roughly sortable by creation time.
func newEventID() string {
	return fmt.Sprintf("evt-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func clampImpact(impact int) int {
	if impact < MinImpact {
		return MinImpact
	}
	if impact > MaxImpact {
		return MaxImpact
	}
	return impact
}

// ID returns the unique event ID.
func (e Event) ID() string { return e.id }

// JourneyID returns the journey the event was observed in.
func (e Event) JourneyID() string { return e.journeyID }

// GuestID returns the guest the event belongs to.
func (e Event) GuestID() string { return e.guestID }

// Kind returns the event kind.
func (e Event) Kind() EventKind { return e.kind }

// Stage returns the journey stage the event was recorded against.
func (e Event) Stage() Stage { return e.stage }

// OccurredAt returns when the event occurred.
func (e Event) OccurredAt() time.Time { return e.occurredAt }

// Impact returns the signed impact score in [-100,100].
func (e Event) Impact() int { return e.impact }

// Source returns the origin of the event.
func (e Event) Source() EventSource { return e.source }

// Metadata returns the request context captured with the event.
func (e Event) Metadata() EventMetadata { return e.metadata }

// Payload returns a copy of the free-form payload.
func (e Event) Payload() map[string]any {
	copied := make(map[string]any, len(e.payload))
	for k, v := range e.payload {
		copied[k] = v
	}
	return copied
}

// IsPositiveImpact returns true for events with positive impact.
func (e Event) IsPositiveImpact() bool { return e.impact > 0 }

// IsNegativeImpact returns true for events with negative impact.
func (e Event) IsNegativeImpact() bool { return e.impact < 0 }

// SeverityLevel classifies the absolute impact of the event.
func (e Event) SeverityLevel() Severity {
	abs := e.impact
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= criticalImpact:
		return SeverityCritical
	case abs >= highImpact:
		return SeverityHigh
	case abs >= mediumImpact:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// IsUserInitiated returns true if the event came directly from the guest.
func (e Event) IsUserInitiated() bool {
	return e.source.Kind == SourceUser || e.source.Kind == SourceMobileApp
}

// Fixed impact values for factory recipes. These are policy, not
// incidental; tests pin them.
const (
	pageViewImpact         = 1
	roomViewedImpact       = 2
	inquiryImpact          = 3
	wishlistImpact         = 4
	bookingConfirmedImpact = 15
	paymentSuccessImpact   = 20
	paymentFailedImpact    = -10
	bookingCancelledImpact = -15
	checkInImpact          = 5
	issueResolvedImpact    = 8
	referralMadeImpact     = 10
	complaintFloor         = -20
)

// EventFactory builds well-known event shapes for a single guest journey,
// stamping each event with the factory's source.
type EventFactory struct {
	guestID   string
	journeyID string
	source    EventSource
	metadata  EventMetadata
}

// NewEventFactory creates a factory for the given guest and journey.
func NewEventFactory(guestID, journeyID string, source EventSource) *EventFactory {
	return &EventFactory{
		guestID:   guestID,
		journeyID: journeyID,
		source:    source,
	}
}

// WithMetadata returns a copy of the factory that stamps events with the
// given request metadata.
func (f *EventFactory) WithMetadata(md EventMetadata) *EventFactory {
	clone := *f
	clone.metadata = md
	return &clone
}

func (f *EventFactory) build(kind EventKind, stage Stage, impact int, payload map[string]any) Event {
	return NewEvent(f.guestID, f.journeyID, kind, stage, impact, payload, f.source, f.metadata)
}

// PageView records a website page view during awareness.
func (f *EventFactory) PageView(url string) Event {
	return f.build(EventPageView, StageAwareness, pageViewImpact, map[string]any{"url": url})
}

// CampaignClick records a marketing campaign click during awareness.
func (f *EventFactory) CampaignClick(campaign string) Event {
	return f.build(EventCampaignClick, StageAwareness, pageViewImpact, map[string]any{"campaign": campaign})
}

// RoomViewed records a room detail view during evaluation.
func (f *EventFactory) RoomViewed(roomType string, price float64) Event {
	return f.build(EventRoomViewed, StageEvaluation, roomViewedImpact, map[string]any{
		"roomType": roomType,
		"price":    price,
	})
}

// Inquiry records a direct question to the hotel during evaluation.
func (f *EventFactory) Inquiry(topic string) Event {
	return f.build(EventInquiry, StageEvaluation, inquiryImpact, map[string]any{"topic": topic})
}

// WishlistAdded records a room saved to the guest's wishlist.
func (f *EventFactory) WishlistAdded(roomType string) Event {
	return f.build(EventWishlistAdded, StageEvaluation, wishlistImpact, map[string]any{"roomType": roomType})
}

// BookingConfirmed records a confirmed reservation.
func (f *EventFactory) BookingConfirmed(price float64, nights int) Event {
	return f.build(EventBookingConfirmed, StageBooking, bookingConfirmedImpact, map[string]any{
		"price":  price,
		"nights": nights,
	})
}

// PaymentSucceeded records a successful payment. Payment success is very
// positive: fixed impact +20.
func (f *EventFactory) PaymentSucceeded(amount float64) Event {
	return f.build(EventPaymentSucceeded, StageBooking, paymentSuccessImpact, map[string]any{"amount": amount})
}

// PaymentFailed records a failed payment attempt.
func (f *EventFactory) PaymentFailed(amount float64, reason string) Event {
	return f.build(EventPaymentFailed, StageBooking, paymentFailedImpact, map[string]any{
		"amount": amount,
		"reason": reason,
	})
}

// BookingCancelled records a cancelled reservation.
func (f *EventFactory) BookingCancelled(reason string) Event {
	return f.build(EventBookingCancelled, StageBooking, bookingCancelledImpact, map[string]any{"reason": reason})
}

// CheckIn records the guest arriving on site.
func (f *EventFactory) CheckIn(roomNumber string) Event {
	return f.build(EventCheckIn, StageExperiencing, checkInImpact, map[string]any{"roomNumber": roomNumber})
}

// CheckOut records the guest leaving.
func (f *EventFactory) CheckOut(roomNumber string) Event {
	return f.build(EventCheckOut, StageExperiencing, checkInImpact, map[string]any{"roomNumber": roomNumber})
}

// Complaint records a guest complaint with severity on a 1-10 scale.
// Impact is max(-20, -2*severity): a severity-3 complaint scores -6, and
// anything from severity 10 up is capped at -20.
func (f *EventFactory) Complaint(issueType string, severity int) Event {
	impact := -2 * severity
	if impact < complaintFloor {
		impact = complaintFloor
	}
	if impact > 0 {
		impact = 0
	}
	return f.build(EventComplaint, StageExperiencing, impact, map[string]any{
		"issueType": issueType,
		"severity":  severity,
	})
}

// IssueResolved records staff resolving a reported issue.
func (f *EventFactory) IssueResolved(issueType string) Event {
	return f.build(EventIssueResolved, StageExperiencing, issueResolvedImpact, map[string]any{"issueType": issueType})
}

// ReviewSubmitted records a post-stay review with a 1-5 star rating.
// Impact is (rating-3)*5: one star scores -10, three stars are neutral
// and five stars score +10.
func (f *EventFactory) ReviewSubmitted(rating int) Event {
	return f.build(EventReviewSubmitted, StageFeedback, (rating-3)*5, map[string]any{"rating": rating})
}

// ReferralMade records the guest referring someone new.
func (f *EventFactory) ReferralMade(channel string) Event {
	return f.build(EventReferralMade, StageFeedback, referralMadeImpact, map[string]any{"channel": channel})
}

// Custom builds an event outside the fixed recipes. The kind must be in
// the catalog; the stage defaults to the kind's natural stage.
func (f *EventFactory) Custom(kind EventKind, impact int, payload map[string]any) (Event, error) {
	stage, ok := kind.Stage()
	if !ok {
		return Event{}, fmt.Errorf("unknown event kind: %q", kind)
	}
	return f.build(kind, stage, impact, payload), nil
}
