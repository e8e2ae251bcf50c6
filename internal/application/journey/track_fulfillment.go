package journey

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// TrackFulfillmentInput represents the input for the TrackFulfillment use
// case. Which recipe fields apply depends on Kind; unused fields are
// ignored.
type TrackFulfillmentInput struct {
	GuestID string
	Kind    guest.EventKind
	Source  guest.EventSource
	// Optional request context stamped onto the event.
	Metadata guest.EventMetadata

	// Recipe parameters.
	URL        string
	Campaign   string
	RoomType   string
	Topic      string
	Reason     string
	RoomNumber string
	IssueType  string
	Channel    string
	Price      float64
	Amount     float64
	Nights     int
	Severity   int
	Rating     int

	// Custom carries impact and payload for kinds outside the fixed
	// recipes. It is only consulted when no recipe matches the kind.
	CustomImpact  int
	CustomPayload map[string]any
}

// Validate validates the TrackFulfillmentInput.
func (i *TrackFulfillmentInput) Validate() error {
	v := NewValidationError()

	v.Add(ValidateGuestID(i.GuestID))
	if !i.Kind.IsValid() {
		v.AddMessage(fmt.Sprintf("invalid event kind: %q", i.Kind))
	}
	if !i.Source.Kind.IsValid() {
		v.AddMessage(fmt.Sprintf("invalid source kind: %q", i.Source.Kind))
	}
	if i.Kind == guest.EventComplaint && (i.Severity < 1 || i.Severity > 10) {
		v.AddMessage("complaint severity must be between 1 and 10")
	}
	if i.Kind == guest.EventReviewSubmitted && (i.Rating < 1 || i.Rating > 5) {
		v.AddMessage("review rating must be between 1 and 5")
	}
	if len(i.CustomPayload) > MaxPayloadKeys {
		v.AddMessage(fmt.Sprintf("payload too large (max %d keys)", MaxPayloadKeys))
	}

	return v.ToError()
}

// TrackFulfillmentOutput represents the output of the TrackFulfillment use
// case.
type TrackFulfillmentOutput struct {
	GuestID      string
	EventID      string
	Kind         guest.EventKind
	Impact       int
	Severity     guest.Severity
	Stage        guest.Stage
	LoyaltyLevel guest.LoyaltyLevel
	Guest        *guest.Guest
}

// TrackFulfillmentUseCase implements the track fulfillment use case.
type TrackFulfillmentUseCase struct {
	guestRepo      guest.Repository
	eventPublisher guest.EventPublisher
	retryCfg       RetryConfig
	logger         *slog.Logger
}

// NewTrackFulfillmentUseCase creates a new TrackFulfillmentUseCase.
func NewTrackFulfillmentUseCase(
	guestRepo guest.Repository,
	eventPublisher guest.EventPublisher,
	retryCfg RetryConfig,
) *TrackFulfillmentUseCase {
	return &TrackFulfillmentUseCase{
		guestRepo:      guestRepo,
		eventPublisher: eventPublisher,
		retryCfg:       retryCfg,
		logger:         slog.Default().With("usecase", "track_fulfillment"),
	}
}

// Execute executes the track fulfillment use case.
func (uc *TrackFulfillmentUseCase) Execute(ctx context.Context, input TrackFulfillmentInput) (*TrackFulfillmentOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	return executeWithConflictRetry(ctx, uc.retryCfg, func(ctx context.Context) (*TrackFulfillmentOutput, error) {
		g, err := uc.guestRepo.FindByID(ctx, input.GuestID)
		if err != nil {
			return nil, fmt.Errorf("failed to find guest: %w", err)
		}

		factory := g.EventFactory(input.Source)
		if input.Metadata != (guest.EventMetadata{}) {
			factory = factory.WithMetadata(input.Metadata)
		}

		evt, err := buildEvent(factory, input)
		if err != nil {
			return nil, err
		}

		if err := g.RecordFulfillment(evt); err != nil {
			return nil, err
		}

		if err := uc.guestRepo.Save(ctx, g); err != nil {
			return nil, fmt.Errorf("failed to save guest: %w", err)
		}

		publishUncommitted(ctx, uc.eventPublisher, uc.logger, g)

		uc.logger.Info("fulfillment tracked",
			"guest_id", g.ID(),
			"kind", evt.Kind(),
			"stage", evt.Stage(),
			"impact", evt.Impact())

		return &TrackFulfillmentOutput{
			GuestID:      g.ID(),
			EventID:      evt.ID(),
			Kind:         evt.Kind(),
			Impact:       evt.Impact(),
			Severity:     evt.SeverityLevel(),
			Stage:        evt.Stage(),
			LoyaltyLevel: g.Tags().LoyaltyLevel,
			Guest:        g,
		}, nil
	})
}

// buildEvent dispatches the input to the matching factory recipe.
func buildEvent(factory *guest.EventFactory, input TrackFulfillmentInput) (guest.Event, error) {
	switch input.Kind {
	case guest.EventPageView:
		return factory.PageView(input.URL), nil
	case guest.EventCampaignClick:
		return factory.CampaignClick(input.Campaign), nil
	case guest.EventRoomViewed:
		return factory.RoomViewed(input.RoomType, input.Price), nil
	case guest.EventInquiry:
		return factory.Inquiry(input.Topic), nil
	case guest.EventWishlistAdded:
		return factory.WishlistAdded(input.RoomType), nil
	case guest.EventBookingConfirmed:
		return factory.BookingConfirmed(input.Price, input.Nights), nil
	case guest.EventPaymentSucceeded:
		return factory.PaymentSucceeded(input.Amount), nil
	case guest.EventPaymentFailed:
		return factory.PaymentFailed(input.Amount, input.Reason), nil
	case guest.EventBookingCancelled:
		return factory.BookingCancelled(input.Reason), nil
	case guest.EventCheckIn:
		return factory.CheckIn(input.RoomNumber), nil
	case guest.EventCheckOut:
		return factory.CheckOut(input.RoomNumber), nil
	case guest.EventComplaint:
		return factory.Complaint(input.IssueType, input.Severity), nil
	case guest.EventIssueResolved:
		return factory.IssueResolved(input.IssueType), nil
	case guest.EventReviewSubmitted:
		return factory.ReviewSubmitted(input.Rating), nil
	case guest.EventReferralMade:
		return factory.ReferralMade(input.Channel), nil
	default:
		return factory.Custom(input.Kind, input.CustomImpact, input.CustomPayload)
	}
}
