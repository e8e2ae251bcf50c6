package journey

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// CompleteJourneyInput represents the input for the CompleteJourney use case.
type CompleteJourneyInput struct {
	GuestID    string
	FinalScore int
	Actor      string
}

// Validate validates the CompleteJourneyInput.
func (i *CompleteJourneyInput) Validate() error {
	v := NewValidationError()

	v.Add(ValidateGuestID(i.GuestID))
	if i.FinalScore < 0 || i.FinalScore > 100 {
		v.AddMessage("final score must be between 0 and 100")
	}
	if i.Actor != "" {
		v.Add(ValidateSafeString(i.Actor, "actor", MaxFieldLength))
	}

	return v.ToError()
}

// CompleteJourneyOutput represents the output of the CompleteJourney use case.
type CompleteJourneyOutput struct {
	GuestID          string
	CompletedJourney string
	NewJourneyID     string
	JourneyCount     int
	Guest            *guest.Guest
}

// CompleteJourneyUseCase implements the complete journey use case. The
// guest must be in the terminal stage; completion archives the journey and
// resets the guest to awareness for the next visit.
type CompleteJourneyUseCase struct {
	guestRepo      guest.Repository
	eventPublisher guest.EventPublisher
	machineService *guest.JourneyMachineService
	retryCfg       RetryConfig
	logger         *slog.Logger
}

// NewCompleteJourneyUseCase creates a new CompleteJourneyUseCase.
func NewCompleteJourneyUseCase(
	guestRepo guest.Repository,
	eventPublisher guest.EventPublisher,
	machineService *guest.JourneyMachineService,
	retryCfg RetryConfig,
) *CompleteJourneyUseCase {
	return &CompleteJourneyUseCase{
		guestRepo:      guestRepo,
		eventPublisher: eventPublisher,
		machineService: machineService,
		retryCfg:       retryCfg,
		logger:         slog.Default().With("usecase", "complete_journey"),
	}
}

// Execute executes the complete journey use case.
func (uc *CompleteJourneyUseCase) Execute(ctx context.Context, input CompleteJourneyInput) (*CompleteJourneyOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	return executeWithConflictRetry(ctx, uc.retryCfg, func(ctx context.Context) (*CompleteJourneyOutput, error) {
		g, err := uc.guestRepo.FindByID(ctx, input.GuestID)
		if err != nil {
			return nil, fmt.Errorf("failed to find guest: %w", err)
		}

		completedJourney := g.JourneyID()
		if err := uc.machineService.ValidateAndTransition(g, guest.EventCompleteJourney, input.FinalScore); err != nil {
			return nil, err
		}

		if err := uc.guestRepo.Save(ctx, g); err != nil {
			return nil, fmt.Errorf("failed to save guest: %w", err)
		}

		publishUncommitted(ctx, uc.eventPublisher, uc.logger, g)

		uc.logger.Info("journey completed",
			"guest_id", g.ID(),
			"journey_id", completedJourney,
			"final_score", input.FinalScore,
			"journey_count", g.JourneyCount(),
			"actor", input.Actor)

		return &CompleteJourneyOutput{
			GuestID:          g.ID(),
			CompletedJourney: completedJourney,
			NewJourneyID:     g.JourneyID(),
			JourneyCount:     g.JourneyCount(),
			Guest:            g,
		}, nil
	})
}
