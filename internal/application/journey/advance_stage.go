package journey

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// AdvanceStageInput represents the input for the AdvanceStage use case.
type AdvanceStageInput struct {
	GuestID string
	Target  guest.Stage
	Actor   string
}

// Validate validates the AdvanceStageInput.
func (i *AdvanceStageInput) Validate() error {
	v := NewValidationError()

	v.Add(ValidateGuestID(i.GuestID))
	if !i.Target.IsValid() {
		v.AddMessage(fmt.Sprintf("invalid target stage: %q", i.Target))
	}
	if i.Actor != "" {
		v.Add(ValidateSafeString(i.Actor, "actor", MaxFieldLength))
	}

	return v.ToError()
}

// AdvanceStageOutput represents the output of the AdvanceStage use case.
type AdvanceStageOutput struct {
	GuestID       string
	PreviousStage guest.Stage
	CurrentStage  guest.Stage
	QualityScore  int
	Guest         *guest.Guest
}

// AdvanceStageUseCase implements the advance stage use case. Transitions
// run through the journey state machine; a version conflict on save causes
// the whole load-validate-save cycle to be retried.
type AdvanceStageUseCase struct {
	guestRepo      guest.Repository
	eventPublisher guest.EventPublisher
	machineService *guest.JourneyMachineService
	retryCfg       RetryConfig
	logger         *slog.Logger
}

// NewAdvanceStageUseCase creates a new AdvanceStageUseCase.
func NewAdvanceStageUseCase(
	guestRepo guest.Repository,
	eventPublisher guest.EventPublisher,
	machineService *guest.JourneyMachineService,
	retryCfg RetryConfig,
) *AdvanceStageUseCase {
	return &AdvanceStageUseCase{
		guestRepo:      guestRepo,
		eventPublisher: eventPublisher,
		machineService: machineService,
		retryCfg:       retryCfg,
		logger:         slog.Default().With("usecase", "advance_stage"),
	}
}

// Execute executes the advance stage use case.
func (uc *AdvanceStageUseCase) Execute(ctx context.Context, input AdvanceStageInput) (*AdvanceStageOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	event, err := guest.AdvanceEventFor(input.Target)
	if err != nil {
		return nil, err
	}

	return executeWithConflictRetry(ctx, uc.retryCfg, func(ctx context.Context) (*AdvanceStageOutput, error) {
		g, err := uc.guestRepo.FindByID(ctx, input.GuestID)
		if err != nil {
			return nil, fmt.Errorf("failed to find guest: %w", err)
		}

		previous := g.CurrentStage()
		if err := uc.machineService.ValidateAndTransition(g, event, 0); err != nil {
			return nil, err
		}

		if err := uc.guestRepo.Save(ctx, g); err != nil {
			return nil, fmt.Errorf("failed to save guest: %w", err)
		}

		publishUncommitted(ctx, uc.eventPublisher, uc.logger, g)

		history := g.CompletedStages()
		quality := 0
		if len(history) > 0 {
			quality = history[len(history)-1].QualityScore
		}

		uc.logger.Info("stage advanced",
			"guest_id", g.ID(),
			"from", previous,
			"to", g.CurrentStage(),
			"quality_score", quality,
			"actor", input.Actor)

		return &AdvanceStageOutput{
			GuestID:       g.ID(),
			PreviousStage: previous,
			CurrentStage:  g.CurrentStage(),
			QualityScore:  quality,
			Guest:         g,
		}, nil
	})
}
