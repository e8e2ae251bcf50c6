package cli

import (
	"fmt"

	"github.com/stayflow-tech/stayflow/internal/application/journey"
	"github.com/stayflow-tech/stayflow/internal/config"
	"github.com/stayflow-tech/stayflow/internal/domain/guest"
	"github.com/stayflow-tech/stayflow/internal/infrastructure/persistence"
)

// app bundles the wired services a command needs.
type app struct {
	repo      guest.Repository
	publisher guest.EventPublisher
	machine   *guest.JourneyMachineService
	retryCfg  journey.RetryConfig

	register    *journey.RegisterGuestUseCase
	advance     *journey.AdvanceStageUseCase
	track       *journey.TrackFulfillmentUseCase
	complete    *journey.CompleteJourneyUseCase
	update      *journey.UpdatePreferencesUseCase
	deleteGuest *journey.DeleteGuestUseCase
	get         *journey.GetGuestUseCase
	list        *journey.ListGuestsUseCase
}

// newApp wires the application services from configuration.
func newApp(cfg *config.Config) (*app, error) {
	var repo guest.Repository
	switch cfg.Storage.Backend {
	case "memory":
		repo = persistence.NewInMemoryGuestRepository()
	default:
		fileRepo, err := persistence.NewFileGuestRepository(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open guest store: %w", err)
		}
		repo = fileRepo
	}

	var publisher guest.EventPublisher
	switch cfg.Events.Publisher {
	case "noop":
		publisher = persistence.NewNoOpEventPublisher()
	default:
		publisher = persistence.NewInMemoryEventPublisher()
	}

	machine, err := guest.NewJourneyMachineService()
	if err != nil {
		return nil, fmt.Errorf("failed to build journey machine: %w", err)
	}

	retryCfg := journey.RetryConfig{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialWait,
		MaxDelay:     cfg.Retry.MaxWait,
	}

	return &app{
		repo:        repo,
		publisher:   publisher,
		machine:     machine,
		retryCfg:    retryCfg,
		register:    journey.NewRegisterGuestUseCase(repo, publisher),
		advance:     journey.NewAdvanceStageUseCase(repo, publisher, machine, retryCfg),
		track:       journey.NewTrackFulfillmentUseCase(repo, publisher, retryCfg),
		complete:    journey.NewCompleteJourneyUseCase(repo, publisher, machine, retryCfg),
		update:      journey.NewUpdatePreferencesUseCase(repo, publisher, retryCfg),
		deleteGuest: journey.NewDeleteGuestUseCase(repo, publisher, retryCfg),
		get:         journey.NewGetGuestUseCase(repo),
		list:        journey.NewListGuestsUseCase(repo),
	}, nil
}

// defaultSource returns the configured source for tracked events.
func defaultSource(cfg *config.Config) guest.EventSource {
	kind, err := guest.ParseSourceKind(cfg.Journey.DefaultSource)
	if err != nil {
		kind = guest.SourceSystem
	}
	return guest.EventSource{Kind: kind}
}
