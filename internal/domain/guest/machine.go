package guest

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// JourneyContext is the context passed to the journey state machine.
type JourneyContext struct {
	Guest *Guest
	Actor string
}

// Event names for the journey state machine.
const (
	EventAdvanceEvaluation   statekit.EventType = "ADVANCE_EVALUATION"
	EventAdvanceBooking      statekit.EventType = "ADVANCE_BOOKING"
	EventAdvanceExperiencing statekit.EventType = "ADVANCE_EXPERIENCING"
	EventAdvanceFeedback     statekit.EventType = "ADVANCE_FEEDBACK"
	EventCompleteJourney     statekit.EventType = "COMPLETE_JOURNEY"
)

// Guard names for the journey state machine.
const (
	GuardGuestActive statekit.GuardType = "guestActive"
)

// State IDs for the journey state machine.
var (
	StateIDAwareness    statekit.StateID = statekit.StateID(StageAwareness)
	StateIDEvaluation   statekit.StateID = statekit.StateID(StageEvaluation)
	StateIDBooking      statekit.StateID = statekit.StateID(StageBooking)
	StateIDExperiencing statekit.StateID = statekit.StateID(StageExperiencing)
	StateIDFeedback     statekit.StateID = statekit.StateID(StageFeedback)
)

// JourneyMachine wraps the Statekit state machine for guest journeys. The
// journey is cyclic: completing it from feedback returns to awareness for
// the next journey, so the machine has no final state.
type JourneyMachine struct {
	interpreter *statekit.Interpreter[JourneyContext]
}

// NewJourneyMachine creates a new state machine for guest journeys.
func NewJourneyMachine() (*JourneyMachine, error) {
	machine, err := statekit.NewMachine[JourneyContext]("guest-journey").
		WithInitial(StateIDAwareness).
		WithGuard(GuardGuestActive, guardGuestActive).
		State(StateIDAwareness).
		On(EventAdvanceEvaluation).Target(StateIDEvaluation).Guard(GuardGuestActive).
		Done().
		State(StateIDEvaluation).
		On(EventAdvanceBooking).Target(StateIDBooking).Guard(GuardGuestActive).
		Done().
		State(StateIDBooking).
		On(EventAdvanceExperiencing).Target(StateIDExperiencing).Guard(GuardGuestActive).
		Done().
		State(StateIDExperiencing).
		On(EventAdvanceFeedback).Target(StateIDFeedback).Guard(GuardGuestActive).
		Done().
		State(StateIDFeedback).
		On(EventCompleteJourney).Target(StateIDAwareness).Guard(GuardGuestActive).
		Done().
		Build()

	if err != nil {
		return nil, fmt.Errorf("failed to build journey machine: %w", err)
	}

	return &JourneyMachine{interpreter: statekit.NewInterpreter(machine)}, nil
}

// Guards take context by value (not pointer).

func guardGuestActive(ctx JourneyContext, _ statekit.Event) bool {
	if ctx.Guest == nil {
		return false
	}
	return !ctx.Guest.IsDeleted()
}

// Start starts the state machine interpreter.
func (m *JourneyMachine) Start() {
	m.interpreter.Start()
}

// Send sends an event to the interpreter.
func (m *JourneyMachine) Send(event statekit.EventType) error {
	if m.interpreter == nil {
		return fmt.Errorf("interpreter not started")
	}
	m.interpreter.Send(statekit.Event{Type: event})
	return nil
}

// CurrentState returns the current state.
func (m *JourneyMachine) CurrentState() statekit.StateID {
	if m.interpreter == nil {
		return ""
	}
	return m.interpreter.State().Value
}

// AdvanceEventFor maps a target stage to the machine event that reaches it.
func AdvanceEventFor(target Stage) (statekit.EventType, error) {
	switch target {
	case StageEvaluation:
		return EventAdvanceEvaluation, nil
	case StageBooking:
		return EventAdvanceBooking, nil
	case StageExperiencing:
		return EventAdvanceExperiencing, nil
	case StageFeedback:
		return EventAdvanceFeedback, nil
	default:
		return "", fmt.Errorf("%w: no advance event targets %s", ErrInvalidTransition, target)
	}
}

// ValidateTransition checks if a journey transition is valid without
// executing it.
func ValidateTransition(g *Guest, event statekit.EventType) error {
	if g == nil {
		return ErrNilGuest
	}
	if g.IsDeleted() {
		return ErrGuestDeleted
	}

	if event == EventCompleteJourney {
		if !g.CurrentStage().IsTerminal() {
			return fmt.Errorf("%w: current stage is %s", ErrJourneyNotReady, g.CurrentStage())
		}
		return nil
	}

	var target Stage
	switch event {
	case EventAdvanceEvaluation:
		target = StageEvaluation
	case EventAdvanceBooking:
		target = StageBooking
	case EventAdvanceExperiencing:
		target = StageExperiencing
	case EventAdvanceFeedback:
		target = StageFeedback
	default:
		return fmt.Errorf("unknown event: %s", event)
	}

	if !g.CurrentStage().CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot transition from %s to %s via %s", ErrInvalidTransition, g.CurrentStage(), target, event)
	}
	return nil
}

// JourneyMachineService provides journey transitions as a domain service.
type JourneyMachineService struct {
	machine *JourneyMachine
}

// NewJourneyMachineService creates a new journey machine service.
func NewJourneyMachineService() (*JourneyMachineService, error) {
	machine, err := NewJourneyMachine()
	if err != nil {
		return nil, err
	}
	return &JourneyMachineService{machine: machine}, nil
}

// ValidateAndTransition validates and executes a journey transition on the
// aggregate.
func (s *JourneyMachineService) ValidateAndTransition(g *Guest, event statekit.EventType, finalScore int) error {
	if err := ValidateTransition(g, event); err != nil {
		return err
	}

	switch event {
	case EventCompleteJourney:
		return g.CompleteJourney(finalScore)
	case EventAdvanceEvaluation:
		return g.AdvanceToStage(StageEvaluation)
	case EventAdvanceBooking:
		return g.AdvanceToStage(StageBooking)
	case EventAdvanceExperiencing:
		return g.AdvanceToStage(StageExperiencing)
	case EventAdvanceFeedback:
		return g.AdvanceToStage(StageFeedback)
	default:
		return fmt.Errorf("unhandled event: %s", event)
	}
}
