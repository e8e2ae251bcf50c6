// Package guest provides the core domain model for the guest fulfillment
// journey. This is the bounded context for tracking guests through the
// stages of a hotel stay with DDD principles.
package guest

import "fmt"

// Stage represents a stage of the guest fulfillment journey.
type Stage string

const (
	// StageAwareness is the initial stage: the guest has discovered the hotel.
	StageAwareness Stage = "awareness"

	// StageEvaluation means the guest is comparing rooms, prices and reviews.
	StageEvaluation Stage = "evaluation"

	// StageBooking means the guest is reserving and paying.
	StageBooking Stage = "booking"

	// StageExperiencing means the guest is on site, between check-in and
	// check-out.
	StageExperiencing Stage = "experiencing"

	// StageFeedback is the terminal stage: post-stay reviews and referrals.
	StageFeedback Stage = "feedback"
)

// AllStages returns the journey stages in fixed order.
func AllStages() []Stage {
	return []Stage{
		StageAwareness,
		StageEvaluation,
		StageBooking,
		StageExperiencing,
		StageFeedback,
	}
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// Ordinal returns the fixed position of the stage in the journey order,
// or -1 for an invalid stage.
func (s Stage) Ordinal() int {
	switch s {
	case StageAwareness:
		return 0
	case StageEvaluation:
		return 1
	case StageBooking:
		return 2
	case StageExperiencing:
		return 3
	case StageFeedback:
		return 4
	default:
		return -1
	}
}

// IsValid returns true if the stage is one of the five journey stages.
func (s Stage) IsValid() bool {
	return s.Ordinal() >= 0
}

// IsTerminal returns true for the last stage of the journey.
func (s Stage) IsTerminal() bool {
	return s == StageFeedback
}

// Next returns the stage one position ahead in the fixed order.
// It fails on the terminal stage and on invalid stages.
func (s Stage) Next() (Stage, error) {
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, string(s))
	}
	if s.IsTerminal() {
		return "", fmt.Errorf("%w: %s is the terminal stage", ErrInvalidTransition, s)
	}
	return AllStages()[s.Ordinal()+1], nil
}

// CanTransitionTo returns true only if target is the exact ordinal
// successor of this stage. Skipping ahead, going backward and self-loops
// are all invalid.
func (s Stage) CanTransitionTo(target Stage) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	return target.Ordinal() == s.Ordinal()+1
}

// ParseStage parses a string into a Stage.
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.IsValid() {
		return "", fmt.Errorf("invalid stage: %q", s)
	}
	return stage, nil
}

// Description returns a human-readable description of the stage.
func (s Stage) Description() string {
	switch s {
	case StageAwareness:
		return "Guest has become aware of the hotel"
	case StageEvaluation:
		return "Guest is evaluating rooms, prices and reviews"
	case StageBooking:
		return "Guest is booking and paying"
	case StageExperiencing:
		return "Guest is staying at the hotel"
	case StageFeedback:
		return "Guest is giving post-stay feedback"
	default:
		return "Unknown stage"
	}
}
