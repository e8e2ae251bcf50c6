// Package guest provides the core domain model for the guest fulfillment
// journey.
package guest

import "errors"

// Domain errors for guest operations.
var (
	// ErrGuestNotFound indicates a guest was not found.
	ErrGuestNotFound = errors.New("guest not found")

	// ErrInvalidTransition indicates a stage transition that is not the
	// exact ordinal successor of the current stage.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrJourneyNotReady indicates journey completion was attempted
	// before the guest reached the terminal stage.
	ErrJourneyNotReady = errors.New("journey is not ready for completion")

	// ErrValidation indicates malformed personal info or another
	// required-field violation.
	ErrValidation = errors.New("guest validation failed")

	// ErrVersionConflict indicates a concurrent write was detected; the
	// caller must reload the aggregate and retry.
	ErrVersionConflict = errors.New("guest version conflict")

	// ErrGuestDeleted indicates an operation on a soft-deleted guest.
	ErrGuestDeleted = errors.New("guest is deleted")

	// ErrGuestAlreadyExists indicates an insert for an existing identity.
	ErrGuestAlreadyExists = errors.New("guest already exists")

	// ErrNilGuest indicates a nil guest was passed to a repository.
	ErrNilGuest = errors.New("guest cannot be nil")

	// ErrEventStageMismatch indicates a fulfillment event recorded
	// against a stage the guest is not currently in.
	ErrEventStageMismatch = errors.New("event stage does not match current stage")
)
