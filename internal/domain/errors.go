package domain

import "errors"

// Sentinel errors for the settlement core.
// Adapters wrap these with %w so callers can classify with errors.Is.
var (
	// ErrGiftNotFound indicates the referenced gift does not exist
	ErrGiftNotFound = errors.New("gift not found")

	// ErrContributionNotFound indicates the referenced contribution does not exist
	ErrContributionNotFound = errors.New("contribution not found")

	// ErrNoFundingTarget indicates the gift has neither a price nor a funding target
	ErrNoFundingTarget = errors.New("gift has no valid price")

	// ErrGiftCompleted indicates the gift is already fully funded
	ErrGiftCompleted = errors.New("gift is already completed")

	// ErrExceedsRemaining indicates a contribution or credit would push the
	// collected amount past the funding target
	ErrExceedsRemaining = errors.New("exceeds remaining balance")

	// ErrIllegalTransition indicates an event is not legal from the
	// contribution's current state
	ErrIllegalTransition = errors.New("illegal state transition")
)
