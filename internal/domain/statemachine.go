package domain

import "fmt"

// Event represents an external fact delivered to the settlement state machine
type Event string

const (
	// Gateway confirmation outcomes (card path)
	EventGatewayApproved  Event = "GATEWAY_APPROVED"
	EventGatewayPending   Event = "GATEWAY_PENDING"
	EventGatewayCancelled Event = "GATEWAY_CANCELLED"
	EventGatewayFailed    Event = "GATEWAY_FAILED" // transport failure, not a provider verdict

	// Validator outcomes (transfer path)
	EventValidatorApproved Event = "VALIDATOR_APPROVED"
	EventValidatorRejected Event = "VALIDATOR_REJECTED" // definitively not a valid receipt
	EventValidatorReview   Event = "VALIDATOR_REVIEW"   // inconclusive, park for a human

	// Admin overrides
	EventAdminApprove Event = "ADMIN_APPROVE"
	EventAdminReject  Event = "ADMIN_REJECT"

	// Housekeeping
	EventExpire Event = "EXPIRE" // abandoned card payment aged past the TTL
)

// Effect is the side effect a committed transition requires
type Effect int

const (
	EffectNone Effect = iota
	EffectCredit
)

// Transition is the single legality point for the settlement state machine.
// It maps (current state, event) to (next state, required effect).
//
// Terminal states absorb provider and housekeeping events as idempotent
// no-ops: duplicate gateway callbacks and validator redeliveries must
// short-circuit here, before any credit is attempted. Admin events outside
// their legal source states are errors, never silent no-ops, so the operator
// sees that the override did not take.
func Transition(current ContributionState, ev Event) (ContributionState, Effect, error) {
	if current.Terminal() {
		switch ev {
		case EventAdminApprove, EventAdminReject:
			return current, EffectNone, fmt.Errorf("%w: %s on terminal state %s", ErrIllegalTransition, ev, current)
		default:
			// idempotent redelivery
			return current, EffectNone, nil
		}
	}

	switch current {
	case StatePending:
		switch ev {
		case EventGatewayApproved:
			return StateApproved, EffectCredit, nil
		case EventGatewayPending:
			return StatePending, EffectNone, nil
		case EventGatewayCancelled, EventGatewayFailed:
			return StateRejected, EffectNone, nil
		case EventAdminReject:
			return StateRejected, EffectNone, nil
		case EventExpire:
			return StateRejected, EffectNone, nil
		}

	case StateProcessing:
		switch ev {
		case EventValidatorApproved:
			return StateApproved, EffectCredit, nil
		case EventValidatorRejected:
			return StateRejected, EffectNone, nil
		case EventValidatorReview:
			return StateManualReview, EffectNone, nil
		case EventAdminReject:
			return StateRejected, EffectNone, nil
		}

	case StateManualReview:
		switch ev {
		case EventAdminApprove:
			return StateApproved, EffectCredit, nil
		case EventAdminReject:
			return StateRejected, EffectNone, nil
		}
	}

	return current, EffectNone, fmt.Errorf("%w: %s on state %s", ErrIllegalTransition, ev, current)
}
