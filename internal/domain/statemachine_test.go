package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name       string
		current    ContributionState
		event      Event
		wantState  ContributionState
		wantEffect Effect
		wantErr    bool
	}{
		// Card path
		{
			name:       "PENDING + gateway approved credits and approves",
			current:    StatePending,
			event:      EventGatewayApproved,
			wantState:  StateApproved,
			wantEffect: EffectCredit,
		},
		{
			name:       "PENDING + gateway pending stays pending for retry",
			current:    StatePending,
			event:      EventGatewayPending,
			wantState:  StatePending,
			wantEffect: EffectNone,
		},
		{
			name:       "PENDING + gateway cancelled rejects",
			current:    StatePending,
			event:      EventGatewayCancelled,
			wantState:  StateRejected,
			wantEffect: EffectNone,
		},
		{
			name:       "PENDING + gateway transport failure rejects",
			current:    StatePending,
			event:      EventGatewayFailed,
			wantState:  StateRejected,
			wantEffect: EffectNone,
		},
		{
			name:       "PENDING + expiry rejects",
			current:    StatePending,
			event:      EventExpire,
			wantState:  StateRejected,
			wantEffect: EffectNone,
		},
		{
			name:       "PENDING + admin reject override rejects",
			current:    StatePending,
			event:      EventAdminReject,
			wantState:  StateRejected,
			wantEffect: EffectNone,
		},
		{
			name:    "PENDING + admin approve is illegal",
			current: StatePending,
			event:   EventAdminApprove,
			wantErr: true,
		},
		{
			name:    "PENDING + validator event is illegal",
			current: StatePending,
			event:   EventValidatorApproved,
			wantErr: true,
		},

		// Transfer path
		{
			name:       "PROCESSING + validator approved credits and approves",
			current:    StateProcessing,
			event:      EventValidatorApproved,
			wantState:  StateApproved,
			wantEffect: EffectCredit,
		},
		{
			name:       "PROCESSING + validator rejected rejects",
			current:    StateProcessing,
			event:      EventValidatorRejected,
			wantState:  StateRejected,
			wantEffect: EffectNone,
		},
		{
			name:       "PROCESSING + inconclusive verdict parks for review",
			current:    StateProcessing,
			event:      EventValidatorReview,
			wantState:  StateManualReview,
			wantEffect: EffectNone,
		},
		{
			name:       "PROCESSING + admin reject override rejects",
			current:    StateProcessing,
			event:      EventAdminReject,
			wantState:  StateRejected,
			wantEffect: EffectNone,
		},
		{
			name:    "PROCESSING + gateway event is illegal",
			current: StateProcessing,
			event:   EventGatewayApproved,
			wantErr: true,
		},

		// Manual review
		{
			name:       "MANUAL_REVIEW + admin approve credits and approves",
			current:    StateManualReview,
			event:      EventAdminApprove,
			wantState:  StateApproved,
			wantEffect: EffectCredit,
		},
		{
			name:       "MANUAL_REVIEW + admin reject rejects",
			current:    StateManualReview,
			event:      EventAdminReject,
			wantState:  StateRejected,
			wantEffect: EffectNone,
		},
		{
			name:    "MANUAL_REVIEW + validator event is illegal",
			current: StateManualReview,
			event:   EventValidatorReview,
			wantErr: true,
		},

		// Terminal states absorb provider redelivery without effects
		{
			name:       "APPROVED + duplicate gateway approval is a no-op",
			current:    StateApproved,
			event:      EventGatewayApproved,
			wantState:  StateApproved,
			wantEffect: EffectNone,
		},
		{
			name:       "APPROVED + late validator verdict is a no-op",
			current:    StateApproved,
			event:      EventValidatorApproved,
			wantState:  StateApproved,
			wantEffect: EffectNone,
		},
		{
			name:       "REJECTED + late gateway approval is a no-op",
			current:    StateRejected,
			event:      EventGatewayApproved,
			wantState:  StateRejected,
			wantEffect: EffectNone,
		},
		{
			name:       "REJECTED + expiry sweep is a no-op",
			current:    StateRejected,
			event:      EventExpire,
			wantState:  StateRejected,
			wantEffect: EffectNone,
		},
		{
			name:    "APPROVED + admin approve is illegal",
			current: StateApproved,
			event:   EventAdminApprove,
			wantErr: true,
		},
		{
			name:    "REJECTED + admin reject is illegal",
			current: StateRejected,
			event:   EventAdminReject,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effect, err := Transition(tt.current, tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIllegalTransition)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantState, next)
			assert.Equal(t, tt.wantEffect, effect)
		})
	}
}

// A duplicate provider callback must never produce a credit effect,
// whatever the terminal state and event combination.
func TestTransition_TerminalStatesNeverCredit(t *testing.T) {
	providerEvents := []Event{
		EventGatewayApproved, EventGatewayPending, EventGatewayCancelled,
		EventGatewayFailed, EventValidatorApproved, EventValidatorRejected,
		EventValidatorReview, EventExpire,
	}

	for _, state := range []ContributionState{StateApproved, StateRejected} {
		for _, ev := range providerEvents {
			next, effect, err := Transition(state, ev)
			assert.NoError(t, err)
			assert.Equal(t, state, next)
			assert.Equal(t, EffectNone, effect)
		}
	}
}
