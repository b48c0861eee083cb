package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GiftRepository defines the interface for gift persistence operations
type GiftRepository interface {
	// GetByID retrieves a gift by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Gift, error)

	// Create creates a new gift
	Create(ctx context.Context, gift *Gift) error

	// Update persists mutable gift fields (crowdfund initialization).
	// The collected amount is never written through this method; balance
	// mutation goes through ContributionRepository.ApproveAndCredit.
	Update(ctx context.Context, gift *Gift) error

	// List retrieves all gifts
	List(ctx context.Context) ([]*Gift, error)
}

// CreditResult reports the outcome of an atomic approve-and-credit
type CreditResult struct {
	NewCollectedAmount decimal.Decimal
	TargetAmount       decimal.Decimal
	Completed          bool
}

// ContributionRepository defines the interface for contribution persistence
// operations, including the two operations that must execute atomically
// against the gift row and the contribution row together.
type ContributionRepository interface {
	// Create creates a new contribution
	Create(ctx context.Context, c *Contribution) error

	// GetByID retrieves a contribution by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Contribution, error)

	// GetByClientTxID retrieves a contribution by its client correlation id,
	// used for idempotent lookup on provider callbacks
	GetByClientTxID(ctx context.Context, clientTxID string) (*Contribution, error)

	// ListByState retrieves contributions in a given state.
	// An empty state returns all contributions.
	ListByState(ctx context.Context, state ContributionState) ([]*Contribution, error)

	// ListPendingBefore retrieves PENDING contributions created before the
	// cutoff, used by the expiry sweeper
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*Contribution, error)

	// Update persists mutable contribution fields (state, provider ids,
	// extracted receipt fields, review reason, timestamps)
	Update(ctx context.Context, c *Contribution) error

	// ApproveAndCredit atomically flips the contribution to APPROVED and
	// credits its gift: read the current collected amount under a row lock,
	// add the contribution's amount (or overrideAmount when non-nil), write
	// back, flip the gift to COMPLETED when the target is reached, and stamp
	// approved_at — all in one transaction, so two concurrent approvals for
	// the same gift cannot both read the same stale balance.
	//
	// Fails with ErrExceedsRemaining (wrapped) if the credit would push the
	// collected amount past the target, leaving both rows unchanged.
	// Calling it on an already-APPROVED contribution is a no-op that returns
	// the current balance.
	ApproveAndCredit(ctx context.Context, contributionID uuid.UUID, overrideAmount *decimal.Decimal) (*CreditResult, error)

	// DeleteWithReversal permanently removes the contribution. When the
	// contribution is APPROVED, its amount is debited from the gift in the
	// same transaction, flipping COMPLETED back to AVAILABLE when the
	// balance drops below the target.
	DeleteWithReversal(ctx context.Context, contributionID uuid.UUID) error
}
