package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GiftStatus represents the funding status of a gift
type GiftStatus string

const (
	GiftStatusAvailable GiftStatus = "AVAILABLE"
	GiftStatusCompleted GiftStatus = "COMPLETED"
)

// Gift represents a registry item with a funding target and a running
// collected amount.
//
// Invariant: 0 <= CollectedAmount <= TargetAmount after any committed
// credit, and Status is COMPLETED iff CollectedAmount >= TargetAmount.
// CollectedAmount is only ever mutated through the atomic credit path
// (ContributionRepository.ApproveAndCredit) or its reversal.
type Gift struct {
	ID              uuid.UUID
	Name            string
	Price           decimal.Decimal // fixed price for non-crowdfunded items
	TargetAmount    decimal.Decimal
	CollectedAmount decimal.Decimal
	IsCrowdfund     bool
	Status          GiftStatus
	CreatedAt       time.Time
}

// Validate ensures the gift adheres to domain rules
func (g *Gift) Validate() error {
	if g.Name == "" {
		return errors.New("gift name cannot be empty")
	}
	if g.IsCrowdfund {
		if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
			return errors.New("crowdfunded gift must have a positive target amount")
		}
		if g.CollectedAmount.LessThan(decimal.Zero) {
			return errors.New("collected amount cannot be negative")
		}
		if g.CollectedAmount.GreaterThan(g.TargetAmount) {
			return errors.New("collected amount cannot exceed target amount")
		}
	}
	if g.Status != GiftStatusAvailable && g.Status != GiftStatusCompleted {
		return errors.New("gift status must be AVAILABLE or COMPLETED")
	}
	return nil
}

// Remaining returns the amount still needed to reach the funding target
func (g *Gift) Remaining() decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.CollectedAmount)
	if remaining.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return remaining
}

// EnsureCrowdfund initializes the crowdfunding fields on first contribution
// if the gift was created as a simple fixed-price item. The fixed price
// becomes the funding target.
func (g *Gift) EnsureCrowdfund() error {
	if g.IsCrowdfund {
		return nil
	}
	if g.Price.LessThanOrEqual(decimal.Zero) {
		return ErrNoFundingTarget
	}
	g.IsCrowdfund = true
	g.TargetAmount = g.Price
	g.CollectedAmount = decimal.Zero
	return nil
}

// CanAccept performs the advisory intake check for a requested contribution
// amount against the current balance read. It is race-prone by design: the
// authoritative enforcement is the atomic credit.
func (g *Gift) CanAccept(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("contribution amount must be positive")
	}
	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return ErrNoFundingTarget
	}
	if g.Status == GiftStatusCompleted || g.CollectedAmount.GreaterThanOrEqual(g.TargetAmount) {
		return ErrGiftCompleted
	}
	if amount.GreaterThan(g.Remaining()) {
		return fmt.Errorf("%w: $%s", ErrExceedsRemaining, g.Remaining().String())
	}
	return nil
}

// Credit adds an approved contribution's amount to the collected balance
// and flips the status to COMPLETED when the target is reached.
// Fails without mutating if the credit would overshoot the target.
func (g *Gift) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("credit amount must be positive")
	}
	newCollected := g.CollectedAmount.Add(amount)
	if newCollected.GreaterThan(g.TargetAmount) {
		return fmt.Errorf("%w: $%s", ErrExceedsRemaining, g.Remaining().String())
	}
	g.CollectedAmount = newCollected
	if g.CollectedAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Status = GiftStatusCompleted
	}
	return nil
}

// Debit reverses a previously committed credit, used when an approved
// contribution is deleted by an administrator. Flips COMPLETED back to
// AVAILABLE when the balance drops below the target.
func (g *Gift) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("debit amount must be positive")
	}
	if amount.GreaterThan(g.CollectedAmount) {
		return errors.New("debit amount exceeds collected amount")
	}
	g.CollectedAmount = g.CollectedAmount.Sub(amount)
	if g.CollectedAmount.LessThan(g.TargetAmount) {
		g.Status = GiftStatusAvailable
	}
	return nil
}
