package reconciliation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/mfigueredo/giftwell-backend/internal/domain"
	"github.com/mfigueredo/giftwell-backend/internal/usecase/settlement"
)

// Service is the admin reconciliation surface: the read and override
// operations a human operator uses to resolve contributions the automated
// pipeline could not confidently settle. Legality of every override is
// still decided by the settlement state machine, not here.
type Service struct {
	Contributions domain.ContributionRepository
	Settlement    *settlement.Service
}

// NewService creates a new reconciliation Service instance
func NewService(contributions domain.ContributionRepository, settlementSvc *settlement.Service) *Service {
	return &Service{
		Contributions: contributions,
		Settlement:    settlementSvc,
	}
}

// List retrieves contributions, optionally filtered by state
func (s *Service) List(ctx context.Context, state domain.ContributionState) ([]*domain.Contribution, error) {
	return s.Contributions.ListByState(ctx, state)
}

// Approve approves a parked contribution, optionally overriding the amount
// credited (e.g. the operator read a different amount off the receipt).
// Only legal from MANUAL_REVIEW.
func (s *Service) Approve(ctx context.Context, contributionID uuid.UUID, overrideAmount *decimal.Decimal) (*domain.CreditResult, error) {
	return s.Settlement.Approve(ctx, contributionID, overrideAmount)
}

// Reject rejects a contribution. Legal from MANUAL_REVIEW, or from
// PENDING/PROCESSING as an operator override.
func (s *Service) Reject(ctx context.Context, contributionID uuid.UUID, reason string) error {
	return s.Settlement.Reject(ctx, contributionID, reason)
}

// Delete permanently removes a contribution record. Deleting an APPROVED
// contribution also reverses its credit to the gift in the same atomic
// unit, so the collected amount keeps matching the sum of approved rows.
func (s *Service) Delete(ctx context.Context, contributionID uuid.UUID) error {
	return s.Contributions.DeleteWithReversal(ctx, contributionID)
}

// ReceiptDetail returns the contribution with its stored receipt location
// and extracted fields for manual judgment
func (s *Service) ReceiptDetail(ctx context.Context, contributionID uuid.UUID) (*domain.Contribution, error) {
	return s.Contributions.GetByID(ctx, contributionID)
}
