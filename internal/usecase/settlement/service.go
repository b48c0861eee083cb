package settlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/mfigueredo/giftwell-backend/internal/domain"
)

// ConfirmResult is what the confirmation endpoint reports back to the client
type ConfirmResult struct {
	ContributionID uuid.UUID
	State          domain.ContributionState
	Credit         *domain.CreditResult // non-nil only when this call credited the gift
}

// Service drives the contribution settlement state machine: gateway
// confirmations for the card path, validator verdicts for the transfer
// path, and the admin approve/reject overrides. Every transition's
// legality is decided by domain.Transition; every credit goes through the
// repository's atomic ApproveAndCredit.
type Service struct {
	Contributions domain.ContributionRepository
	Gateway       domain.PaymentGateway
	Policy        domain.ValidationPolicy
}

// NewService creates a new settlement Service instance
func NewService(contributions domain.ContributionRepository, gateway domain.PaymentGateway, policy domain.ValidationPolicy) *Service {
	return &Service{
		Contributions: contributions,
		Gateway:       gateway,
		Policy:        policy,
	}
}

// ConfirmCard resolves a card contribution after the hosted payment flow.
// Logic:
//  1. Look the contribution up by its client correlation id
//  2. Short-circuit if it is already terminal (duplicate callback) —
//     before calling the gateway, so redelivery costs nothing
//  3. Ask the gateway for the final status and map it to an event
//  4. Run the state machine; credit atomically when required
func (s *Service) ConfirmCard(ctx context.Context, clientTxID, providerTxID string) (*ConfirmResult, error) {
	c, err := s.Contributions.GetByClientTxID(ctx, clientTxID)
	if err != nil {
		return nil, err
	}

	if c.State.Terminal() {
		return &ConfirmResult{ContributionID: c.ID, State: c.State}, nil
	}

	var event domain.Event
	var detail string
	conf, err := s.Gateway.Confirm(ctx, providerTxID, clientTxID)
	if err != nil {
		// Transport failure on the synchronous card path: no credit can be
		// safely assumed, so the confirmation resolves as rejected.
		slog.Error("gateway confirm failed", "client_tx_id", clientTxID, "error", err)
		event = domain.EventGatewayFailed
		detail = "gateway confirmation failed: " + err.Error()
	} else {
		event = gatewayEvent(conf.Status)
		detail = conf.StatusDetail
		if conf.ProviderTxID != "" {
			c.ProviderTxID = conf.ProviderTxID
		}
	}

	return s.apply(ctx, c, event, detail, nil)
}

// ApplyVerdict settles a PROCESSING contribution from a validator verdict.
// Called by the validation worker; safe to call again after redelivery.
func (s *Service) ApplyVerdict(ctx context.Context, contributionID uuid.UUID, verdict *domain.ReceiptVerdict) error {
	c, err := s.Contributions.GetByID(ctx, contributionID)
	if err != nil {
		return err
	}
	if c.State.Terminal() {
		return nil
	}

	event, reason := domain.ClassifyVerdict(verdict, c.Amount, s.Policy)

	now := time.Now().UTC()
	c.ValidatedAt = &now
	receipt := verdict.Fields
	c.Receipt = &receipt

	_, err = s.apply(ctx, c, event, reason, nil)
	return err
}

// ApplyValidationFailure parks a PROCESSING contribution for manual review
// after the validator call itself failed (timeout or technical error).
func (s *Service) ApplyValidationFailure(ctx context.Context, contributionID uuid.UUID, cause string) error {
	c, err := s.Contributions.GetByID(ctx, contributionID)
	if err != nil {
		return err
	}
	if c.State.Terminal() {
		return nil
	}

	_, err = s.apply(ctx, c, domain.EventValidatorReview, cause, nil)
	return err
}

// Approve is the admin approval, optionally with a corrected amount.
// Only legal from MANUAL_REVIEW.
func (s *Service) Approve(ctx context.Context, contributionID uuid.UUID, overrideAmount *decimal.Decimal) (*domain.CreditResult, error) {
	c, err := s.Contributions.GetByID(ctx, contributionID)
	if err != nil {
		return nil, err
	}

	res, err := s.apply(ctx, c, domain.EventAdminApprove, "", overrideAmount)
	if err != nil {
		return nil, err
	}
	return res.Credit, nil
}

// Reject is the admin rejection. Legal from MANUAL_REVIEW, and from
// PENDING/PROCESSING as an operator override.
func (s *Service) Reject(ctx context.Context, contributionID uuid.UUID, reason string) error {
	c, err := s.Contributions.GetByID(ctx, contributionID)
	if err != nil {
		return err
	}

	_, err = s.apply(ctx, c, domain.EventAdminReject, reason, nil)
	return err
}

// apply runs one event through the state machine and persists the outcome.
// When the transition demands a credit, the repository performs it
// atomically; a credit that loses the race for the remaining balance parks
// the contribution for admin reconciliation instead of dropping it.
func (s *Service) apply(ctx context.Context, c *domain.Contribution, event domain.Event, detail string, overrideAmount *decimal.Decimal) (*ConfirmResult, error) {
	next, effect, err := domain.Transition(c.State, event)
	if err != nil {
		return nil, err
	}

	if effect == domain.EffectCredit {
		// The atomic credit only writes state, amount and approved_at, so
		// extracted receipt fields and validated_at must land first or an
		// auto-approved transfer loses its receipt detail.
		if c.Receipt != nil || c.ValidatedAt != nil {
			if err := s.Contributions.Update(ctx, c); err != nil {
				return nil, err
			}
		}
		credit, err := s.Contributions.ApproveAndCredit(ctx, c.ID, overrideAmount)
		if err != nil {
			if errors.Is(err, domain.ErrExceedsRemaining) {
				s.parkForReview(ctx, c, err.Error())
			}
			return nil, err
		}
		slog.Info("contribution credited",
			"contribution_id", c.ID,
			"gift_id", c.GiftID,
			"collected", credit.NewCollectedAmount.String(),
			"completed", credit.Completed,
		)
		return &ConfirmResult{ContributionID: c.ID, State: domain.StateApproved, Credit: credit}, nil
	}

	if next != c.State || detail != "" || c.Receipt != nil {
		c.State = next
		if detail != "" {
			c.ReviewReason = detail
		}
		if err := s.Contributions.Update(ctx, c); err != nil {
			return nil, err
		}
	}

	return &ConfirmResult{ContributionID: c.ID, State: next}, nil
}

// parkForReview moves a contribution that lost the balance race to
// MANUAL_REVIEW so an operator can resolve it. Best effort: the original
// error is what the caller surfaces.
func (s *Service) parkForReview(ctx context.Context, c *domain.Contribution, reason string) {
	if c.State.Terminal() {
		return
	}
	c.State = domain.StateManualReview
	c.ReviewReason = reason
	if err := s.Contributions.Update(ctx, c); err != nil {
		slog.Error("failed to park contribution for review", "contribution_id", c.ID, "error", err)
	}
}

func gatewayEvent(status domain.GatewayStatus) domain.Event {
	switch status {
	case domain.GatewayStatusApproved:
		return domain.EventGatewayApproved
	case domain.GatewayStatusCancelled, domain.GatewayStatusRejected:
		return domain.EventGatewayCancelled
	default:
		return domain.EventGatewayPending
	}
}
