package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/mfigueredo/giftwell-backend/internal/domain"
)

// SubmitContributionInput represents the input for submitting a contribution
type SubmitContributionInput struct {
	GiftID       uuid.UUID
	DonorName    string
	DonorEmail   string
	Message      string
	Amount       decimal.Decimal // settlement currency (USD)
	Method       domain.PaymentMethod
	Country      string
	ReceiptImage []byte // transfer methods only
	ReceiptURL   string // where the uploaded receipt was stored
}

// SubmitContributionResult is the immediate, non-blocking acknowledgment
type SubmitContributionResult struct {
	ContributionID uuid.UUID
	ClientTxID     string
	State          domain.ContributionState
	Session        *domain.PaymentSession // card path only
}

// ReceiptQueue hands a receipt off to the asynchronous validation worker
type ReceiptQueue interface {
	Enqueue(contributionID uuid.UUID, image []byte, country string, expectedAmount decimal.Decimal, correlationID string) error
}

// Service handles contribution intake: the advisory pre-transaction checks
// and creation of the initial PENDING/PROCESSING record. The checks here
// are race-prone by design; the atomic credit re-validates at approval time.
type Service struct {
	GiftRepo         domain.GiftRepository
	ContributionRepo domain.ContributionRepository
	Gateway          domain.PaymentGateway
	Validations      ReceiptQueue
}

// NewService creates a new intake Service instance
func NewService(
	giftRepo domain.GiftRepository,
	contributionRepo domain.ContributionRepository,
	gateway domain.PaymentGateway,
	validations ReceiptQueue,
) *Service {
	return &Service{
		GiftRepo:         giftRepo,
		ContributionRepo: contributionRepo,
		Gateway:          gateway,
		Validations:      validations,
	}
}

// SubmitContribution creates a contribution in its initial state.
// Logic:
//  1. Fetch the gift and re-read its current balance
//  2. Auto-initialize crowdfunding fields if the gift was a fixed-price item
//  3. Check the requested amount against the remaining balance (advisory)
//  4. Create the contribution row: PENDING (card) or PROCESSING (transfer)
//  5. Card: prepare the hosted gateway session.
//     Transfer: enqueue the receipt for asynchronous validation and
//     acknowledge immediately — the verdict lands later.
func (s *Service) SubmitContribution(ctx context.Context, input SubmitContributionInput) (*SubmitContributionResult, error) {
	if !input.Method.Valid() {
		return nil, fmt.Errorf("unsupported payment method %q", input.Method)
	}

	// 1. Fetch gift
	gift, err := s.GiftRepo.GetByID(ctx, input.GiftID)
	if err != nil {
		return nil, err
	}

	// 2. First contribution against a fixed-price item turns it into a fund
	wasFixed := !gift.IsCrowdfund
	if err := gift.EnsureCrowdfund(); err != nil {
		return nil, err
	}
	if wasFixed {
		if err := s.GiftRepo.Update(ctx, gift); err != nil {
			return nil, err
		}
	}

	// 3. Advisory remaining-balance check
	if err := gift.CanAccept(input.Amount); err != nil {
		return nil, err
	}
	if input.Method.IsTransfer() && len(input.ReceiptImage) == 0 {
		return nil, fmt.Errorf("transfer contribution requires a receipt image")
	}

	// 4. Create the contribution
	c := &domain.Contribution{
		ID:         uuid.New(),
		GiftID:     gift.ID,
		DonorName:  input.DonorName,
		DonorEmail: input.DonorEmail,
		Message:    input.Message,
		Amount:     input.Amount,
		Method:     input.Method,
		Country:    input.Country,
		ClientTxID: uuid.NewString(),
		State:      input.Method.InitialState(),
		ReceiptURL: input.ReceiptURL,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.ContributionRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	result := &SubmitContributionResult{
		ContributionID: c.ID,
		ClientTxID:     c.ClientTxID,
		State:          c.State,
	}

	// 5. Kick off the payment path
	if input.Method.IsTransfer() {
		if err := s.Validations.Enqueue(c.ID, input.ReceiptImage, c.Country, c.Amount, c.ClientTxID); err != nil {
			// No worker job will ever settle this row, and the expiry
			// sweeper only covers PENDING. Close it out so it cannot sit
			// in PROCESSING forever; the contributor resubmits.
			c.State = domain.StateRejected
			c.ReviewReason = "could not queue receipt validation: " + err.Error()
			if updErr := s.ContributionRepo.Update(ctx, c); updErr != nil {
				slog.Error("failed to reject unqueued contribution", "contribution_id", c.ID, "error", updErr)
			}
			return nil, fmt.Errorf("could not queue receipt validation: %w", err)
		}
		return result, nil
	}

	session, err := s.Gateway.Prepare(ctx,
		domain.ToMinorUnits(c.Amount),
		domain.CurrencyUSD,
		c.ClientTxID,
		"gift:"+gift.ID.String(),
		&domain.CustomerInfo{Name: c.DonorName, Email: c.DonorEmail},
	)
	if err != nil {
		return nil, fmt.Errorf("could not prepare payment session: %w", err)
	}
	result.Session = session
	return result, nil
}
