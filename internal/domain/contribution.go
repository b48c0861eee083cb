package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContributionState represents where a contribution is in its settlement lifecycle
type ContributionState string

const (
	StatePending      ContributionState = "PENDING"       // created, awaiting gateway confirmation (card)
	StateProcessing   ContributionState = "PROCESSING"    // receipt uploaded, awaiting validation (transfer)
	StateManualReview ContributionState = "MANUAL_REVIEW" // parked for human judgment
	StateApproved     ContributionState = "APPROVED"      // terminal, credited
	StateRejected     ContributionState = "REJECTED"      // terminal, not credited
)

// Terminal reports whether no further automated transition may occur
func (s ContributionState) Terminal() bool {
	return s == StateApproved || s == StateRejected
}

// Valid reports whether the state is a known lifecycle state
func (s ContributionState) Valid() bool {
	switch s {
	case StatePending, StateProcessing, StateManualReview, StateApproved, StateRejected:
		return true
	}
	return false
}

// PaymentMethod represents how a contributor pays
type PaymentMethod string

const (
	MethodCard       PaymentMethod = "card"
	MethodTransferVE PaymentMethod = "transfer_ve"
	MethodTransferUS PaymentMethod = "transfer_us"
)

// IsTransfer reports whether the method settles asynchronously via a
// bank-transfer receipt instead of a hosted card session
func (m PaymentMethod) IsTransfer() bool {
	return m == MethodTransferVE || m == MethodTransferUS
}

// Valid reports whether the method is supported
func (m PaymentMethod) Valid() bool {
	return m == MethodCard || m.IsTransfer()
}

// InitialState returns the state a freshly created contribution starts in
func (m PaymentMethod) InitialState() ContributionState {
	if m.IsTransfer() {
		return StateProcessing
	}
	return StatePending
}

// ReceiptFields holds the structured fields extracted from a bank-transfer
// receipt by the validator. Populated only for transfer methods.
type ReceiptFields struct {
	ReferenceNumber string
	Amount          decimal.Decimal
	Currency        string
	Bank            string
	AccountTail     string // last digits of the receiving account
	IssuedAt        *time.Time
}

// Contribution represents one contributor's pledge toward a gift, tracked
// through the settlement state machine. Amount is always denominated in
// the settlement currency (USD).
type Contribution struct {
	ID           uuid.UUID
	GiftID       uuid.UUID
	DonorName    string
	DonorEmail   string
	Message      string
	Amount       decimal.Decimal
	Method       PaymentMethod
	Country      string
	ClientTxID   string // correlation id we hand to providers
	ProviderTxID string // id assigned by the gateway
	Receipt      *ReceiptFields
	ReviewReason string // confidence/error annotation for parked or rejected rows
	State        ContributionState
	ReceiptURL   string
	CreatedAt    time.Time
	ValidatedAt  *time.Time
	ApprovedAt   *time.Time
}

// Validate ensures the contribution adheres to domain rules
func (c *Contribution) Validate() error {
	if c.DonorName == "" {
		return errors.New("donor name cannot be empty")
	}
	if c.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("contribution amount must be positive")
	}
	if !c.Method.Valid() {
		return errors.New("payment method must be card, transfer_ve or transfer_us")
	}
	if !c.State.Valid() {
		return errors.New("contribution state is not valid")
	}
	if c.ClientTxID == "" {
		return errors.New("contribution must carry a client transaction id")
	}
	return nil
}
