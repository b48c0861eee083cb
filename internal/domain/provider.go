package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// GatewayStatus is the final status the payment gateway reports for a
// hosted card session
type GatewayStatus string

const (
	GatewayStatusApproved  GatewayStatus = "Approved"
	GatewayStatusPending   GatewayStatus = "Pending"
	GatewayStatusCancelled GatewayStatus = "Cancelled"
	GatewayStatusRejected  GatewayStatus = "Rejected"
)

// PaymentSession is the client-rendered configuration for a hosted payment
type PaymentSession struct {
	SessionID   string
	RedirectURL string
	ExpiresAt   time.Time
}

// GatewayConfirmation is the gateway's answer when a session is confirmed
type GatewayConfirmation struct {
	Status       GatewayStatus
	ProviderTxID string
	Amount       decimal.Decimal
	StatusDetail string
}

// CustomerInfo is the optional customer context passed when preparing a session
type CustomerInfo struct {
	Name  string
	Email string
}

// PaymentGateway is the contract the settlement core requires from the
// hosted card gateway. Confirm may be slow, may fail, and may be called
// more than once for the same transaction; the state machine's idempotency
// rule handles redelivery.
type PaymentGateway interface {
	Prepare(ctx context.Context, amountMinorUnits int64, currency Currency, clientTxID, reference string, customer *CustomerInfo) (*PaymentSession, error)
	Confirm(ctx context.Context, providerTxID, clientTxID string) (*GatewayConfirmation, error)
}

// ReceiptValidator is the contract for the external AI document validator.
// A returned verdict is a provider outcome, including definitive
// not-a-receipt rejections; an error means the call itself failed
// (timeout, transport, provider 5xx) and the caller must degrade to
// manual review.
type ReceiptValidator interface {
	Validate(ctx context.Context, image []byte, country string, expectedAmount decimal.Decimal, correlationID string) (*ReceiptVerdict, error)
}
