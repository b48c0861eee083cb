package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/mfigueredo/giftwell-backend/internal/domain"
)

// Client talks to the hosted payment gateway over HTTP.
// Implements domain.PaymentGateway.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a gateway client with an explicit request timeout so a
// slow provider cannot block request handlers indefinitely.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type prepareRequest struct {
	Amount              int64  `json:"amount"` // minor units
	Currency            string `json:"currency"`
	ClientTransactionID string `json:"clientTransactionId"`
	Reference           string `json:"reference"`
	CustomerName        string `json:"customerName,omitempty"`
	CustomerEmail       string `json:"customerEmail,omitempty"`
}

type prepareResponse struct {
	SessionID   string    `json:"sessionId"`
	RedirectURL string    `json:"payWithCard"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Prepare creates a hosted payment session for the client to render
func (c *Client) Prepare(ctx context.Context, amountMinorUnits int64, currency domain.Currency, clientTxID, reference string, customer *domain.CustomerInfo) (*domain.PaymentSession, error) {
	body := prepareRequest{
		Amount:              amountMinorUnits,
		Currency:            string(currency),
		ClientTransactionID: clientTxID,
		Reference:           reference,
	}
	if customer != nil {
		body.CustomerName = customer.Name
		body.CustomerEmail = customer.Email
	}

	var resp prepareResponse
	if err := c.post(ctx, "/button/Prepare", body, &resp); err != nil {
		return nil, fmt.Errorf("gateway prepare failed: %w", err)
	}

	return &domain.PaymentSession{
		SessionID:   resp.SessionID,
		RedirectURL: resp.RedirectURL,
		ExpiresAt:   resp.ExpiresAt,
	}, nil
}

type confirmRequest struct {
	ID                  string `json:"id"`
	ClientTransactionID string `json:"clientTransactionId"`
}

type confirmResponse struct {
	Status        string `json:"transactionStatus"`
	TransactionID string `json:"transactionId"`
	Amount        *int64 `json:"amount"` // minor units, may be absent
	StatusDetail  string `json:"statusDetail"`
}

// Confirm fetches the final status of a hosted payment session. The caller
// must treat this as possibly slow, possibly failing, and possibly called
// more than once per transaction.
func (c *Client) Confirm(ctx context.Context, providerTxID, clientTxID string) (*domain.GatewayConfirmation, error) {
	body := confirmRequest{ID: providerTxID, ClientTransactionID: clientTxID}

	var resp confirmResponse
	if err := c.post(ctx, "/button/V2/Confirm", body, &resp); err != nil {
		return nil, fmt.Errorf("gateway confirm failed: %w", err)
	}

	conf := &domain.GatewayConfirmation{
		Status:       mapStatus(resp.Status),
		ProviderTxID: resp.TransactionID,
		StatusDetail: resp.StatusDetail,
	}
	if resp.Amount != nil {
		conf.Amount = domain.FromMinorUnits(*resp.Amount)
	} else {
		conf.Amount = decimal.Zero
	}
	return conf, nil
}

func mapStatus(s string) domain.GatewayStatus {
	switch s {
	case "Approved":
		return domain.GatewayStatusApproved
	case "Cancelled", "Canceled":
		return domain.GatewayStatusCancelled
	case "Rejected":
		return domain.GatewayStatusRejected
	default:
		// Unknown statuses stay Pending so the transaction remains retryable
		return domain.GatewayStatusPending
	}
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
