package receiptai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/mfigueredo/giftwell-backend/internal/domain"
)

// Client talks to the external AI receipt-validation service.
// Implements domain.ReceiptValidator.
//
// A structured verdict is returned for every answer the service gives,
// including definitive not-a-receipt rejections; an error return means the
// call itself failed (timeout, transport, provider 5xx) and the caller is
// expected to degrade to manual review.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a validator client. The context deadline set by the
// validation worker, not this client, bounds each call; the HTTP client
// timeout is a backstop only.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type validateRequest struct {
	ImageBase64    string `json:"image_base64"`
	Country        string `json:"country"`
	ExpectedAmount string `json:"expected_amount"`
	CorrelationID  string `json:"correlation_id"`
}

type validateResponse struct {
	Extracted struct {
		ReferenceNumber string     `json:"reference_number"`
		Amount          string     `json:"amount"`
		Currency        string     `json:"currency"`
		Bank            string     `json:"bank"`
		AccountTail     string     `json:"account_tail"`
		IssuedAt        *time.Time `json:"issued_at"`
	} `json:"extracted"`
	IsValid         bool     `json:"is_valid"`
	MatchesAccount  bool     `json:"matches_account"`
	MatchesAmount   bool     `json:"matches_amount"`
	MatchesCurrency bool     `json:"matches_currency"`
	Confidence      string   `json:"confidence"`
	Errors          []string `json:"errors"`
}

// Validate submits a receipt image for validation against the expected amount
func (c *Client) Validate(ctx context.Context, image []byte, country string, expectedAmount decimal.Decimal, correlationID string) (*domain.ReceiptVerdict, error) {
	body := validateRequest{
		ImageBase64:    base64.StdEncoding.EncodeToString(image),
		Country:        country,
		ExpectedAmount: expectedAmount.String(),
		CorrelationID:  correlationID,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/receipts/validate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validator call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("validator returned status %d", resp.StatusCode)
	}

	var vr validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("validator response malformed: %w", err)
	}

	verdict := &domain.ReceiptVerdict{
		IsValid:         vr.IsValid,
		MatchesAccount:  vr.MatchesAccount,
		MatchesAmount:   vr.MatchesAmount,
		MatchesCurrency: vr.MatchesCurrency,
		Confidence:      domain.Confidence(vr.Confidence),
		Errors:          vr.Errors,
		Fields: domain.ReceiptFields{
			ReferenceNumber: vr.Extracted.ReferenceNumber,
			Currency:        vr.Extracted.Currency,
			Bank:            vr.Extracted.Bank,
			AccountTail:     vr.Extracted.AccountTail,
			IssuedAt:        vr.Extracted.IssuedAt,
		},
	}

	if vr.Extracted.Amount != "" {
		amount, err := decimal.NewFromString(vr.Extracted.Amount)
		if err != nil {
			return nil, fmt.Errorf("validator returned unparseable amount %q: %w", vr.Extracted.Amount, err)
		}
		verdict.Fields.Amount = amount
	}

	return verdict, nil
}
