package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfigueredo/giftwell-backend/internal/domain"
)

type contributionResponse struct {
	ID           string  `json:"id"`
	GiftID       string  `json:"gift_id"`
	DonorName    string  `json:"donor_name"`
	DonorEmail   string  `json:"donor_email,omitempty"`
	Message      string  `json:"message,omitempty"`
	Amount       string  `json:"amount"`
	Method       string  `json:"payment_method"`
	Country      string  `json:"country"`
	ClientTxID   string  `json:"client_transaction_id"`
	ProviderTxID string  `json:"provider_transaction_id,omitempty"`
	State        string  `json:"state"`
	ReviewReason string  `json:"review_reason,omitempty"`
	ReceiptURL   string  `json:"receipt_url,omitempty"`
	CreatedAt    string  `json:"created_at"`
	ValidatedAt  *string `json:"validated_at,omitempty"`
	ApprovedAt   *string `json:"approved_at,omitempty"`

	Receipt *receiptResponse `json:"receipt,omitempty"`
}

type receiptResponse struct {
	ReferenceNumber string `json:"reference_number"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Bank            string `json:"bank,omitempty"`
	AccountTail     string `json:"account_tail,omitempty"`
}

func toContributionResponse(c *domain.Contribution) contributionResponse {
	out := contributionResponse{
		ID:           c.ID.String(),
		GiftID:       c.GiftID.String(),
		DonorName:    c.DonorName,
		DonorEmail:   c.DonorEmail,
		Message:      c.Message,
		Amount:       c.Amount.String(),
		Method:       string(c.Method),
		Country:      c.Country,
		ClientTxID:   c.ClientTxID,
		ProviderTxID: c.ProviderTxID,
		State:        string(c.State),
		ReviewReason: c.ReviewReason,
		ReceiptURL:   c.ReceiptURL,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
	if c.ValidatedAt != nil {
		v := c.ValidatedAt.Format(time.RFC3339)
		out.ValidatedAt = &v
	}
	if c.ApprovedAt != nil {
		v := c.ApprovedAt.Format(time.RFC3339)
		out.ApprovedAt = &v
	}
	if c.Receipt != nil {
		out.Receipt = &receiptResponse{
			ReferenceNumber: c.Receipt.ReferenceNumber,
			Amount:          c.Receipt.Amount.String(),
			Currency:        c.Receipt.Currency,
			Bank:            c.Receipt.Bank,
			AccountTail:     c.Receipt.AccountTail,
		}
	}
	return out
}

// ListContributions lists contributions, filterable by ?status=
func (s *Server) ListContributions(c *fiber.Ctx) error {
	state := domain.ContributionState(c.Query("status"))
	if state != "" && !state.Valid() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unknown status filter"})
	}

	contributions, err := s.Reconciliation.List(c.Context(), state)
	if err != nil {
		slog.Error("failed to list contributions", "error", err)
		return errorResponse(c, err)
	}

	out := make([]contributionResponse, 0, len(contributions))
	for _, item := range contributions {
		out = append(out, toContributionResponse(item))
	}
	return c.JSON(fiber.Map{"contributions": out})
}

// ApproveRequest optionally overrides the credited amount
type ApproveRequest struct {
	OverrideAmount string `json:"override_amount"`
}

// ApproveContribution approves a parked contribution, crediting the gift
func (s *Server) ApproveContribution(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid contribution id"})
	}

	var req ApproveRequest
	// Empty body is fine: approve with the original amount
	_ = c.BodyParser(&req)

	var override *decimal.Decimal
	if req.OverrideAmount != "" {
		amount, err := decimal.NewFromString(req.OverrideAmount)
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "override_amount must be a positive number"})
		}
		override = &amount
	}

	credit, err := s.Reconciliation.Approve(c.Context(), id, override)
	if err != nil {
		slog.Warn("admin approval failed", "contribution_id", id, "error", err)
		return errorResponse(c, err)
	}

	slog.Info("admin approved contribution", "contribution_id", id, "completed", credit.Completed)
	return c.JSON(fiber.Map{
		"state":            string(domain.StateApproved),
		"collected_amount": credit.NewCollectedAmount.String(),
		"target_amount":    credit.TargetAmount.String(),
		"gift_completed":   credit.Completed,
	})
}

// RejectRequest carries the operator's reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RejectContribution rejects a contribution
func (s *Server) RejectContribution(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid contribution id"})
	}

	var req RejectRequest
	_ = c.BodyParser(&req)
	reason := req.Reason
	if reason == "" {
		reason = "rejected by administrator"
	}

	if err := s.Reconciliation.Reject(c.Context(), id, reason); err != nil {
		slog.Warn("admin rejection failed", "contribution_id", id, "error", err)
		return errorResponse(c, err)
	}

	slog.Info("admin rejected contribution", "contribution_id", id)
	return c.JSON(fiber.Map{"state": string(domain.StateRejected)})
}

// DeleteContribution permanently removes a contribution record, reversing
// its credit when it was approved
func (s *Server) DeleteContribution(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid contribution id"})
	}

	if err := s.Reconciliation.Delete(c.Context(), id); err != nil {
		slog.Warn("admin delete failed", "contribution_id", id, "error", err)
		return errorResponse(c, err)
	}

	slog.Info("admin deleted contribution", "contribution_id", id)
	return c.SendStatus(http.StatusNoContent)
}

// ContributionReceipt returns the stored receipt location and the
// validator's extracted fields for manual judgment
func (s *Server) ContributionReceipt(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid contribution id"})
	}

	contribution, err := s.Reconciliation.ReceiptDetail(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(toContributionResponse(contribution))
}
