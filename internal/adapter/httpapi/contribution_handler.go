package httpapi

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfigueredo/giftwell-backend/internal/domain"
	"github.com/mfigueredo/giftwell-backend/internal/usecase/intake"
)

// SubmitContributionRequest is the contributor's pledge payload
type SubmitContributionRequest struct {
	DonorName    string `json:"donor_name"`
	DonorEmail   string `json:"donor_email"`
	Message      string `json:"message"`
	Amount       string `json:"amount"`
	Method       string `json:"payment_method"`
	Country      string `json:"country"`
	ReceiptImage string `json:"receipt_image"` // base64, transfer methods only
	ReceiptURL   string `json:"receipt_url"`
}

// SubmitContribution creates a contribution against a gift. Card
// contributors get a hosted payment session back; transfer contributors
// get an immediate "processing" acknowledgment while validation runs in
// the background.
func (s *Server) SubmitContribution(c *fiber.Ctx) error {
	giftID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid gift id"})
	}

	var req SubmitContributionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.DonorName == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "donor_name is required"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "amount must be a positive number"})
	}

	var image []byte
	if req.ReceiptImage != "" {
		if image, err = base64.StdEncoding.DecodeString(req.ReceiptImage); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "receipt_image must be base64"})
		}
	}

	result, err := s.Intake.SubmitContribution(c.Context(), intake.SubmitContributionInput{
		GiftID:       giftID,
		DonorName:    req.DonorName,
		DonorEmail:   req.DonorEmail,
		Message:      req.Message,
		Amount:       amount,
		Method:       domain.PaymentMethod(req.Method),
		Country:      req.Country,
		ReceiptImage: image,
		ReceiptURL:   req.ReceiptURL,
	})
	if err != nil {
		slog.Warn("contribution rejected at intake", "gift_id", giftID, "error", err)
		return errorResponse(c, err)
	}

	resp := fiber.Map{
		"contribution_id":       result.ContributionID.String(),
		"client_transaction_id": result.ClientTxID,
		"state":                 string(result.State),
	}
	if result.Session != nil {
		resp["session"] = fiber.Map{
			"session_id":   result.Session.SessionID,
			"redirect_url": result.Session.RedirectURL,
			"expires_at":   result.Session.ExpiresAt,
		}
	} else {
		resp["message"] = "your receipt is being validated"
	}

	return c.Status(http.StatusAccepted).JSON(resp)
}

// ConfirmContributionRequest carries the correlation ids from the hosted
// payment redirect
type ConfirmContributionRequest struct {
	ClientTransactionID   string `json:"client_transaction_id"`
	ProviderTransactionID string `json:"provider_transaction_id"`
}

// ConfirmContribution resolves a card contribution's final status.
// Safe to call repeatedly: a terminal contribution short-circuits.
func (s *Server) ConfirmContribution(c *fiber.Ctx) error {
	var req ConfirmContributionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ClientTransactionID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "client_transaction_id is required"})
	}

	result, err := s.Settlement.ConfirmCard(c.Context(), req.ClientTransactionID, req.ProviderTransactionID)
	if err != nil {
		slog.Warn("contribution confirmation failed", "client_tx_id", req.ClientTransactionID, "error", err)
		return errorResponse(c, err)
	}

	resp := fiber.Map{
		"contribution_id": result.ContributionID.String(),
		"state":           string(result.State),
	}
	if result.Credit != nil {
		resp["collected_amount"] = result.Credit.NewCollectedAmount.String()
		resp["target_amount"] = result.Credit.TargetAmount.String()
		resp["gift_completed"] = result.Credit.Completed
	}
	return c.JSON(resp)
}
