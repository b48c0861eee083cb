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

// CreateGiftRequest is the admin payload for creating a registry item
type CreateGiftRequest struct {
	Name         string `json:"name"`
	Price        string `json:"price"`         // fixed price, optional
	TargetAmount string `json:"target_amount"` // crowdfund target, optional
}

type giftResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           string `json:"price"`
	TargetAmount    string `json:"target_amount"`
	CollectedAmount string `json:"collected_amount"`
	Remaining       string `json:"remaining"`
	RemainingLocal  string `json:"remaining_local,omitempty"` // VES at the fixed display rate
	IsCrowdfund     bool   `json:"is_crowdfund"`
	Status          string `json:"status"`
}

func (s *Server) toGiftResponse(g *domain.Gift) giftResponse {
	resp := giftResponse{
		ID:              g.ID.String(),
		Name:            g.Name,
		Price:           g.Price.String(),
		TargetAmount:    g.TargetAmount.String(),
		CollectedAmount: g.CollectedAmount.String(),
		Remaining:       g.Remaining().String(),
		IsCrowdfund:     g.IsCrowdfund,
		Status:          string(g.Status),
	}
	if local, err := domain.ToDisplayCurrency(g.Remaining(), s.ExchangeRate); err == nil {
		resp.RemainingLocal = local.String()
	}
	return resp
}

// ListGifts returns the full registry for the UI
func (s *Server) ListGifts(c *fiber.Ctx) error {
	gifts, err := s.GiftRepo.List(c.Context())
	if err != nil {
		slog.Error("failed to list gifts", "error", err)
		return errorResponse(c, err)
	}

	out := make([]giftResponse, 0, len(gifts))
	for _, g := range gifts {
		out = append(out, s.toGiftResponse(g))
	}
	return c.JSON(fiber.Map{"gifts": out})
}

// CreateGift creates a registry item (admin only)
func (s *Server) CreateGift(c *fiber.Ctx) error {
	var req CreateGiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	price := decimal.Zero
	if req.Price != "" {
		var err error
		if price, err = decimal.NewFromString(req.Price); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid price format"})
		}
	}

	gift := &domain.Gift{
		ID:              uuid.New(),
		Name:            req.Name,
		Price:           price,
		CollectedAmount: decimal.Zero,
		Status:          domain.GiftStatusAvailable,
		CreatedAt:       time.Now().UTC(),
	}

	if req.TargetAmount != "" {
		target, err := decimal.NewFromString(req.TargetAmount)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid target_amount format"})
		}
		gift.TargetAmount = target
		gift.IsCrowdfund = true
	}

	if err := gift.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.GiftRepo.Create(c.Context(), gift); err != nil {
		slog.Error("failed to create gift", "error", err, "name", req.Name)
		return errorResponse(c, err)
	}

	slog.Info("gift created", "gift_id", gift.ID, "name", gift.Name)
	return c.Status(http.StatusCreated).JSON(s.toGiftResponse(gift))
}
