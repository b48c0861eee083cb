package httpapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/shopspring/decimal"

	"github.com/mfigueredo/giftwell-backend/internal/domain"
	"github.com/mfigueredo/giftwell-backend/internal/usecase/intake"
	"github.com/mfigueredo/giftwell-backend/internal/usecase/reconciliation"
	"github.com/mfigueredo/giftwell-backend/internal/usecase/settlement"
)

// Server wires the usecase services to the HTTP surface consumed by the UI
type Server struct {
	Intake         *intake.Service
	Settlement     *settlement.Service
	Reconciliation *reconciliation.Service
	GiftRepo       domain.GiftRepository

	// Fixed USD to local rate for display amounts in gift listings
	ExchangeRate decimal.Decimal
}

// NewServer creates a new HTTP server instance
func NewServer(
	intakeSvc *intake.Service,
	settlementSvc *settlement.Service,
	reconciliationSvc *reconciliation.Service,
	giftRepo domain.GiftRepository,
	exchangeRate decimal.Decimal,
) *Server {
	return &Server{
		Intake:         intakeSvc,
		Settlement:     settlementSvc,
		Reconciliation: reconciliationSvc,
		GiftRepo:       giftRepo,
		ExchangeRate:   exchangeRate,
	}
}

// App builds the fiber application with all routes registered
func (s *Server) App(adminToken string) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")

	// Public
	api.Get("/gifts", s.ListGifts)
	api.Post("/gifts/:id/contributions", s.SubmitContribution)
	api.Post("/contributions/confirm", s.ConfirmContribution)

	// Admin
	admin := api.Group("/admin", AdminAuth(adminToken))
	admin.Post("/gifts", s.CreateGift)
	admin.Get("/contributions", s.ListContributions)
	admin.Post("/contributions/:id/approve", s.ApproveContribution)
	admin.Post("/contributions/:id/reject", s.RejectContribution)
	admin.Delete("/contributions/:id", s.DeleteContribution)
	admin.Get("/contributions/:id/receipt", s.ContributionReceipt)

	return app
}

// errorResponse maps domain errors to HTTP statuses per the error taxonomy:
// validation errors are 4xx with a specific message, everything unexpected
// is a 500 without internals leaked.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrGiftNotFound), errors.Is(err, domain.ErrContributionNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrExceedsRemaining),
		errors.Is(err, domain.ErrGiftCompleted),
		errors.Is(err, domain.ErrNoFundingTarget):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrIllegalTransition):
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
