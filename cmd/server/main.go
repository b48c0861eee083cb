package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfigueredo/giftwell-backend/internal/adapter/gateway"
	"github.com/mfigueredo/giftwell-backend/internal/adapter/httpapi"
	"github.com/mfigueredo/giftwell-backend/internal/adapter/receiptai"
	"github.com/mfigueredo/giftwell-backend/internal/adapter/repository/postgres"
	"github.com/mfigueredo/giftwell-backend/internal/config"
	"github.com/mfigueredo/giftwell-backend/internal/domain"
	"github.com/mfigueredo/giftwell-backend/internal/usecase/expiry"
	"github.com/mfigueredo/giftwell-backend/internal/usecase/intake"
	"github.com/mfigueredo/giftwell-backend/internal/usecase/reconciliation"
	"github.com/mfigueredo/giftwell-backend/internal/usecase/settlement"
	"github.com/mfigueredo/giftwell-backend/internal/usecase/validation"
)

func main() {
	// 1. Config and logger
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 2. Database
	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.EnsureSchema(context.Background()); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	// 3. Repositories
	giftRepo := postgres.NewGiftRepository(db)
	contributionRepo := postgres.NewContributionRepository(db)

	// 4. Provider clients
	gatewayClient := gateway.NewClient(cfg.GatewayURL, cfg.GatewayAPIKey, cfg.GatewayTimeout)
	validatorClient := receiptai.NewClient(cfg.ValidatorURL, cfg.ValidatorAPIKey, cfg.ValidationTimeout)

	// 5. Services
	policy := domain.ValidationPolicy{
		AmountTolerance: cfg.AmountTolerance,
		ReviewThreshold: cfg.ReviewThreshold,
	}
	settlementSvc := settlement.NewService(contributionRepo, gatewayClient, policy)
	validationWorker := validation.NewWorker(validatorClient, settlementSvc, cfg.ValidationTimeout, cfg.ValidationQueue)
	intakeSvc := intake.NewService(giftRepo, contributionRepo, gatewayClient, validationWorker)
	reconciliationSvc := reconciliation.NewService(contributionRepo, settlementSvc)
	sweeper := expiry.NewSweeper(contributionRepo, cfg.PendingTTL, cfg.SweepInterval)

	// 6. Background loops
	validationWorker.Start()
	sweeper.Start()

	// 7. HTTP server
	server := httpapi.NewServer(intakeSvc, settlementSvc, reconciliationSvc, giftRepo, cfg.ExchangeRate)
	app := server.App(cfg.AdminToken)

	go func() {
		slog.Info("server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	// 8. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")

	if err := app.Shutdown(); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	sweeper.Stop()
	validationWorker.Stop()
	if err := db.Close(); err != nil {
		slog.Error("database close failed", "error", err)
	}

	slog.Info("server exited")
}
