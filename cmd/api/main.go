package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lucasblanco/caja/internal/agreement"
	agreementStore "github.com/lucasblanco/caja/internal/agreement/store"
	"github.com/lucasblanco/caja/internal/config"
	"github.com/lucasblanco/caja/internal/database"
	cajaHttp "github.com/lucasblanco/caja/internal/http"
	agreementHandler "github.com/lucasblanco/caja/internal/http/agreement"
	balanceHandler "github.com/lucasblanco/caja/internal/http/balance"
	savingsHandler "github.com/lucasblanco/caja/internal/http/savings"
	txHandler "github.com/lucasblanco/caja/internal/http/transaction"
	"github.com/lucasblanco/caja/internal/invoicing"
	"github.com/lucasblanco/caja/internal/ledger"
	ledgerStore "github.com/lucasblanco/caja/internal/ledger/store"
	"github.com/lucasblanco/caja/internal/recurrence"
	"github.com/lucasblanco/caja/internal/savings"
	"github.com/lucasblanco/caja/internal/watch"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.New(ctx, cfg.Mongo.URI)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.Mongo.Database)

	var (
		txStore = ledgerStore.New(db)
		agStore = agreementStore.New(db)

		ledgerService    = ledger.NewService(txStore)
		agreementService = agreement.NewService(agStore)
		savingsService   = savings.NewService(txStore)

		recurrenceEngine = recurrence.New(txStore)
		invoicingEngine  = invoicing.New(txStore, agStore)
	)

	watcher := watch.New(txStore, agStore, recurrenceEngine, invoicingEngine)

	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("watcher stopped", "error", err)
			stop()
		}
	}()

	var (
		transactionH = txHandler.NewHandler(ledgerService)
		agreementH   = agreementHandler.NewHandler(agreementService, invoicingEngine)
		balanceH     = balanceHandler.NewHandler(ledgerService)
		savingsH     = savingsHandler.NewHandler(savingsService)
	)

	router := cajaHttp.New(transactionH, agreementH, balanceH, savingsH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	slog.Info("starting server", "port", cfg.App.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
