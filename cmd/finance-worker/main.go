package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finance/internal/amqp"
	"finance/internal/cache"
	"finance/internal/cli"
	applog "finance/internal/log"
	"finance/internal/sheets"
	gsheet "finance/internal/sheets/google"
	memsheet "finance/internal/sheets/memory"
	"finance/internal/worker"

	"golang.org/x/sync/errgroup"
)

const (
	seenDeliveries = 4096
	cleanupEvery   = 5 * time.Minute
	statsEvery     = 15 * time.Minute
)

func main() {
	cfg := cli.MustLoadConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)
	logger.Info("Starting finance-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	var sink sheets.AuditWriter
	if cfg.SheetsConfigured() {
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			SheetName:     cfg.GoogleSheetName,
			ClientJSON:    cfg.GoogleOAuthClientJSON,
			ClientFile:    cfg.GoogleOAuthClientFile,
			TokenJSON:     cfg.GoogleOAuthTokenJSON,
			TokenFile:     cfg.GoogleOAuthTokenFile,
			Location:      cfg.Location(),
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		if err := client.EnsureHeader(ctx); err != nil {
			logger.Error("Failed to prepare audit sheet", applog.FieldError, err, "sheet", cfg.GoogleSheetName)
			os.Exit(1)
		}
		logger.Info("Google Sheets audit log enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
		sink = client
	} else {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, audit rows are kept in memory only")
		sink = memsheet.New()
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	audit := worker.NewAuditWorker(sink, seenDeliveries)
	caches := cache.NewManager(logger.WithComponent(applog.ComponentWorker).Logger)
	caches.Register(audit.Seen())
	caches.StartCleanup(cleanupEvery)
	defer caches.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := audit.Run(gctx, client)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logger.Info("Audit worker stats", "stats", audit.Stats())
			case <-gctx.Done():
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully", "stats", audit.Stats())
}
