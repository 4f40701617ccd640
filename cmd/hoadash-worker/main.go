package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hoadash/internal/amqp"
	"hoadash/internal/cli"
	"hoadash/internal/log"
	"hoadash/internal/report"
	gsheet "hoadash/internal/report/google"
	mem "hoadash/internal/report/memory"
	"hoadash/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting hoadash-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Pick the report sink: Google Sheets when a spreadsheet is
	// configured, an in-memory store otherwise so the consume loop can
	// still drain the queue in development.
	var writer report.Writer
	if cfg.ReportSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), cfg.ReportSpreadsheetID, cfg.ReportSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets report sink initialized", "spreadsheet_id", cfg.ReportSpreadsheetID)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets disabled - no REPORT_SPREADSHEET_ID provided, using in-memory sink")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	processor := services.NewReportProcessor(repo, writer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		handler := func(msg *amqp.StatementImportedMessage) error {
			return processor.Handle(ctx, msg)
		}
		if err := amqpClient.ConsumeStatementImported(ctx, handler); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
			cancel()
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give the in-flight message time to finish
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
