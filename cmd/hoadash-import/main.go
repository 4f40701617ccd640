package main

import (
	"context"
	"os"
	"time"

	"hoadash/internal/amqp"
	"hoadash/internal/cli"
	"hoadash/internal/log"
	"hoadash/internal/services"
	"hoadash/internal/source"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentImport)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Messaging is optional: without a broker the import still archives,
	// it just skips the statement-imported event.
	var publisher services.ImportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, importing without event publishing", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	locator := source.NewLocator(cfg.DataDir)
	svc := services.NewImportService(locator, cfg.CheckingFile, cfg.SavingsFile, repo, publisher, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	run, err := svc.Run(ctx)
	if err != nil {
		logger.Error("Import failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Import complete",
		log.FieldRunID, run.ID,
		log.FieldRows, run.TransactionCount,
		"snapshots", run.SnapshotCount,
		"missing_amounts", run.MissingAmounts)
}
