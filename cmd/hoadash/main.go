package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hoadash/internal/cli"
	apphttp "hoadash/internal/http"
	"hoadash/internal/ledger"
	"hoadash/internal/log"
	"hoadash/internal/services"
	"hoadash/internal/source"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	// Choose the dataset backend: recompute from the CSV exports, or
	// serve the latest archived import run.
	var provider apphttp.DatasetProvider
	switch cfg.DataBackend {
	case "sqlite":
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		provider = services.NewArchiveProvider(repo)
		logger.Info("Initialized SQLite archive backend", "path", cfg.SQLiteDBPath)
	default:
		locator := source.NewLocator(cfg.DataDir)
		provider = ledger.NewLoaderWithCache(locator, cfg.CheckingFile, cfg.SavingsFile, cfg.CacheSize, cfg.CacheTTL)
		logger.Info("Initialized file backend",
			"data_dir", cfg.DataDir,
			"checking", cfg.CheckingFile,
			"savings", cfg.SavingsFile)
	}

	srv := apphttp.NewServer(":"+cfg.Port, provider)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting hoadash server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
