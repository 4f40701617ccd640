// Package services orchestrates the import pipeline and the board report
// sync around the pure ledger core.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"hoadash/internal/amqp"
	"hoadash/internal/core"
	"hoadash/internal/ledger"
	"hoadash/internal/log"
	"hoadash/internal/source"
	"hoadash/internal/storage"
)

// TransactionArchive is the slice of the storage repository the services
// need.
type TransactionArchive interface {
	SaveImportRun(ctx context.Context, run storage.ImportRun, txns []core.Transaction, snaps []core.SavingsSnapshot) error
	LatestRun(ctx context.Context) (storage.ImportRun, error)
	GetRun(ctx context.Context, runID string) (storage.ImportRun, error)
	TransactionsByRun(ctx context.Context, runID string) ([]core.Transaction, error)
	SnapshotsByRun(ctx context.Context, runID string) ([]core.SavingsSnapshot, error)
}

// ImportPublisher announces archived import runs. A nil publisher
// disables messaging without failing the import.
type ImportPublisher interface {
	PublishStatementImported(ctx context.Context, msg *amqp.StatementImportedMessage) error
}

// ImportService locates the exports, normalizes them, archives the run
// and publishes an import event.
type ImportService struct {
	locator      *source.Locator
	checkingFile string
	savingsFile  string
	archive      TransactionArchive
	publisher    ImportPublisher
	logger       *log.Logger
}

func NewImportService(locator *source.Locator, checkingFile, savingsFile string, archive TransactionArchive, publisher ImportPublisher, logger *log.Logger) *ImportService {
	return &ImportService{
		locator:      locator,
		checkingFile: checkingFile,
		savingsFile:  savingsFile,
		archive:      archive,
		publisher:    publisher,
		logger:       logger.WithComponent(log.ComponentImport),
	}
}

// Run performs one import. The checking export is required; a missing
// savings file degrades to a checking-only run.
func (s *ImportService) Run(ctx context.Context) (storage.ImportRun, error) {
	checkingPath, err := s.locator.Resolve(s.checkingFile)
	if err != nil {
		return storage.ImportRun{}, err
	}

	txns, err := source.ReadCheckingFile(checkingPath)
	if err != nil {
		return storage.ImportRun{}, fmt.Errorf("read checking export: %w", err)
	}

	var (
		snaps       []core.SavingsSnapshot
		savingsPath string
	)
	if s.savingsFile != "" {
		if p, err := s.locator.Resolve(s.savingsFile); err == nil {
			savingsPath = p
			snaps, err = source.ReadSavingsFile(p)
			if err != nil {
				return storage.ImportRun{}, fmt.Errorf("read savings history: %w", err)
			}
		} else {
			s.logger.WarnContext(ctx, "Savings history not found, importing checking only",
				log.FieldSource, s.savingsFile)
		}
	}

	ds := ledger.Normalize(txns, snaps, savingsPath != "")

	run := storage.ImportRun{
		ID:             uuid.NewString(),
		CheckingSource: checkingPath,
		SavingsSource:  savingsPath,
		MissingAmounts: ds.MissingAmounts,
	}
	if err := s.archive.SaveImportRun(ctx, run, ds.Transactions, snaps); err != nil {
		return storage.ImportRun{}, fmt.Errorf("archive import run: %w", err)
	}
	run.TransactionCount = len(ds.Transactions)
	run.SnapshotCount = len(snaps)

	s.logger.InfoContext(ctx, "Import run archived",
		log.FieldRunID, run.ID,
		log.FieldRows, run.TransactionCount,
		"snapshots", run.SnapshotCount,
		"missing_amounts", run.MissingAmounts)

	s.publish(ctx, run)
	return run, nil
}

// publish is best-effort: the run is already archived, so a publish
// failure is logged but never fails the import.
func (s *ImportService) publish(ctx context.Context, run storage.ImportRun) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP publisher not configured, skipping import event")
		return
	}
	msg := amqp.NewStatementImportedMessage(run.ID, run.CheckingSource, run.SavingsSource,
		run.TransactionCount, run.SnapshotCount)
	if err := s.publisher.PublishStatementImported(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish import event",
			log.FieldRunID, run.ID,
			log.FieldError, err)
	}
}
