package services

import (
	"context"
	"fmt"

	"hoadash/internal/amqp"
	"hoadash/internal/log"
	"hoadash/internal/report"
)

// ReportProcessor consumes statement import events and appends the run's
// monthly summaries to the board report.
type ReportProcessor struct {
	archive TransactionArchive
	writer  report.Writer
	logger  *log.Logger
}

func NewReportProcessor(archive TransactionArchive, writer report.Writer, logger *log.Logger) *ReportProcessor {
	return &ReportProcessor{
		archive: archive,
		writer:  writer,
		logger:  logger.WithComponent(log.ComponentReport),
	}
}

// Handle syncs one import run. Errors are returned so the consumer can
// requeue the message.
func (p *ReportProcessor) Handle(ctx context.Context, msg *amqp.StatementImportedMessage) error {
	if _, err := p.archive.GetRun(ctx, msg.RunID); err != nil {
		return fmt.Errorf("load run %s: %w", msg.RunID, err)
	}

	txns, err := p.archive.TransactionsByRun(ctx, msg.RunID)
	if err != nil {
		return fmt.Errorf("load transactions for run %s: %w", msg.RunID, err)
	}

	rows := report.BuildSummaries(txns)
	if len(rows) == 0 {
		p.logger.WarnContext(ctx, "Import run has no summarizable months",
			log.FieldRunID, msg.RunID)
		return nil
	}

	if err := p.writer.AppendSummaries(ctx, msg.RunID, rows); err != nil {
		return fmt.Errorf("append summaries for run %s: %w", msg.RunID, err)
	}

	p.logger.InfoContext(ctx, "Board report synced",
		log.FieldRunID, msg.RunID,
		log.FieldRows, len(rows))
	return nil
}
