package services

import (
	"context"

	"hoadash/internal/ledger"
)

// ArchiveProvider serves the dashboard from the latest archived import
// run instead of re-reading the source files. It satisfies the same
// contract as ledger.Loader.
type ArchiveProvider struct {
	archive TransactionArchive
}

func NewArchiveProvider(archive TransactionArchive) *ArchiveProvider {
	return &ArchiveProvider{archive: archive}
}

func (p *ArchiveProvider) Load(ctx context.Context) (ledger.Dataset, error) {
	run, err := p.archive.LatestRun(ctx)
	if err != nil {
		return ledger.Dataset{}, err
	}
	txns, err := p.archive.TransactionsByRun(ctx, run.ID)
	if err != nil {
		return ledger.Dataset{}, err
	}
	snaps, err := p.archive.SnapshotsByRun(ctx, run.ID)
	if err != nil {
		return ledger.Dataset{}, err
	}
	return ledger.Normalize(txns, snaps, run.SavingsSource != ""), nil
}
