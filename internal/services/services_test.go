package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hoadash/internal/amqp"
	"hoadash/internal/core"
	"hoadash/internal/log"
	"hoadash/internal/report/memory"
	"hoadash/internal/source"
	"hoadash/internal/storage"
)

type fakeArchive struct {
	runs  map[string]storage.ImportRun
	txns  map[string][]core.Transaction
	snaps map[string][]core.SavingsSnapshot
	last  string
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{
		runs:  make(map[string]storage.ImportRun),
		txns:  make(map[string][]core.Transaction),
		snaps: make(map[string][]core.SavingsSnapshot),
	}
}

func (f *fakeArchive) SaveImportRun(_ context.Context, run storage.ImportRun, txns []core.Transaction, snaps []core.SavingsSnapshot) error {
	run.TransactionCount = len(txns)
	run.SnapshotCount = len(snaps)
	f.runs[run.ID] = run
	f.txns[run.ID] = txns
	f.snaps[run.ID] = snaps
	f.last = run.ID
	return nil
}

func (f *fakeArchive) LatestRun(_ context.Context) (storage.ImportRun, error) {
	if f.last == "" {
		return storage.ImportRun{}, core.ErrSourceNotFound
	}
	return f.runs[f.last], nil
}

func (f *fakeArchive) GetRun(_ context.Context, runID string) (storage.ImportRun, error) {
	run, ok := f.runs[runID]
	if !ok {
		return storage.ImportRun{}, errors.New("run not found")
	}
	return run, nil
}

func (f *fakeArchive) TransactionsByRun(_ context.Context, runID string) ([]core.Transaction, error) {
	return f.txns[runID], nil
}

func (f *fakeArchive) SnapshotsByRun(_ context.Context, runID string) ([]core.SavingsSnapshot, error) {
	return f.snaps[runID], nil
}

type fakePublisher struct {
	published []*amqp.StatementImportedMessage
	fail      bool
}

func (f *fakePublisher) PublishStatementImported(_ context.Context, msg *amqp.StatementImportedMessage) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.published = append(f.published, msg)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

const checkingCSV = `Post Date,Description,Amount,Balance,Vendor,Auto Vendor,Category,Auto Category
2024-01-05,Coffee,-20.00,100.00,Cafe,Cafe,Food,Food
2024-02-01,Payroll,500.00,600.00,Employer,Employer,Income,Income
`

func writeChecking(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "checking.csv"), []byte(checkingCSV), 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return dir
}

func TestImportServiceRun(t *testing.T) {
	dir := writeChecking(t)
	archive := newFakeArchive()
	pub := &fakePublisher{}
	svc := NewImportService(source.NewLocatorWithDirs(dir), "checking.csv", "savings.csv", archive, pub, testLogger())

	run, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected a run ID")
	}
	if run.TransactionCount != 2 || run.SnapshotCount != 0 {
		t.Fatalf("unexpected counts: %+v", run)
	}
	if len(archive.txns[run.ID]) != 2 {
		t.Fatal("expected transactions archived")
	}
	if len(pub.published) != 1 || pub.published[0].RunID != run.ID {
		t.Fatalf("expected one import event, got %+v", pub.published)
	}
}

func TestImportServicePublishFailureDoesNotFailImport(t *testing.T) {
	dir := writeChecking(t)
	archive := newFakeArchive()
	svc := NewImportService(source.NewLocatorWithDirs(dir), "checking.csv", "", archive, &fakePublisher{fail: true}, testLogger())

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("import must survive a publish failure: %v", err)
	}
}

func TestImportServiceNilPublisher(t *testing.T) {
	dir := writeChecking(t)
	svc := NewImportService(source.NewLocatorWithDirs(dir), "checking.csv", "", newFakeArchive(), nil, testLogger())
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("import must work without messaging: %v", err)
	}
}

func TestImportServiceMissingChecking(t *testing.T) {
	svc := NewImportService(source.NewLocatorWithDirs(t.TempDir()), "checking.csv", "", newFakeArchive(), nil, testLogger())
	if _, err := svc.Run(context.Background()); !errors.Is(err, core.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestArchiveProviderLoad(t *testing.T) {
	dir := writeChecking(t)
	archive := newFakeArchive()
	svc := NewImportService(source.NewLocatorWithDirs(dir), "checking.csv", "", archive, nil, testLogger())
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("seed import: %v", err)
	}

	ds, err := NewArchiveProvider(archive).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Transactions) != 2 || ds.HasSavings {
		t.Fatalf("unexpected dataset: %d txns, savings=%v", len(ds.Transactions), ds.HasSavings)
	}
}

func TestReportProcessorHandle(t *testing.T) {
	dir := writeChecking(t)
	archive := newFakeArchive()
	svc := NewImportService(source.NewLocatorWithDirs(dir), "checking.csv", "", archive, nil, testLogger())
	run, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("seed import: %v", err)
	}

	writer := memory.New()
	proc := NewReportProcessor(archive, writer, testLogger())
	msg := amqp.NewStatementImportedMessage(run.ID, "checking.csv", "", run.TransactionCount, 0)
	if err := proc.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rows := writer.Rows(run.ID)
	if len(rows) != 2 {
		t.Fatalf("expected 2 report rows, got %v", rows)
	}
	if rows[0].Month != "2024-01" || rows[0].Spend.Cents != 2000 {
		t.Fatalf("January row: %+v", rows[0])
	}
	if rows[1].Month != "2024-02" || rows[1].Deposits.Cents != 50000 {
		t.Fatalf("February row: %+v", rows[1])
	}
}

func TestReportProcessorUnknownRun(t *testing.T) {
	proc := NewReportProcessor(newFakeArchive(), memory.New(), testLogger())
	msg := amqp.NewStatementImportedMessage("missing", "x", "", 0, 0)
	if err := proc.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected error for unknown run so the message requeues")
	}
}
