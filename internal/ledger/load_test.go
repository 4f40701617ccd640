package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hoadash/internal/core"
	"hoadash/internal/source"
)

const checkingCSV = `Post Date,Description,Amount,Balance,Vendor,Auto Vendor,Category,Auto Category
2024-01-20,Groceries,-30.00,70.00,Cafe,Cafe,Food,Food
2024-01-05,Coffee,-20.00,100.00,Cafe,Cafe,Food,Food
2024-01-05,Lunch,bogus,95.00,Deli,Deli,Food,Food
2024-02-01,Payroll,500.00,570.00,Employer,Employer,Income,Income
`

const savingsCSV = `Post Date,Balance
2024-01-10,250.00
`

func writeFixtures(t *testing.T, withSavings bool) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "checking.csv"), []byte(checkingCSV), 0o644); err != nil {
		t.Fatalf("write checking fixture: %v", err)
	}
	if withSavings {
		if err := os.WriteFile(filepath.Join(dir, "savings.csv"), []byte(savingsCSV), 0o644); err != nil {
			t.Fatalf("write savings fixture: %v", err)
		}
	}
	return dir
}

func TestLoaderNormalizesAndSorts(t *testing.T) {
	dir := writeFixtures(t, true)
	loader := NewLoader(source.NewLocatorWithDirs(dir), "checking.csv", "savings.csv")

	ds, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Transactions) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(ds.Transactions))
	}

	// Sorted by post date; the two Jan 5 rows keep their source order.
	if ds.Transactions[0].Description != "Coffee" || ds.Transactions[1].Description != "Lunch" {
		t.Fatalf("stable sort violated: %q then %q", ds.Transactions[0].Description, ds.Transactions[1].Description)
	}
	if ds.Transactions[3].Description != "Payroll" {
		t.Fatalf("expected Payroll last, got %q", ds.Transactions[3].Description)
	}

	// The bogus amount is kept but counted as missing.
	if ds.Transactions[1].AmountKnown {
		t.Fatal("unparsable amount must be marked missing")
	}
	if ds.MissingAmounts != 1 {
		t.Fatalf("expected 1 missing amount, got %d", ds.MissingAmounts)
	}

	if !ds.HasSavings {
		t.Fatal("expected savings source to be picked up")
	}
	// Dates: Jan 5, Jan 10 (savings only), Jan 20, Feb 1.
	if len(ds.Timeline) != 4 {
		t.Fatalf("expected 4 timeline points, got %d", len(ds.Timeline))
	}
	jan10 := ds.Timeline[1]
	if !jan10.Date.Equal(core.NewDate(2024, 1, 10)) {
		t.Fatalf("expected Jan 10 savings date in union, got %s", jan10.Date)
	}
	if jan10.Checking.Cents != 9500 {
		t.Fatalf("Jan 10 checking must carry forward the last Jan 5 balance, got %+v", jan10)
	}
	if jan10.Savings.Cents != 25000 || !jan10.TotalKnown || jan10.Total.Cents != 34500 {
		t.Fatalf("Jan 10 merge wrong: %+v", jan10)
	}
}

func TestLoaderWithoutSavingsDegrades(t *testing.T) {
	dir := writeFixtures(t, false)
	loader := NewLoader(source.NewLocatorWithDirs(dir), "checking.csv", "savings.csv")

	ds, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.HasSavings {
		t.Fatal("expected HasSavings=false when the savings file is absent")
	}
	for _, p := range ds.Timeline {
		if !p.SavingsKnown || p.Savings.Cents != 0 {
			t.Fatalf("savings must be fixed zero: %+v", p)
		}
	}
}

func TestLoaderMissingCheckingFails(t *testing.T) {
	loader := NewLoader(source.NewLocatorWithDirs(t.TempDir()), "checking.csv", "")
	if _, err := loader.Load(context.Background()); !errors.Is(err, core.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestLoaderMemoizesByIdentity(t *testing.T) {
	dir := writeFixtures(t, false)
	loader := NewLoader(source.NewLocatorWithDirs(dir), "checking.csv", "")

	first, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Corrupt the file without touching size or mtime tracking: rewrite
	// with different dates but force the old mtime back.
	path := filepath.Join(dir, "checking.csv")
	info, _ := os.Stat(path)
	if err := os.WriteFile(path, []byte(checkingCSV), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := os.Chtimes(path, info.ModTime(), info.ModTime()); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	second, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(first.Transactions) != len(second.Transactions) {
		t.Fatal("identical identity must serve the memoized dataset")
	}
}

func TestNormalizeIsPure(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 2, 1), -1, "A", "v"),
		tx(core.NewDate(2024, 1, 1), -1, "A", "v"),
	}
	before := append([]core.Transaction(nil), txns...)
	_ = Normalize(txns, nil, false)
	for i := range txns {
		if !txns[i].PostDate.Equal(before[i].PostDate) {
			t.Fatal("Normalize must not mutate its input")
		}
	}
}
