package ledger

import (
	"testing"

	"hoadash/internal/core"
)

func balTx(date core.Date, balanceCents int64) core.Transaction {
	return core.Transaction{
		PostDate:     date,
		Amount:       core.Money{Cents: -1},
		AmountKnown:  true,
		Balance:      core.Money{Cents: balanceCents},
		BalanceKnown: true,
	}
}

func TestBuildTimelineForwardFill(t *testing.T) {
	// Checking balances at Jan 1 (100.00) and Jan 5 (150.00), one savings
	// snapshot at Jan 3 (50.00).
	txns := []core.Transaction{
		balTx(core.NewDate(2024, 1, 1), 10000),
		balTx(core.NewDate(2024, 1, 5), 15000),
	}
	snaps := []core.SavingsSnapshot{
		{PostDate: core.NewDate(2024, 1, 3), Balance: core.Money{Cents: 5000}},
	}

	points := BuildTimeline(txns, snaps, true)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	jan1 := points[0]
	if !jan1.CheckingKnown || jan1.Checking.Cents != 10000 {
		t.Fatalf("Jan 1 checking: %+v", jan1)
	}
	if jan1.SavingsKnown {
		t.Fatalf("Jan 1 savings must be unknown before the first snapshot: %+v", jan1)
	}
	if jan1.TotalKnown {
		t.Fatalf("Jan 1 total must be unknown while savings is unknown: %+v", jan1)
	}

	jan3 := points[1]
	if jan3.Checking.Cents != 10000 {
		t.Fatalf("Jan 3 checking must carry forward 100.00: %+v", jan3)
	}
	if !jan3.SavingsKnown || jan3.Savings.Cents != 5000 {
		t.Fatalf("Jan 3 savings: %+v", jan3)
	}
	if !jan3.TotalKnown || jan3.Total.Cents != 15000 {
		t.Fatalf("Jan 3 total must be 150.00: %+v", jan3)
	}

	jan5 := points[2]
	if jan5.Checking.Cents != 15000 || jan5.Savings.Cents != 5000 || jan5.Total.Cents != 20000 {
		t.Fatalf("Jan 5: %+v", jan5)
	}
}

func TestBuildTimelineWithoutSavings(t *testing.T) {
	txns := []core.Transaction{
		balTx(core.NewDate(2024, 1, 1), 10000),
		balTx(core.NewDate(2024, 1, 5), 15000),
	}
	points := BuildTimeline(txns, nil, false)
	for _, p := range points {
		if !p.SavingsKnown || p.Savings.Cents != 0 {
			t.Fatalf("savings must be fixed at zero: %+v", p)
		}
		if !p.TotalKnown || p.Total.Cents != p.Checking.Cents {
			t.Fatalf("total must equal checking: %+v", p)
		}
	}
}

func TestBuildTimelineOnePointPerDate(t *testing.T) {
	// Two transactions on the same date: the later row's balance wins.
	txns := []core.Transaction{
		balTx(core.NewDate(2024, 1, 1), 10000),
		balTx(core.NewDate(2024, 1, 1), 9000),
	}
	points := BuildTimeline(txns, nil, false)
	if len(points) != 1 {
		t.Fatalf("expected one point per distinct date, got %d", len(points))
	}
	if points[0].Checking.Cents != 9000 {
		t.Fatalf("expected last balance of the day, got %+v", points[0])
	}
}

func TestBuildTimelineUnknownBalances(t *testing.T) {
	// A row with an unparsable balance leaves the series unknown until the
	// first known value appears.
	unknown := core.Transaction{PostDate: core.NewDate(2024, 1, 1), AmountKnown: true, Amount: core.Money{Cents: -1}}
	txns := []core.Transaction{
		unknown,
		balTx(core.NewDate(2024, 1, 2), 5000),
	}
	points := BuildTimeline(txns, nil, false)
	if points[0].CheckingKnown {
		t.Fatalf("Jan 1 checking must be unknown: %+v", points[0])
	}
	if !points[1].CheckingKnown || points[1].Checking.Cents != 5000 {
		t.Fatalf("Jan 2 checking: %+v", points[1])
	}
}
