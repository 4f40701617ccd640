package ledger

import (
	"reflect"
	"testing"

	"hoadash/internal/core"
)

func tx(date core.Date, cents int64, category, vendor string) core.Transaction {
	return core.Transaction{
		PostDate:    date,
		Amount:      core.Money{Cents: cents},
		AmountKnown: true,
		Category:    category,
		Vendor:      vendor,
	}
}

func TestAggregateMonthlySumConsistency(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 1, 5), -2000, "Food", "Cafe"),
		tx(core.NewDate(2024, 1, 20), -3000, "Food", "Cafe"),
		tx(core.NewDate(2024, 2, 2), -1500, "Utilities", "Power Co"),
		tx(core.NewDate(2024, 2, 10), 50000, "Income", "Employer"),
		{PostDate: core.NewDate(2024, 2, 11)}, // missing amount
		tx(core.NewDate(2024, 2, 12), 0, "Food", "Cafe"),
	}

	monthly := AggregateMonthly(txns, Expenses)
	var sum int64
	for _, m := range monthly {
		sum += m.Total.Cents
	}
	if grand := TotalExpenses(txns); sum != grand.Cents {
		t.Fatalf("monthly expense sum %d != grand total %d", sum, grand.Cents)
	}
	if sum != 6500 {
		t.Fatalf("expected 6500 cents of expenses, got %d", sum)
	}

	deposits := AggregateMonthly(txns, Deposits)
	var depSum int64
	for _, m := range deposits {
		depSum += m.Total.Cents
	}
	if grand := TotalDeposits(txns); depSum != grand.Cents {
		t.Fatalf("monthly deposit sum %d != grand total %d", depSum, grand.Cents)
	}
}

func TestAggregatePartitionCompleteness(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 1, 1), -100, "A", "v"),
		tx(core.NewDate(2024, 1, 2), 200, "B", "v"),
		tx(core.NewDate(2024, 1, 3), -300, "C", "v"),
		tx(core.NewDate(2024, 1, 4), 0, "D", "v"),
		{PostDate: core.NewDate(2024, 1, 5)}, // missing amount
	}

	// Every nonzero known amount lands on exactly one side.
	for _, tr := range txns {
		inExpenses := tr.IsExpense()
		inDeposits := tr.IsDeposit()
		if inExpenses && inDeposits {
			t.Fatalf("transaction on %s in both partitions", tr.PostDate)
		}
		if tr.AmountKnown && tr.Amount.Cents != 0 && !inExpenses && !inDeposits {
			t.Fatalf("nonzero transaction on %s in neither partition", tr.PostDate)
		}
	}

	if got := TotalExpenses(txns).Cents + TotalDeposits(txns).Cents; got != 100+200+300 {
		t.Fatalf("partition totals incomplete: %d", got)
	}
}

func TestAggregateMonthlyOrdering(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 3, 1), -100, "A", "v"),
		tx(core.NewDate(2023, 12, 1), -200, "A", "v"),
		tx(core.NewDate(2024, 1, 1), -300, "A", "v"),
	}
	got := AggregateMonthly(txns, Expenses)
	want := []MonthlyTotal{
		{Month: "2023-12", Total: core.Money{Cents: 200}},
		{Month: "2024-01", Total: core.Money{Cents: 300}},
		{Month: "2024-03", Total: core.Money{Cents: 100}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAggregateByCategory(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 1, 5), -2000, "Food", "Cafe"),
		tx(core.NewDate(2024, 1, 9), -1000, "Food", "Deli"),
		tx(core.NewDate(2024, 1, 12), -500, "Utilities", "Power Co"),
		tx(core.NewDate(2024, 2, 1), -700, "Food", "Cafe"),
		tx(core.NewDate(2024, 1, 2), 9999, "Income", "Employer"), // deposit, excluded
	}
	got := AggregateByCategory(txns)
	want := []CategoryMonthlyTotal{
		{Month: "2024-01", Category: "Food", Total: core.Money{Cents: 3000}},
		{Month: "2024-01", Category: "Utilities", Total: core.Money{Cents: 500}},
		{Month: "2024-02", Category: "Food", Total: core.Money{Cents: 700}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAggregateByVendorRankingDeterminism(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 1, 1), -100, "A", "Zeta"),
		tx(core.NewDate(2024, 1, 2), -100, "A", "Alpha"),
		tx(core.NewDate(2024, 1, 3), -300, "A", "Mid"),
	}

	first := AggregateByVendor(txns)
	second := AggregateByVendor(txns)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two runs differ: %v vs %v", first, second)
	}

	want := []VendorTotal{
		{Vendor: "Mid", Total: core.Money{Cents: 300}},
		{Vendor: "Alpha", Total: core.Money{Cents: 100}}, // tie broken by name
		{Vendor: "Zeta", Total: core.Money{Cents: 100}},
	}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("expected %v, got %v", want, first)
	}
}

func TestEndToEndExample(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 1, 5), -2000, "Food", "Cafe"),
		tx(core.NewDate(2024, 1, 20), -3000, "Food", "Cafe"),
		tx(core.NewDate(2024, 2, 1), 50000, "Income", "Employer"),
	}

	expenses := AggregateMonthly(txns, Expenses)
	if len(expenses) != 1 || expenses[0].Month != "2024-01" || expenses[0].Total.Cents != 5000 {
		t.Fatalf("expenses: expected [(2024-01, 50.00)], got %v", expenses)
	}

	deposits := AggregateMonthly(txns, Deposits)
	if len(deposits) != 1 || deposits[0].Month != "2024-02" || deposits[0].Total.Cents != 50000 {
		t.Fatalf("deposits: expected [(2024-02, 500.00)], got %v", deposits)
	}

	vendors := AggregateByVendor(txns)
	if len(vendors) != 1 || vendors[0].Vendor != "Cafe" || vendors[0].Total.Cents != 5000 {
		t.Fatalf("vendors: expected [(Cafe, 50.00)], got %v", vendors)
	}
}

func TestDistinctLabels(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 1, 1), -1, "Food", "Cafe"),
		tx(core.NewDate(2024, 1, 2), -1, "Food", "Deli"),
		tx(core.NewDate(2024, 1, 3), -1, "", "Cafe"),
		tx(core.NewDate(2024, 1, 4), -1, "Utilities", " "),
	}
	if got := DistinctCategories(txns); !reflect.DeepEqual(got, []string{"Food", "Utilities"}) {
		t.Fatalf("categories: got %v", got)
	}
	if got := DistinctVendors(txns); !reflect.DeepEqual(got, []string{"Cafe", "Deli"}) {
		t.Fatalf("vendors: got %v", got)
	}
}
