package ledger

import (
	"sort"
	"strings"

	"hoadash/internal/core"
)

// Sign selects which side of the ledger a monthly aggregate covers.
type Sign int

const (
	// Expenses sums the absolute value of negative amounts.
	Expenses Sign = iota
	// Deposits sums positive amounts as-is.
	Deposits
)

type (
	// MonthlyTotal is one month's total for a single sign.
	MonthlyTotal struct {
		Month string
		Total core.Money
	}

	// CategoryMonthlyTotal is one month's expense total for one category.
	CategoryMonthlyTotal struct {
		Month    string
		Category string
		Total    core.Money
	}

	// VendorTotal is one vendor's expense total across the filtered range.
	VendorTotal struct {
		Vendor string
		Total  core.Money
	}
)

// AggregateMonthly groups transactions of the given sign by month bucket.
// Zero and missing amounts contribute to neither sign. The result is
// ordered by month ascending.
func AggregateMonthly(txns []core.Transaction, sign Sign) []MonthlyTotal {
	sums := make(map[string]int64)
	for _, t := range txns {
		switch sign {
		case Expenses:
			if !t.IsExpense() {
				continue
			}
			sums[t.Month()] += -t.Amount.Cents
		case Deposits:
			if !t.IsDeposit() {
				continue
			}
			sums[t.Month()] += t.Amount.Cents
		}
	}
	out := make([]MonthlyTotal, 0, len(sums))
	for month, cents := range sums {
		out = append(out, MonthlyTotal{Month: month, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// AggregateByCategory groups expense transactions by (month, category),
// summing absolute amounts. The result is ordered by month ascending, then
// category ascending.
func AggregateByCategory(txns []core.Transaction) []CategoryMonthlyTotal {
	type key struct{ month, category string }
	sums := make(map[key]int64)
	for _, t := range txns {
		if !t.IsExpense() {
			continue
		}
		sums[key{t.Month(), t.Category}] += -t.Amount.Cents
	}
	out := make([]CategoryMonthlyTotal, 0, len(sums))
	for k, cents := range sums {
		out = append(out, CategoryMonthlyTotal{Month: k.month, Category: k.category, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// AggregateByVendor sums absolute expense amounts per vendor, ordered by
// total descending with vendor name ascending as the tiebreak so the
// ranking is deterministic.
func AggregateByVendor(txns []core.Transaction) []VendorTotal {
	sums := make(map[string]int64)
	for _, t := range txns {
		if !t.IsExpense() {
			continue
		}
		sums[t.Vendor] += -t.Amount.Cents
	}
	out := make([]VendorTotal, 0, len(sums))
	for vendor, cents := range sums {
		out = append(out, VendorTotal{Vendor: vendor, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Vendor < out[j].Vendor
	})
	return out
}

// TotalExpenses is the grand total of absolute negative amounts, matching
// the sum of AggregateMonthly(txns, Expenses).
func TotalExpenses(txns []core.Transaction) core.Money {
	var cents int64
	for _, t := range txns {
		if t.IsExpense() {
			cents += -t.Amount.Cents
		}
	}
	return core.Money{Cents: cents}
}

// TotalDeposits is the grand total of positive amounts.
func TotalDeposits(txns []core.Transaction) core.Money {
	var cents int64
	for _, t := range txns {
		if t.IsDeposit() {
			cents += t.Amount.Cents
		}
	}
	return core.Money{Cents: cents}
}

// DistinctCategories returns the sorted distinct non-blank category labels.
// These seed the whitelist defaults, mirroring a multiselect that starts
// with every observed value selected.
func DistinctCategories(txns []core.Transaction) []string {
	return distinct(txns, func(t core.Transaction) string { return t.Category })
}

// DistinctVendors returns the sorted distinct non-blank vendor labels.
func DistinctVendors(txns []core.Transaction) []string {
	return distinct(txns, func(t core.Transaction) string { return t.Vendor })
}

func distinct(txns []core.Transaction, field func(core.Transaction) string) []string {
	seen := make(map[string]struct{})
	for _, t := range txns {
		v := strings.TrimSpace(field(t))
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
