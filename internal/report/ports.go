// Package report turns archived imports into the monthly board report and
// defines the outbound port for where that report is written.
package report

import (
	"context"
	"sort"

	"hoadash/internal/core"
	"hoadash/internal/ledger"
)

// MonthlySummary is one report row: a month's spend, deposits and net.
type MonthlySummary struct {
	Month    string
	Spend    core.Money
	Deposits core.Money
	Net      core.Money
}

// Writer appends report rows to a destination sheet.
type Writer interface {
	AppendSummaries(ctx context.Context, runID string, rows []MonthlySummary) error
}

// BuildSummaries derives the report from normalized transactions, one row
// per month observed on either side of the ledger, ordered by month.
func BuildSummaries(txns []core.Transaction) []MonthlySummary {
	spend := ledger.AggregateMonthly(txns, ledger.Expenses)
	deposits := ledger.AggregateMonthly(txns, ledger.Deposits)

	byMonth := make(map[string]*MonthlySummary)
	months := make([]string, 0, len(spend)+len(deposits))
	get := func(month string) *MonthlySummary {
		if s, ok := byMonth[month]; ok {
			return s
		}
		s := &MonthlySummary{Month: month}
		byMonth[month] = s
		months = append(months, month)
		return s
	}
	for _, m := range spend {
		get(m.Month).Spend = m.Total
	}
	for _, m := range deposits {
		get(m.Month).Deposits = m.Total
	}

	// Month buckets sort chronologically as strings; spend rows arrive
	// sorted, deposit-only months may land out of order.
	out := make([]MonthlySummary, 0, len(months))
	for _, month := range months {
		s := byMonth[month]
		s.Net = s.Deposits.Add(core.Money{Cents: -s.Spend.Cents})
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
