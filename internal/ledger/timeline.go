package ledger

import (
	"sort"

	"hoadash/internal/core"
)

// BuildTimeline merges checking balances and savings snapshots into one
// ordered series with a row per distinct post date.
//
// The merge is a scan over the sorted union of dates carrying two
// independent last-known values. A series stays unknown until its first
// observed value; after that the most recent value is carried forward.
// When hasSavings is false the savings series is fixed at zero and the
// total equals the checking balance.
func BuildTimeline(txns []core.Transaction, snaps []core.SavingsSnapshot, hasSavings bool) []core.BalancePoint {
	// Latest observed balance per date. Inputs are in normalized order, so
	// for several rows on one date the last row's balance wins.
	checking := make(map[string]core.Money)
	savings := make(map[string]core.Money)
	dates := make(map[string]core.Date)

	for _, t := range txns {
		key := t.PostDate.String()
		dates[key] = t.PostDate
		if t.BalanceKnown {
			checking[key] = t.Balance
		}
	}
	if hasSavings {
		for _, s := range snaps {
			key := s.PostDate.String()
			dates[key] = s.PostDate
			savings[key] = s.Balance
		}
	}

	keys := make([]string, 0, len(dates))
	for k := range dates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]core.BalancePoint, 0, len(keys))
	var (
		lastChecking      core.Money
		lastCheckingKnown bool
		lastSavings       core.Money
		lastSavingsKnown  = !hasSavings // fixed zero series when absent
	)
	for _, k := range keys {
		if v, ok := checking[k]; ok {
			lastChecking = v
			lastCheckingKnown = true
		}
		if v, ok := savings[k]; ok {
			lastSavings = v
			lastSavingsKnown = true
		}
		p := core.BalancePoint{
			Date:          dates[k],
			Checking:      lastChecking,
			CheckingKnown: lastCheckingKnown,
			Savings:       lastSavings,
			SavingsKnown:  lastSavingsKnown,
		}
		if p.CheckingKnown && p.SavingsKnown {
			p.Total = p.Checking.Add(p.Savings)
			p.TotalKnown = true
		}
		out = append(out, p)
	}
	return out
}
