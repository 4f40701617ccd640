package http

import (
	"fmt"
	"net/url"
	"strings"

	"hoadash/internal/core"
	"hoadash/internal/ledger"
)

// parseCriteria builds the filter criteria from query parameters,
// defaulting against the loaded dataset: an absent start/end falls back
// to the dataset's date span, and an absent categories/vendors parameter
// means "all observed labels". An explicitly empty parameter is an empty
// whitelist and matches nothing.
func parseCriteria(query url.Values, ds ledger.Dataset) (ledger.FilterCriteria, error) {
	minDate, maxDate := dateSpan(ds)

	start := minDate
	if v := strings.TrimSpace(query.Get("start")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return ledger.FilterCriteria{}, fmt.Errorf("start: %w", err)
		}
		start = d
	}

	end := maxDate
	if v := strings.TrimSpace(query.Get("end")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return ledger.FilterCriteria{}, fmt.Errorf("end: %w", err)
		}
		end = d
	}

	categories := parseSet(query, "categories")
	if categories == nil {
		categories = ledger.NewStringSet(ledger.DistinctCategories(ds.Transactions)...)
	}

	vendors := parseSet(query, "vendors")
	if vendors == nil {
		vendors = ledger.NewStringSet(ledger.DistinctVendors(ds.Transactions)...)
	}

	return ledger.FilterCriteria{
		Start:            start,
		End:              end,
		Categories:       categories,
		Vendors:          vendors,
		ExcludeTransfers: parseBool(query.Get("exclude_transfers")),
	}, nil
}

// parseSet returns nil when the parameter is absent, so callers can
// distinguish "use the default" from an explicit empty whitelist.
func parseSet(query url.Values, name string) ledger.StringSet {
	if !query.Has(name) {
		return nil
	}
	var values []string
	for _, raw := range query[name] {
		values = append(values, strings.Split(raw, ",")...)
	}
	return ledger.NewStringSet(values...)
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// dateSpan returns the min and max post dates of the dataset. The
// transactions are sorted by post date, so the span is the first and
// last entries.
func dateSpan(ds ledger.Dataset) (core.Date, core.Date) {
	if len(ds.Transactions) == 0 {
		today := core.Today()
		return today, today
	}
	return ds.Transactions[0].PostDate, ds.Transactions[len(ds.Transactions)-1].PostDate
}
