package ledger

import (
	"sort"
	"strings"

	"hoadash/internal/core"
)

// StringSet is the whitelist used for category and vendor filtering.
type StringSet map[string]struct{}

func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
	return s
}

func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members sorted ascending.
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// FilterCriteria selects the transactions shown on one dashboard render.
// Categories and Vendors are whitelists over observed labels: a transaction
// whose label is blank or not a member is excluded.
type FilterCriteria struct {
	Start            core.Date
	End              core.Date
	Categories       StringSet
	Vendors          StringSet
	ExcludeTransfers bool
}

func (c FilterCriteria) Validate() error {
	if err := c.Start.Validate(); err != nil {
		return err
	}
	if err := c.End.Validate(); err != nil {
		return err
	}
	if c.Start.After(c.End) {
		return core.ErrInvalidDateRange
	}
	return nil
}

// matches applies the per-transaction predicate.
func (c FilterCriteria) matches(t core.Transaction) bool {
	if t.PostDate.Before(c.Start) || t.PostDate.After(c.End) {
		return false
	}
	if !c.Categories.Has(t.Category) {
		return false
	}
	if !c.Vendors.Has(t.Vendor) {
		return false
	}
	if c.ExcludeTransfers && strings.Contains(strings.ToLower(t.Category), "transfer") {
		return false
	}
	return true
}

// ApplyFilter returns the transactions matching the criteria, preserving
// input order. The result is a new slice; the input is never mutated.
func ApplyFilter(txns []core.Transaction, c FilterCriteria) ([]core.Transaction, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if c.matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// FilterTimeline returns the balance points within [start, end], preserving
// order.
func FilterTimeline(points []core.BalancePoint, start, end core.Date) []core.BalancePoint {
	out := make([]core.BalancePoint, 0, len(points))
	for _, p := range points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}
