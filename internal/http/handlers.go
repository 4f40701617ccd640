package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"hoadash/internal/core"
	"hoadash/internal/ledger"
	"hoadash/internal/log"
)

type filtersResponse struct {
	Categories []string `json:"categories"`
	Vendors    []string `json:"vendors"`
	MinDate    string   `json:"min_date"`
	MaxDate    string   `json:"max_date"`
	HasSavings bool     `json:"has_savings"`
}

type monthlyTotalJSON struct {
	Month      string `json:"month"`
	TotalCents int64  `json:"total_cents"`
}

type categoryMonthlyJSON struct {
	Month      string `json:"month"`
	Category   string `json:"category"`
	TotalCents int64  `json:"total_cents"`
}

type vendorTotalJSON struct {
	Vendor     string `json:"vendor"`
	TotalCents int64  `json:"total_cents"`
}

// balancePointJSON carries nil for balances not yet observed, so charts
// can show a gap instead of a fake zero.
type balancePointJSON struct {
	Date          string `json:"date"`
	CheckingCents *int64 `json:"checking_cents"`
	SavingsCents  *int64 `json:"savings_cents"`
	TotalCents    *int64 `json:"total_cents"`
}

type dashboardResponse struct {
	Start              string                `json:"start"`
	End                string                `json:"end"`
	TransactionCount   int                   `json:"transaction_count"`
	MissingAmounts     int                   `json:"missing_amounts"`
	HasSavings         bool                  `json:"has_savings"`
	TotalSpendCents    int64                 `json:"total_spend_cents"`
	TotalDepositsCents int64                 `json:"total_deposits_cents"`
	NetCents           int64                 `json:"net_cents"`
	MonthlySpend       []monthlyTotalJSON    `json:"monthly_spend"`
	MonthlyDeposits    []monthlyTotalJSON    `json:"monthly_deposits"`
	SpendByCategory    []categoryMonthlyJSON `json:"spend_by_category"`
	VendorTotals       []vendorTotalJSON     `json:"vendor_totals"`
	Timeline           []balancePointJSON    `json:"timeline"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if resp, found := s.filtersCache.Get("filters"); found {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	ds, err := s.provider.Load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	minDate, maxDate := dateSpan(ds)
	resp := filtersResponse{
		Categories: ledger.DistinctCategories(ds.Transactions),
		Vendors:    ledger.DistinctVendors(ds.Transactions),
		MinDate:    minDate.String(),
		MaxDate:    maxDate.String(),
		HasSavings: ds.HasSavings,
	}

	s.filtersCache.Set("filters", resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cacheKey := r.URL.RawQuery
	if resp, found := s.dashboardCache.Get(cacheKey); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", log.FieldCacheKey, cacheKey)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	ds, err := s.provider.Load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	criteria, err := parseCriteria(r.URL.Query(), ds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filtered, err := ledger.ApplyFilter(ds.Transactions, criteria)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := dashboardResponse{
		Start:            criteria.Start.String(),
		End:              criteria.End.String(),
		TransactionCount: len(filtered),
		HasSavings:       ds.HasSavings,
	}
	for _, t := range filtered {
		if !t.AmountKnown {
			resp.MissingAmounts++
		}
	}

	// The aggregates are independent and read-only over the filtered
	// slice, so they run concurrently.
	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() error {
		for _, m := range ledger.AggregateMonthly(filtered, ledger.Expenses) {
			resp.MonthlySpend = append(resp.MonthlySpend, monthlyTotalJSON{Month: m.Month, TotalCents: m.Total.Cents})
		}
		resp.TotalSpendCents = ledger.TotalExpenses(filtered).Cents
		return nil
	})
	g.Go(func() error {
		for _, m := range ledger.AggregateMonthly(filtered, ledger.Deposits) {
			resp.MonthlyDeposits = append(resp.MonthlyDeposits, monthlyTotalJSON{Month: m.Month, TotalCents: m.Total.Cents})
		}
		resp.TotalDepositsCents = ledger.TotalDeposits(filtered).Cents
		return nil
	})
	g.Go(func() error {
		for _, c := range ledger.AggregateByCategory(filtered) {
			resp.SpendByCategory = append(resp.SpendByCategory, categoryMonthlyJSON{Month: c.Month, Category: c.Category, TotalCents: c.Total.Cents})
		}
		return nil
	})
	g.Go(func() error {
		for _, v := range ledger.AggregateByVendor(filtered) {
			resp.VendorTotals = append(resp.VendorTotals, vendorTotalJSON{Vendor: v.Vendor, TotalCents: v.Total.Cents})
		}
		return nil
	})
	_ = g.Wait()

	resp.NetCents = resp.TotalDepositsCents - resp.TotalSpendCents

	for _, p := range ledger.FilterTimeline(ds.Timeline, criteria.Start, criteria.End) {
		point := balancePointJSON{Date: p.Date.String()}
		if p.CheckingKnown {
			point.CheckingCents = centsPtr(p.Checking)
		}
		if p.SavingsKnown {
			point.SavingsCents = centsPtr(p.Savings)
		}
		if p.TotalKnown {
			point.TotalCents = centsPtr(p.Total)
		}
		resp.Timeline = append(resp.Timeline, point)
	}

	s.dashboardCache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

func centsPtr(m core.Money) *int64 {
	c := m.Cents
	return &c
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Response encoding failed", log.FieldError, err)
	}
}

// writeError maps domain errors onto HTTP statuses: a missing required
// source blocks the dashboard (503), a backwards date range or bad date
// parameter is the client's fault (422), and malformed source rows are
// reported with their source and row (500).
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var malformed *core.MalformedInputError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrSourceNotFound):
		status = http.StatusServiceUnavailable
	case errors.Is(err, core.ErrInvalidDateRange), errors.Is(err, core.ErrInvalidDate):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &malformed):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
	} else {
		slog.WarnContext(r.Context(), "Request rejected", log.FieldError, err, log.FieldPath, r.URL.Path)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
