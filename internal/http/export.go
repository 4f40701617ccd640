package http

import (
	"encoding/csv"
	"log/slog"
	"net/http"

	"hoadash/internal/core"
	"hoadash/internal/ledger"
	"hoadash/internal/log"
)

var exportHeader = []string{
	"Post Date", "Description", "Amount", "Balance",
	"Vendor", "Auto Vendor", "Category", "Auto Category",
}

// handleExport streams the filtered transaction set as a CSV download,
// sorted by post date ascending. Unknown amounts and balances export as
// empty cells, matching the source rows they came from.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
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

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		slog.ErrorContext(r.Context(), "Export write failed", log.FieldError, err)
		return
	}
	for _, t := range filtered {
		record := []string{
			t.PostDate.String(),
			t.Description,
			moneyCell(t.Amount, t.AmountKnown),
			moneyCell(t.Balance, t.BalanceKnown),
			t.Vendor,
			t.AutoVendor,
			t.Category,
			t.AutoCategory,
		}
		if err := cw.Write(record); err != nil {
			slog.ErrorContext(r.Context(), "Export write failed", log.FieldError, err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.ErrorContext(r.Context(), "Export flush failed", log.FieldError, err)
	}

	slog.InfoContext(r.Context(), "Exported transactions",
		log.FieldOperation, log.OpExport,
		log.FieldRows, len(filtered))
}

func moneyCell(m core.Money, known bool) string {
	if !known {
		return ""
	}
	return m.String()
}
