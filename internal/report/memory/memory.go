// Package memory is an in-memory report writer for tests and local runs.
package memory

import (
	"context"
	"sync"

	"hoadash/internal/report"
)

type Store struct {
	mu   sync.Mutex
	rows map[string][]report.MonthlySummary
}

var _ report.Writer = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[string][]report.MonthlySummary)}
}

func (s *Store) AppendSummaries(_ context.Context, runID string, rows []report.MonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[runID] = append(s.rows[runID], rows...)
	return nil
}

// Rows returns the rows appended for a run.
func (s *Store) Rows(runID string) []report.MonthlySummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.MonthlySummary(nil), s.rows[runID]...)
}
