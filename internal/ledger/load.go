// Package ledger implements the transaction aggregator: loading and
// normalizing the account exports, filtering them, and producing the
// aggregate tables the dashboard renders.
package ledger

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"hoadash/internal/cache"
	"hoadash/internal/core"
	"hoadash/internal/source"
)

// Dataset is the normalized result of one load: transactions sorted by
// post date (stable, preserving source order within a date) plus the
// merged balance timeline. It is immutable for the duration of a render.
type Dataset struct {
	Transactions []core.Transaction
	Timeline     []core.BalancePoint
	HasSavings   bool

	// MissingAmounts counts rows whose Amount failed to parse. The rows
	// stay in the set but contribute to no sum, and the count is surfaced
	// so totals are never silently short.
	MissingAmounts int
}

// Normalize builds a Dataset from parsed rows. It is a pure function:
// same inputs, same output, no side effects.
func Normalize(txns []core.Transaction, snaps []core.SavingsSnapshot, hasSavings bool) Dataset {
	sorted := append([]core.Transaction(nil), txns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PostDate.Before(sorted[j].PostDate)
	})

	missing := 0
	for _, t := range sorted {
		if !t.AmountKnown {
			missing++
		}
	}

	return Dataset{
		Transactions:   sorted,
		Timeline:       BuildTimeline(sorted, snaps, hasSavings),
		HasSavings:     hasSavings,
		MissingAmounts: missing,
	}
}

// Loader resolves, parses and normalizes the source files, memoizing the
// result keyed on source identity (path, size, mtime). Recomputation is
// deterministic, so the cache needs no invalidation beyond its TTL.
type Loader struct {
	locator      *source.Locator
	checkingFile string
	savingsFile  string
	datasets     *cache.LRU[Dataset]
}

func NewLoader(locator *source.Locator, checkingFile, savingsFile string) *Loader {
	return NewLoaderWithCache(locator, checkingFile, savingsFile, 4, 10*time.Minute)
}

// NewLoaderWithCache sizes the memoization cache explicitly.
func NewLoaderWithCache(locator *source.Locator, checkingFile, savingsFile string, cacheSize int, cacheTTL time.Duration) *Loader {
	return &Loader{
		locator:      locator,
		checkingFile: checkingFile,
		savingsFile:  savingsFile,
		datasets:     cache.NewLRU[Dataset](cacheSize, cacheTTL),
	}
}

// Load returns the normalized dataset. The checking source is required;
// a missing savings source degrades to a checking-only timeline.
func (l *Loader) Load(ctx context.Context) (Dataset, error) {
	checkingPath, err := l.locator.Resolve(l.checkingFile)
	if err != nil {
		return Dataset{}, err
	}

	savingsPath := ""
	if l.savingsFile != "" {
		if p, err := l.locator.Resolve(l.savingsFile); err == nil {
			savingsPath = p
		} else {
			slog.InfoContext(ctx, "Savings source not found, using checking-only timeline",
				"file", l.savingsFile)
		}
	}

	key, err := l.cacheKey(checkingPath, savingsPath)
	if err != nil {
		return Dataset{}, err
	}

	return l.datasets.GetOrFill(key, func() (Dataset, error) {
		return loadFiles(ctx, checkingPath, savingsPath)
	})
}

func (l *Loader) cacheKey(checkingPath, savingsPath string) (string, error) {
	key, err := source.Identity(checkingPath)
	if err != nil {
		return "", err
	}
	if savingsPath != "" {
		savingsID, err := source.Identity(savingsPath)
		if err != nil {
			return "", err
		}
		key += "+" + savingsID
	}
	return key, nil
}

func loadFiles(ctx context.Context, checkingPath, savingsPath string) (Dataset, error) {
	start := time.Now()

	txns, err := source.ReadCheckingFile(checkingPath)
	if err != nil {
		return Dataset{}, err
	}

	var snaps []core.SavingsSnapshot
	hasSavings := savingsPath != ""
	if hasSavings {
		snaps, err = source.ReadSavingsFile(savingsPath)
		if err != nil {
			return Dataset{}, err
		}
	}

	ds := Normalize(txns, snaps, hasSavings)
	slog.InfoContext(ctx, "Loaded and normalized sources",
		"checking", checkingPath,
		"savings", savingsPath,
		"transactions", len(ds.Transactions),
		"timeline_points", len(ds.Timeline),
		"missing_amounts", ds.MissingAmounts,
		"duration_ms", time.Since(start).Milliseconds())
	return ds, nil
}
