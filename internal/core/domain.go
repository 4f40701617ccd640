package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Date is a calendar date with no time-of-day component.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one normalized row of the checking export.
	// Amount and Balance carry a Known flag: a value that failed to parse
	// stays on the row but is excluded from every aggregate sum.
	Transaction struct {
		PostDate     Date
		Description  string
		Amount       Money
		AmountKnown  bool
		Balance      Money
		BalanceKnown bool
		Vendor       string
		AutoVendor   string
		Category     string
		AutoCategory string
	}

	// SavingsSnapshot is one row of the optional savings balance history.
	SavingsSnapshot struct {
		PostDate Date
		Balance  Money
	}

	// BalancePoint is one row of the merged balance timeline. A series is
	// unknown at a date until its first observed value appears; after that
	// the last observed value is carried forward.
	BalancePoint struct {
		Date          Date
		Checking      Money
		CheckingKnown bool
		Savings       Money
		SavingsKnown  bool
		Total         Money
		TotalKnown    bool
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrSourceNotFound   = errors.New("source file not found")
)

// MalformedInputError reports a source row that failed required parsing.
// Row is 1-based and counts data rows, excluding the header.
type MalformedInputError struct {
	Source string
	Row    int
	Field  string
	Err    error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input in %s row %d: field %q: %v", e.Source, e.Row, e.Field, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a calendar date, accepting ISO (2006-01-02) and the
// US-style formats that bank exports use (1/2/2006, 01/02/2006).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "1/2/2006", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }

// String renders the date as YYYY-MM-DD.
func (d Date) String() string { return d.Format("2006-01-02") }

// MonthBucket returns the year-month grouping key, e.g. "2024-03".
// Lexicographic order of buckets equals chronological order.
func (d Date) MonthBucket() string { return d.Format("2006-01") }

// Month returns the month bucket of the transaction's post date.
func (t Transaction) Month() string { return t.PostDate.MonthBucket() }

// IsExpense reports whether the transaction is a known negative amount.
func (t Transaction) IsExpense() bool { return t.AmountKnown && t.Amount.Cents < 0 }

// IsDeposit reports whether the transaction is a known positive amount.
func (t Transaction) IsDeposit() bool { return t.AmountKnown && t.Amount.Cents > 0 }

func (t Transaction) Validate() error {
	return t.PostDate.Validate()
}
