package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"hoadash/internal/core"
)

// Checking export columns. Post Date, Description and Amount are required;
// the rest default to blank (labels) or zero (Balance) when the column is
// absent. Schema validation happens up front so a missing required column
// fails the load before any row is parsed.
const (
	colPostDate     = "Post Date"
	colDescription  = "Description"
	colAmount       = "Amount"
	colBalance      = "Balance"
	colVendor       = "Vendor"
	colAutoVendor   = "Auto Vendor"
	colCategory     = "Category"
	colAutoCategory = "Auto Category"
)

var checkingRequired = []string{colPostDate, colDescription, colAmount}

var savingsRequired = []string{colPostDate, colBalance}

// columnIndex maps trimmed header names to their position.
type columnIndex map[string]int

func readHeader(r *csv.Reader, name string, required []string) (columnIndex, error) {
	record, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &core.MalformedInputError{Source: name, Row: 0, Field: "header", Err: errors.New("empty file")}
		}
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	idx := make(columnIndex, len(record))
	for i, col := range record {
		idx[strings.TrimSpace(col)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, &core.MalformedInputError{
				Source: name,
				Row:    0,
				Field:  col,
				Err:    errors.New("required column missing"),
			}
		}
	}
	return idx, nil
}

func (idx columnIndex) get(record []string, col string) (string, bool) {
	i, ok := idx[col]
	if !ok || i >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[i]), true
}

// ReadChecking parses the checking export. Rows with an unparsable
// Post Date fail the whole load; rows with an unparsable Amount or Balance
// are kept with the field marked missing so aggregation can exclude it
// without silently dropping the row.
func ReadChecking(reader io.Reader, name string) ([]core.Transaction, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1

	idx, err := readHeader(r, name, checkingRequired)
	if err != nil {
		return nil, err
	}
	_, hasBalanceCol := idx[colBalance]

	var out []core.Transaction
	row := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		row++

		rawDate, _ := idx.get(record, colPostDate)
		postDate, err := core.ParseDate(rawDate)
		if err != nil {
			return nil, &core.MalformedInputError{Source: name, Row: row, Field: colPostDate, Err: err}
		}

		t := core.Transaction{PostDate: postDate}
		t.Description, _ = idx.get(record, colDescription)
		t.Vendor, _ = idx.get(record, colVendor)
		t.AutoVendor, _ = idx.get(record, colAutoVendor)
		t.Category, _ = idx.get(record, colCategory)
		t.AutoCategory, _ = idx.get(record, colAutoCategory)

		if raw, _ := idx.get(record, colAmount); raw != "" {
			if m, err := core.ParseMoney(raw); err == nil {
				t.Amount = m
				t.AmountKnown = true
			}
		}
		if !hasBalanceCol {
			// Absent column defaults to a known zero balance.
			t.BalanceKnown = true
		} else if raw, _ := idx.get(record, colBalance); raw != "" {
			if m, err := core.ParseMoney(raw); err == nil {
				t.Balance = m
				t.BalanceKnown = true
			}
		}

		out = append(out, t)
	}
	return out, nil
}

// ReadSavings parses the optional savings history. Rows with a blank or
// unparsable Balance are dropped; an unparsable Post Date fails the load.
func ReadSavings(reader io.Reader, name string) ([]core.SavingsSnapshot, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1

	idx, err := readHeader(r, name, savingsRequired)
	if err != nil {
		return nil, err
	}

	var out []core.SavingsSnapshot
	row := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		row++

		rawDate, _ := idx.get(record, colPostDate)
		postDate, err := core.ParseDate(rawDate)
		if err != nil {
			return nil, &core.MalformedInputError{Source: name, Row: row, Field: colPostDate, Err: err}
		}

		raw, _ := idx.get(record, colBalance)
		if raw == "" {
			continue
		}
		m, err := core.ParseMoney(raw)
		if err != nil {
			continue
		}
		out = append(out, core.SavingsSnapshot{PostDate: postDate, Balance: m})
	}
	return out, nil
}

// ReadCheckingFile opens and parses a checking export by path.
func ReadCheckingFile(path string) ([]core.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadChecking(f, path)
}

// ReadSavingsFile opens and parses a savings history by path.
func ReadSavingsFile(path string) ([]core.SavingsSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSavings(f, path)
}
