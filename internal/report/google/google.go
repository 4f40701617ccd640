// Package google writes board report rows to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"hoadash/internal/report"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ report.Writer = (*Client)(nil)

// New creates a Sheets-backed report writer.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Board Report"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON or
// GOOGLE_SERVICE_ACCOUNT_FILE, falling back to Application Default
// Credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if creds := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); creds != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(creds)),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	if file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")); file != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsFile(file),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	return gsheet.NewService(ctx, goption.WithScopes(gsheet.SpreadsheetsScope))
}

// AppendSummaries appends one row per month to the report sheet:
// run ID, synced-at timestamp, month, spend, deposits, net.
func (c *Client) AppendSummaries(ctx context.Context, runID string, rows []report.MonthlySummary) error {
	if len(rows) == 0 {
		return nil
	}

	syncedAt := time.Now().UTC().Format(time.RFC3339)
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		values = append(values, []any{
			runID,
			syncedAt,
			r.Month,
			r.Spend.String(),
			r.Deposits.String(),
			r.Net.String(),
		})
	}

	rangeRef := fmt.Sprintf("%s!A:F", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, rangeRef, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append report rows: %w", err)
	}

	slog.InfoContext(ctx, "Appended board report rows",
		"run_id", runID,
		"rows", len(values),
		"sheet", c.sheetName)
	return nil
}
