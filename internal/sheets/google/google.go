// Package google adapts a Google spreadsheet as a transaction source and
// digest archive. The transaction sheet carries one row per transaction
// (ID, Date, Category, Amount, Description), the digest sheet one row per
// rendered digest.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"finsight/internal/core"
	ports "finsight/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Config struct {
	SpreadsheetID      string
	TransactionSheet   string
	DigestSheet        string
	ServiceAccountFile string
	ServiceAccountJSON string
}

type Client struct {
	svc              *gsheet.Service
	spreadsheetID    string
	transactionSheet string
	digestSheet      string
}

// Ensure interface conformance
var (
	_ ports.TransactionSource = (*Client)(nil)
	_ ports.TransactionWriter = (*Client)(nil)
	_ ports.DigestWriter      = (*Client)(nil)
	_ ports.CategorySource    = (*Client)(nil)
)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	transactionSheet := strings.TrimSpace(cfg.TransactionSheet)
	if transactionSheet == "" {
		transactionSheet = "Transactions"
	}
	digestSheet := strings.TrimSpace(cfg.DigestSheet)
	if digestSheet == "" {
		digestSheet = "Digests"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:              svc,
		spreadsheetID:    spreadsheetID,
		transactionSheet: transactionSheet,
		digestSheet:      digestSheet,
	}, nil
}

// newSheetsService initializes a Sheets service using service account
// credentials, either inline JSON or a key file. GOOGLE_APPLICATION_CREDENTIALS
// works as a last resort.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// ListTransactions reads every transaction row from the transaction sheet.
// Header rows and rows that fail to parse are skipped.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Record, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:E", c.transactionSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var records []core.Record
	skipped := 0
	for i, row := range resp.Values {
		record, ok := parseTransactionRow(toStrings(row), i+1)
		if !ok {
			skipped++
			continue
		}
		records = append(records, record)
	}

	if skipped > 1 {
		// The header accounts for one skip on a well-formed sheet.
		slog.WarnContext(ctx, "Skipped unparseable transaction rows",
			"sheet", c.transactionSheet, "skipped", skipped-1)
	}

	return records, nil
}

// AppendTransaction appends a transaction row and returns its range reference.
func (c *Client) AppendTransaction(ctx context.Context, r core.Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.transactionSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.transactionSheet, err)
	}

	nextRow := len(resp.Values) + 1
	dataRange := fmt.Sprintf("%s!A%d:E%d", c.transactionSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		r.ID,
		r.DayString(),
		r.Category,
		r.Amount,
		r.Description,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

// AppendDigest appends a rendered digest row to the digest sheet.
func (c *Client) AppendDigest(ctx context.Context, d ports.Digest) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	generatedAt := d.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	rng := fmt.Sprintf("%s!A:A", c.digestSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.digestSheet, err)
	}

	nextRow := len(resp.Values) + 1
	dataRange := fmt.Sprintf("%s!A%d:D%d", c.digestSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		generatedAt.UTC().Format(time.RFC3339),
		fmt.Sprintf("%04d-%02d", d.Year, d.Month),
		d.Title,
		d.Body,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	slog.InfoContext(ctx, "Digest archived to sheet",
		"sheet", c.digestSheet,
		"month", d.Month,
		"year", d.Year,
		"sheets_ref", dataRange)

	return dataRange, nil
}

// ListCategories returns the distinct category names found in the
// transaction sheet, in first-seen order.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	records, err := c.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var categories []string
	for _, r := range records {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		categories = append(categories, r.Category)
	}
	return categories, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
