// This file implements parsing and validation of request parameters and
// bodies shared by the API handlers.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finsight/internal/core"
)

// maxBodyBytes caps request bodies; the API only carries small JSON payloads.
const maxBodyBytes = 64 * 1024

// requireIntParam extracts a required integer query parameter.
func requireIntParam(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, fmt.Errorf("missing required parameter %q", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be an integer, got %q", name, v)
	}
	return n, nil
}

// parseMonthYearParams extracts the required month and year parameters.
func parseMonthYearParams(r *http.Request) (month, year int, err error) {
	if month, err = requireIntParam(r, "month"); err != nil {
		return 0, 0, err
	}
	if year, err = requireIntParam(r, "year"); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

// parseWindowParam extracts the optional window parameter, falling back to
// the given default when absent.
func parseWindowParam(r *http.Request, fallback int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("window"))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be an integer, got %q", "window", v)
	}
	return n, nil
}

// askPayload is the request body of POST /api/ask.
type askPayload struct {
	Message string `json:"message"`
}

func decodeAskPayload(r *http.Request) (askPayload, error) {
	var p askPayload
	if err := decodeJSONBody(r, &p); err != nil {
		return askPayload{}, err
	}
	return p, nil
}

// transactionPayload is the request body of POST /api/transactions. Amount
// accepts both a JSON number and a decimal string (dot or comma separator).
type transactionPayload struct {
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
}

// decodeTransactionPayload parses and validates a transaction creation body
// into a record ready for the service layer.
func decodeTransactionPayload(r *http.Request) (core.Record, error) {
	var p transactionPayload
	if err := decodeJSONBody(r, &p); err != nil {
		return core.Record{}, err
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(p.Date))
	if err != nil {
		return core.Record{}, fmt.Errorf("field %q must be a date in YYYY-MM-DD format, got %q", "date", p.Date)
	}

	cents, err := core.ParseAmountCents(p.Amount.String())
	if err != nil {
		return core.Record{}, fmt.Errorf("field %q: %w", "amount", err)
	}

	record := core.Record{
		Category:    sanitizeInput(p.Category),
		Amount:      core.AmountFromCents(cents),
		Description: sanitizeInput(p.Description),
		Date:        date,
	}
	if err := record.Validate(); err != nil {
		return core.Record{}, err
	}
	return record, nil
}

// budgetPayload is the request body of POST /api/budgets.
type budgetPayload struct {
	Category string      `json:"category"`
	Month    int         `json:"month"`
	Year     int         `json:"year"`
	Amount   json.Number `json:"amount"`
}

func decodeBudgetPayload(r *http.Request) (budgetPayload, int64, error) {
	var p budgetPayload
	if err := decodeJSONBody(r, &p); err != nil {
		return budgetPayload{}, 0, err
	}
	cents, err := core.ParseAmountCents(p.Amount.String())
	if err != nil {
		return budgetPayload{}, 0, fmt.Errorf("field %q: %w", "amount", err)
	}
	p.Category = sanitizeInput(p.Category)
	return p, cents, nil
}

func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
