package google

import (
	"strconv"
	"strings"
	"time"

	"finsight/internal/core"
)

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006/01/02", time.RFC3339}

// parseTransactionRow converts a sheet row (ID, Date, Category, Amount,
// Description) into a record. Returns false for header rows and rows with
// a missing date, category or amount.
func parseTransactionRow(cols []string, rowNum int) (core.Record, bool) {
	if len(cols) < 4 {
		return core.Record{}, false
	}

	date, ok := parseDateValue(cols[1])
	if !ok {
		return core.Record{}, false
	}

	category := strings.TrimSpace(cols[2])
	if category == "" {
		return core.Record{}, false
	}

	amount, ok := parseAmountValue(cols[3])
	if !ok || amount < 0 {
		return core.Record{}, false
	}

	id := strings.TrimSpace(cols[0])
	if id == "" {
		id = "row:" + strconv.Itoa(rowNum)
	}

	description := ""
	if len(cols) > 4 {
		description = strings.TrimSpace(cols[4])
	}

	return core.Record{
		ID:          id,
		Category:    category,
		Amount:      amount,
		Description: description,
		Date:        date,
	}, true
}

func parseDateValue(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmountValue accepts plain numbers plus values with a currency
// symbol or a decimal comma.
func parseAmountValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// "1.234,56" style: thousands dots with a decimal comma.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
