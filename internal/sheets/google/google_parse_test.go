package google

import (
	"testing"
	"time"
)

func TestParseTransactionRow(t *testing.T) {
	tests := []struct {
		name     string
		cols     []string
		wantOK   bool
		wantID   string
		wantCat  string
		wantAmt  float64
		wantDate time.Time
	}{
		{
			name:     "full row",
			cols:     []string{"tx-1", "2025-01-15", "Food", "42.50", "lunch"},
			wantOK:   true,
			wantID:   "tx-1",
			wantCat:  "Food",
			wantAmt:  42.50,
			wantDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "missing id gets row reference",
			cols:     []string{"", "2025-03-02", "Travel", "100", ""},
			wantOK:   true,
			wantID:   "row:7",
			wantCat:  "Travel",
			wantAmt:  100,
			wantDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "slash date and decimal comma",
			cols:     []string{"tx-2", "15/01/2025", "Food", "1.234,56", "big shop"},
			wantOK:   true,
			wantID:   "tx-2",
			wantCat:  "Food",
			wantAmt:  1234.56,
			wantDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "header row skipped",
			cols:   []string{"ID", "Date", "Category", "Amount", "Description"},
			wantOK: false,
		},
		{
			name:   "missing category skipped",
			cols:   []string{"tx-3", "2025-01-15", "", "10", ""},
			wantOK: false,
		},
		{
			name:   "negative amount skipped",
			cols:   []string{"tx-4", "2025-01-15", "Food", "-10", ""},
			wantOK: false,
		},
		{
			name:   "short row skipped",
			cols:   []string{"tx-5", "2025-01-15"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, ok := parseTransactionRow(tt.cols, 7)
			if ok != tt.wantOK {
				t.Fatalf("parseTransactionRow() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if record.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", record.ID, tt.wantID)
			}
			if record.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", record.Category, tt.wantCat)
			}
			if record.Amount != tt.wantAmt {
				t.Errorf("Amount = %v, want %v", record.Amount, tt.wantAmt)
			}
			if !record.Date.Equal(tt.wantDate) {
				t.Errorf("Date = %v, want %v", record.Date, tt.wantDate)
			}
		})
	}
}

func TestParseAmountValue(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"42.50", 42.50, true},
		{"42,50", 42.50, true},
		{"1.234,56", 1234.56, true},
		{"€ 99.90", 99.90, true},
		{"$15", 15, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAmountValue(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("parseAmountValue(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parseAmountValue(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
