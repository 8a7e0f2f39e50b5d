package core

import (
	"testing"
	"time"
)

func TestRecord_Validate(t *testing.T) {
	valid := Record{
		ID:       "t-1",
		Category: "Food",
		Amount:   42.50,
		Date:     time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		mutate  func(Record) Record
		wantErr error
	}{
		{
			name:    "valid record",
			mutate:  func(r Record) Record { return r },
			wantErr: nil,
		},
		{
			name:    "zero date",
			mutate:  func(r Record) Record { r.Date = time.Time{}; return r },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "negative amount",
			mutate:  func(r Record) Record { r.Amount = -1; return r },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "zero amount is allowed",
			mutate:  func(r Record) Record { r.Amount = 0; return r },
			wantErr: nil,
		},
		{
			name:    "blank category",
			mutate:  func(r Record) Record { r.Category = "   "; return r },
			wantErr: ErrEmptyCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mutate(valid).Validate()
			if got != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", got, tt.wantErr)
			}
		})
	}
}

func TestMonthKey_Next(t *testing.T) {
	tests := []struct {
		name string
		in   MonthKey
		want MonthKey
	}{
		{"mid year", MonthKey{Year: 2025, Month: 6}, MonthKey{Year: 2025, Month: 7}},
		{"december wraps", MonthKey{Year: 2025, Month: 12}, MonthKey{Year: 2026, Month: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Next(); got != tt.want {
				t.Errorf("Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthKey_Before(t *testing.T) {
	a := MonthKey{Year: 2024, Month: 12}
	b := MonthKey{Year: 2025, Month: 1}
	if !a.Before(b) {
		t.Errorf("expected %v before %v", a, b)
	}
	if b.Before(a) {
		t.Errorf("did not expect %v before %v", b, a)
	}
	if a.Before(a) {
		t.Error("a month is not before itself")
	}
}

func TestRecord_DayString(t *testing.T) {
	r := Record{Date: time.Date(2025, 3, 7, 18, 45, 12, 0, time.UTC)}
	if got := r.DayString(); got != "2025-03-07" {
		t.Errorf("DayString() = %q, want 2025-03-07", got)
	}
}
