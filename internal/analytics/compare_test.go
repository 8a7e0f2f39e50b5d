package analytics

import (
	"strings"
	"testing"

	"finsight/internal/core"
)

func comparisonSnapshot() []core.Record {
	return []core.Record{
		rec("t1", "Food", 100, "2025-01-05"),
		rec("t2", "Travel", 200, "2025-01-10"),
		rec("t3", "Food", 150, "2025-02-05"),
		rec("t4", "Rent", 900, "2025-02-01"),
	}
}

func TestCompareMonths(t *testing.T) {
	got := CompareMonths(comparisonSnapshot(), 1, 2025, 2, 2025)

	if !got.Found {
		t.Fatalf("expected found, got %q", got.Message)
	}
	if !approx(got.TotalDifference, 750) { // 1050 - 300
		t.Errorf("TotalDifference = %v, want 750", got.TotalDifference)
	}
	if !approx(got.PercentageChange, 250) { // 750/300*100
		t.Errorf("PercentageChange = %v, want 250", got.PercentageChange)
	}
	if got.TransactionCountDifference != 0 {
		t.Errorf("TransactionCountDifference = %d, want 0", got.TransactionCountDifference)
	}
	if !approx(got.AverageTransactionDifference, 375) { // 525 - 150
		t.Errorf("AverageTransactionDifference = %v, want 375", got.AverageTransactionDifference)
	}
}

func TestCompareMonths_CategoryUnion(t *testing.T) {
	got := CompareMonths(comparisonSnapshot(), 1, 2025, 2, 2025)

	byName := make(map[string]CategoryDiff)
	for _, d := range got.Categories {
		byName[d.Name] = d
	}

	// Travel only exists in month 1, Rent only in month 2; neither is dropped.
	travel, ok := byName["Travel"]
	if !ok {
		t.Fatal("Travel missing from category diff")
	}
	if !approx(travel.FirstAmount, 200) || travel.SecondAmount != 0 || !approx(travel.Difference, -200) {
		t.Errorf("Travel diff = %+v", travel)
	}

	rent, ok := byName["Rent"]
	if !ok {
		t.Fatal("Rent missing from category diff")
	}
	if rent.FirstAmount != 0 || !approx(rent.SecondAmount, 900) {
		t.Errorf("Rent diff = %+v", rent)
	}
	// Absent-from-first side has a zero denominator: defined as 0, not Inf.
	if rent.PercentageChange != 0 {
		t.Errorf("Rent PercentageChange = %v, want 0", rent.PercentageChange)
	}

	// Sorted by |difference| descending: Rent 900, Travel 200, Food 50.
	wantOrder := []string{"Rent", "Travel", "Food"}
	for i, want := range wantOrder {
		if got.Categories[i].Name != want {
			t.Errorf("Categories[%d] = %s, want %s", i, got.Categories[i].Name, want)
		}
	}
}

func TestCompareMonths_Symmetry(t *testing.T) {
	records := comparisonSnapshot()
	forward := CompareMonths(records, 1, 2025, 2, 2025)
	backward := CompareMonths(records, 2, 2025, 1, 2025)

	if !approx(forward.TotalDifference, -backward.TotalDifference) {
		t.Errorf("TotalDifference not antisymmetric: %v vs %v",
			forward.TotalDifference, backward.TotalDifference)
	}
	if forward.TransactionCountDifference != -backward.TransactionCountDifference {
		t.Errorf("TransactionCountDifference not antisymmetric: %d vs %d",
			forward.TransactionCountDifference, backward.TransactionCountDifference)
	}
}

func TestCompareMonths_MissingSides(t *testing.T) {
	records := comparisonSnapshot()

	tests := []struct {
		name   string
		m1, y1 int
		m2, y2 int
		wantIn []string
	}{
		{
			name: "second side empty",
			m1:   1, y1: 2025, m2: 6, y2: 2025,
			wantIn: []string{"second month", "June 2025"},
		},
		{
			name: "first side empty",
			m1:   6, y1: 2025, m2: 1, y2: 2025,
			wantIn: []string{"first month", "June 2025"},
		},
		{
			name: "both sides empty",
			m1:   6, y1: 2025, m2: 7, y2: 2025,
			wantIn: []string{"first month", "second month", "June 2025", "July 2025"},
		},
		{
			name: "invalid first month named",
			m1:   13, y1: 2025, m2: 1, y2: 2025,
			wantIn: []string{"first month", "invalid month 13"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareMonths(records, tt.m1, tt.y1, tt.m2, tt.y2)
			if got.Found {
				t.Fatal("expected found=false")
			}
			// Never a diff against an implicit zero.
			if got.TotalDifference != 0 || len(got.Categories) != 0 {
				t.Errorf("partial diff computed against missing data: %+v", got)
			}
			for _, want := range tt.wantIn {
				if !strings.Contains(got.Message, want) {
					t.Errorf("Message = %q, want it to contain %q", got.Message, want)
				}
			}
		})
	}
}

func TestCompareMonths_ZeroFirstTotal(t *testing.T) {
	records := []core.Record{
		rec("t1", "Refund", 0, "2025-01-05"),
		rec("t2", "Food", 100, "2025-02-05"),
	}
	got := CompareMonths(records, 1, 2025, 2, 2025)
	if !got.Found {
		t.Fatalf("expected found, got %q", got.Message)
	}
	if got.PercentageChange != 0 {
		t.Errorf("PercentageChange = %v, want 0 when the first total is 0", got.PercentageChange)
	}
}
