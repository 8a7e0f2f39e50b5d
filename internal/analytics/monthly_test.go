package analytics

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"finsight/internal/core"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func rec(id, category string, amount float64, date string) core.Record {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return core.Record{
		ID:        id,
		Category:  category,
		Amount:    amount,
		Date:      d,
		CreatedAt: d,
	}
}

func januarySnapshot() []core.Record {
	return []core.Record{
		rec("t1", "Food", 100, "2025-01-05"),
		rec("t2", "Food", 50, "2025-01-20"),
		rec("t3", "Travel", 200, "2025-01-10"),
	}
}

func TestSummarizeMonth(t *testing.T) {
	got := SummarizeMonth(januarySnapshot(), 1, 2025)

	if !got.Found {
		t.Fatalf("expected found, got failure %q", got.Message)
	}
	if !approx(got.TotalAmount, 350) {
		t.Errorf("TotalAmount = %v, want 350", got.TotalAmount)
	}
	if got.TransactionCount != 3 {
		t.Errorf("TransactionCount = %d, want 3", got.TransactionCount)
	}

	wantCategories := []struct {
		name       string
		amount     float64
		percentage float64
	}{
		{"Travel", 200, 57.142857},
		{"Food", 150, 42.857142},
	}
	if len(got.Categories) != len(wantCategories) {
		t.Fatalf("got %d categories, want %d", len(got.Categories), len(wantCategories))
	}
	for i, want := range wantCategories {
		c := got.Categories[i]
		if c.Name != want.name || !approx(c.Amount, want.amount) || !approx(c.Percentage, want.percentage) {
			t.Errorf("category[%d] = %+v, want %+v", i, c, want)
		}
	}
}

func TestSummarizeMonth_CategorySumInvariant(t *testing.T) {
	summary := SummarizeMonth(januarySnapshot(), 1, 2025)

	var sum float64
	for _, c := range summary.Categories {
		sum += c.Amount
		if c.Percentage < 0 || c.Percentage > 100 {
			t.Errorf("percentage %v out of [0,100] for %s", c.Percentage, c.Name)
		}
	}
	if math.Abs(sum-summary.TotalAmount) > epsilon {
		t.Errorf("category sum %v != total %v", sum, summary.TotalAmount)
	}
}

func TestSummarizeMonth_InvalidParameters(t *testing.T) {
	records := januarySnapshot()

	tests := []struct {
		name     string
		month    int
		year     int
		wantKind FailureKind
		wantIn   string
	}{
		{"month too high", 13, 2025, FailureInvalidParam, "invalid month 13"},
		{"month too low", 0, 2025, FailureInvalidParam, "invalid month 0"},
		{"year too low", 1, 1999, FailureInvalidParam, "invalid year 1999"},
		{"year too high", 1, 2101, FailureInvalidParam, "invalid year 2101"},
		{"valid params no data", 2, 2025, FailureNoData, "no expenses found for February 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeMonth(records, tt.month, tt.year)
			if got.Found {
				t.Fatal("expected a failure result")
			}
			if got.Failure != tt.wantKind {
				t.Errorf("Failure = %v, want %v", got.Failure, tt.wantKind)
			}
			if !strings.Contains(got.Message, tt.wantIn) {
				t.Errorf("Message = %q, want it to contain %q", got.Message, tt.wantIn)
			}
		})
	}
}

func TestSummarizeMonth_DailyBreakdownAscending(t *testing.T) {
	records := []core.Record{
		rec("t1", "Food", 10, "2025-01-20"),
		rec("t2", "Food", 20, "2025-01-05"),
		rec("t3", "Food", 30, "2025-01-05"),
	}
	got := SummarizeMonth(records, 1, 2025)

	want := []DayTotal{
		{Date: "2025-01-05", Amount: 50, TransactionCount: 2},
		{Date: "2025-01-20", Amount: 10, TransactionCount: 1},
	}
	if !reflect.DeepEqual(got.DailyBreakdown, want) {
		t.Errorf("DailyBreakdown = %+v, want %+v", got.DailyBreakdown, want)
	}
}

func TestSummarizeMonth_TopExpenses(t *testing.T) {
	records := []core.Record{
		rec("t1", "Food", 10, "2025-01-01"),
		rec("t2", "Food", 60, "2025-01-02"),
		rec("t3", "Food", 60, "2025-01-03"), // ties with t2, t2 keeps original order
		rec("t4", "Food", 5, "2025-01-04"),
		rec("t5", "Food", 80, "2025-01-05"),
		rec("t6", "Food", 7, "2025-01-06"),
		rec("t7", "Food", 3, "2025-01-07"),
	}
	got := SummarizeMonth(records, 1, 2025)

	if len(got.TopExpenses) != TopExpenseLimit {
		t.Fatalf("got %d top expenses, want %d", len(got.TopExpenses), TopExpenseLimit)
	}
	wantIDs := []string{"t5", "t2", "t3", "t1", "t6"}
	for i, want := range wantIDs {
		if got.TopExpenses[i].ID != want {
			t.Errorf("TopExpenses[%d].ID = %s, want %s", i, got.TopExpenses[i].ID, want)
		}
	}
}

func TestSummarizeMonth_Idempotent(t *testing.T) {
	records := januarySnapshot()
	first := SummarizeMonth(records, 1, 2025)
	second := SummarizeMonth(records, 1, 2025)
	if !reflect.DeepEqual(first, second) {
		t.Error("two calls over the same snapshot differ")
	}
}

func TestSummarizeMonth_DoesNotMutateSnapshot(t *testing.T) {
	records := januarySnapshot()
	before := make([]core.Record, len(records))
	copy(before, records)

	SummarizeMonth(records, 1, 2025)

	if !reflect.DeepEqual(records, before) {
		t.Error("snapshot was mutated")
	}
}

func TestSummarizeMonth_IgnoresTimeOfDay(t *testing.T) {
	lateNight := rec("t1", "Food", 25, "2025-01-31")
	lateNight.Date = time.Date(2025, 1, 31, 23, 59, 59, 999_000_000, time.UTC)
	got := SummarizeMonth([]core.Record{lateNight}, 1, 2025)
	if !got.Found || got.TransactionCount != 1 {
		t.Errorf("record on the last millisecond of the month was dropped: %+v", got)
	}
}
