package analytics

import (
	"fmt"
	"time"

	"finsight/internal/core"
)

// MonthSummary is the full aggregate for one calendar month. When Found is
// false, Failure and Message say whether the parameters were rejected or the
// month simply had no data.
type MonthSummary struct {
	Found   bool
	Failure FailureKind
	Message string

	Month int
	Year  int

	TotalAmount        float64
	TransactionCount   int
	AverageTransaction float64
	Categories         []CategoryShare // descending by amount
	DailyBreakdown     []DayTotal      // ascending by date
	TopExpenses        []ExpenseRef
}

// Label returns the human-readable month, e.g. "January 2025".
func (s MonthSummary) Label() string {
	return monthLabel(s.Month, s.Year)
}

func monthLabel(month, year int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}

// validateMonthYear rejects out-of-range parameters before any data scan.
func validateMonthYear(month, year int) (FailureKind, string) {
	if month < 1 || month > 12 {
		return FailureInvalidParam, fmt.Sprintf("invalid month %d: must be between 1 and 12", month)
	}
	if year < MinYear || year > MaxYear {
		return FailureInvalidParam, fmt.Sprintf("invalid year %d: must be between %d and %d", year, MinYear, MaxYear)
	}
	return FailureNone, ""
}

// SummarizeMonth aggregates the snapshot's records for one calendar month:
// total, per-category breakdown, per-day breakdown, and the largest
// individual expenses. The input slice is never modified.
func SummarizeMonth(records []core.Record, month, year int) MonthSummary {
	summary := MonthSummary{Month: month, Year: year}

	if kind, msg := validateMonthYear(month, year); kind != FailureNone {
		summary.Failure = kind
		summary.Message = msg
		return summary
	}

	var monthRecords []core.Record
	for _, r := range records {
		if inMonth(r, month, year) {
			monthRecords = append(monthRecords, r)
		}
	}

	if len(monthRecords) == 0 {
		summary.Failure = FailureNoData
		summary.Message = fmt.Sprintf("no expenses found for %s", monthLabel(month, year))
		return summary
	}

	var total float64
	for _, r := range monthRecords {
		total += r.Amount
	}

	summary.Found = true
	summary.TotalAmount = total
	summary.TransactionCount = len(monthRecords)
	summary.AverageTransaction = total / float64(len(monthRecords))
	summary.Categories = groupByCategory(monthRecords, total)
	summary.DailyBreakdown = groupByDay(monthRecords)
	summary.TopExpenses = topExpenses(monthRecords, TopExpenseLimit)
	return summary
}
