package analytics

import (
	"fmt"
	"sort"

	"finsight/internal/core"
)

type (
	// MonthShare is one calendar month's slice of a category's all-time total.
	MonthShare struct {
		Month                int
		Year                 int
		Amount               float64
		TransactionCount     int
		PercentageOfCategory float64 // of the category's own total, not the global one
	}

	// CategorySummary is an aggregate scoped to a single category, either
	// within one month (PercentageOfMonth is set) or across every month in
	// the snapshot (OverallShare and MonthlyBreakdown are set).
	CategorySummary struct {
		Found   bool
		Failure FailureKind
		Message string

		Category string // casing as stored on the matched records
		Month    int    // zero in the all-months scope
		Year     int    // zero in the all-months scope

		TotalAmount        float64
		TransactionCount   int
		AverageTransaction float64
		PercentageOfMonth  float64      // share of the month's total spend
		OverallShare       float64      // share of the all-time total spend
		DailyBreakdown     []DayTotal   // month scope only
		MonthlyBreakdown   []MonthShare // all-months scope only, newest first
		TopExpenses        []ExpenseRef
	}
)

// filterCategory returns the records matching the label case-insensitively,
// plus the stored casing of the first match.
func filterCategory(records []core.Record, category string) ([]core.Record, string) {
	var matched []core.Record
	stored := category
	for _, r := range records {
		if core.EqualFold(r.Category, category) {
			if len(matched) == 0 {
				stored = r.Category
			}
			matched = append(matched, r)
		}
	}
	return matched, stored
}

// SummarizeCategoryMonth narrows one month's aggregate to a single category.
// A month with no data at all short-circuits with the month-level failure; a
// month that has data but none for this category is its own distinct no-data
// outcome naming the category.
func SummarizeCategoryMonth(records []core.Record, month, year int, category string) CategorySummary {
	summary := CategorySummary{Category: category, Month: month, Year: year}

	monthSummary := SummarizeMonth(records, month, year)
	if !monthSummary.Found {
		summary.Failure = monthSummary.Failure
		summary.Message = monthSummary.Message
		return summary
	}

	var monthRecords []core.Record
	for _, r := range records {
		if inMonth(r, month, year) {
			monthRecords = append(monthRecords, r)
		}
	}

	matched, stored := filterCategory(monthRecords, category)
	if len(matched) == 0 {
		summary.Failure = FailureNoData
		summary.Message = fmt.Sprintf("no expenses for %s in %s", category, monthLabel(month, year))
		return summary
	}

	var total float64
	for _, r := range matched {
		total += r.Amount
	}

	summary.Found = true
	summary.Category = stored
	summary.TotalAmount = total
	summary.TransactionCount = len(matched)
	summary.AverageTransaction = total / float64(len(matched))
	summary.PercentageOfMonth = percentage(total, monthSummary.TotalAmount)
	summary.DailyBreakdown = groupByDay(matched)
	summary.TopExpenses = topExpenses(matched, TopExpenseLimit)
	return summary
}

// SummarizeCategory aggregates one category across every month in the
// snapshot, with no date filtering. OverallShare is measured against the sum
// of all records regardless of category; each monthly entry's share is
// measured against the category's own total.
func SummarizeCategory(records []core.Record, category string) CategorySummary {
	summary := CategorySummary{Category: category}

	matched, stored := filterCategory(records, category)
	if len(matched) == 0 {
		summary.Failure = FailureNoData
		summary.Message = fmt.Sprintf("no expenses found for category %s", category)
		return summary
	}

	var total, allTotal float64
	for _, r := range records {
		allTotal += r.Amount
	}
	for _, r := range matched {
		total += r.Amount
	}

	byMonth := make(map[core.MonthKey]*MonthShare)
	var keys []core.MonthKey
	for _, r := range matched {
		key := r.Key()
		share, ok := byMonth[key]
		if !ok {
			share = &MonthShare{Month: key.Month, Year: key.Year}
			byMonth[key] = share
			keys = append(keys, key)
		}
		share.Amount += r.Amount
		share.TransactionCount++
	}
	// Newest first.
	sort.Slice(keys, func(i, j int) bool { return keys[j].Before(keys[i]) })

	months := make([]MonthShare, 0, len(keys))
	for _, key := range keys {
		share := *byMonth[key]
		share.PercentageOfCategory = percentage(share.Amount, total)
		months = append(months, share)
	}

	summary.Found = true
	summary.Category = stored
	summary.TotalAmount = total
	summary.TransactionCount = len(matched)
	summary.AverageTransaction = total / float64(len(matched))
	summary.OverallShare = percentage(total, allTotal)
	summary.MonthlyBreakdown = months
	summary.TopExpenses = topExpenses(matched, TopExpenseLimit)
	return summary
}
