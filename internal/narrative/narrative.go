// Package narrative renders the engine's structured results into
// fixed-layout plain-text blocks. The text is the hand-off payload for an
// external text-generation step; nothing here makes an analytical decision,
// the only judgment calls are presentation truncation limits and those are
// named constants.
package narrative

import (
	"fmt"
	"strings"
	"time"

	"finsight/internal/analytics"
)

// MaxDayLines caps the daily-breakdown section; the remainder is summarized
// as a "+N more" trailer.
const MaxDayLines = 10

// MaxMonthLines caps the per-month section of an all-time category view.
const MaxMonthLines = 12

// FormatMonthSummary renders one month's aggregate.
func FormatMonthSummary(s analytics.MonthSummary) string {
	if !s.Found {
		return s.Message
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Spending summary for %s\n", s.Label())
	fmt.Fprintf(&b, "Total: %.2f across %d transactions (average %.2f)\n",
		s.TotalAmount, s.TransactionCount, s.AverageTransaction)

	b.WriteString("\nBy category:\n")
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "- %s: %.2f (%.1f%%, %d transactions)\n",
			c.Name, c.Amount, c.Percentage, c.TransactionCount)
	}

	b.WriteString("\nBy day:\n")
	writeDayLines(&b, s.DailyBreakdown)

	if len(s.TopExpenses) > 0 {
		b.WriteString("\nLargest expenses:\n")
		for _, e := range s.TopExpenses {
			fmt.Fprintf(&b, "- %s %s %.2f %s\n", e.Date, e.Category, e.Amount, e.Description)
		}
	}

	b.WriteString("\nNotes: category percentages are shares of the month's total; ")
	b.WriteString("largest expenses are individual transactions, not category sums.\n")
	return b.String()
}

// FormatCategorySummary renders a category aggregate for either scope.
func FormatCategorySummary(s analytics.CategorySummary) string {
	if !s.Found {
		return s.Message
	}

	var b strings.Builder
	if s.Month != 0 {
		fmt.Fprintf(&b, "%s in %s %d\n", s.Category, time.Month(s.Month).String(), s.Year)
		fmt.Fprintf(&b, "Total: %.2f across %d transactions (average %.2f)\n",
			s.TotalAmount, s.TransactionCount, s.AverageTransaction)
		fmt.Fprintf(&b, "Share of the month's spending: %.1f%%\n", s.PercentageOfMonth)

		b.WriteString("\nBy day:\n")
		writeDayLines(&b, s.DailyBreakdown)
	} else {
		fmt.Fprintf(&b, "%s across all months\n", s.Category)
		fmt.Fprintf(&b, "Total: %.2f across %d transactions (average %.2f)\n",
			s.TotalAmount, s.TransactionCount, s.AverageTransaction)
		fmt.Fprintf(&b, "Share of all spending: %.1f%%\n", s.OverallShare)

		b.WriteString("\nBy month (newest first):\n")
		months := s.MonthlyBreakdown
		extra := 0
		if len(months) > MaxMonthLines {
			extra = len(months) - MaxMonthLines
			months = months[:MaxMonthLines]
		}
		for _, m := range months {
			fmt.Fprintf(&b, "- %s %d: %.2f (%.1f%% of the category, %d transactions)\n",
				time.Month(m.Month).String(), m.Year, m.Amount, m.PercentageOfCategory, m.TransactionCount)
		}
		if extra > 0 {
			fmt.Fprintf(&b, "  +%d more\n", extra)
		}
	}

	if len(s.TopExpenses) > 0 {
		b.WriteString("\nLargest expenses:\n")
		for _, e := range s.TopExpenses {
			fmt.Fprintf(&b, "- %s %.2f %s\n", e.Date, e.Amount, e.Description)
		}
	}

	b.WriteString("\nNotes: shares are computed against the stated denominator only.\n")
	return b.String()
}

// FormatComparison renders a two-month comparison.
func FormatComparison(c analytics.Comparison) string {
	if !c.Found {
		return c.Message
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Comparison: %s vs %s\n", c.First.Label(), c.Second.Label())
	fmt.Fprintf(&b, "%s total: %.2f (%d transactions)\n",
		c.First.Label(), c.First.TotalAmount, c.First.TransactionCount)
	fmt.Fprintf(&b, "%s total: %.2f (%d transactions)\n",
		c.Second.Label(), c.Second.TotalAmount, c.Second.TransactionCount)
	fmt.Fprintf(&b, "Change: %+.2f (%+.1f%%), %+d transactions, average transaction %+.2f\n",
		c.TotalDifference, c.PercentageChange, c.TransactionCountDifference, c.AverageTransactionDifference)

	b.WriteString("\nBy category (largest movement first):\n")
	for _, d := range c.Categories {
		fmt.Fprintf(&b, "- %s: %.2f -> %.2f (%+.2f)\n",
			d.Name, d.FirstAmount, d.SecondAmount, d.Difference)
	}

	b.WriteString("\nNotes: categories missing from one month are shown with a zero on that side.\n")
	return b.String()
}

// FormatTrend renders a rolling trend report with its forecast.
func FormatTrend(r analytics.TrendReport) string {
	if len(r.Points) == 0 {
		return "No months with expense data were found, so there is no trend to report."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Spending trend over the last %d month(s)\n", len(r.Points))
	for _, p := range r.Points {
		fmt.Fprintf(&b, "- %s %d: %.2f (%d transactions)\n",
			time.Month(p.Month).String(), p.Year, p.TotalAmount, p.TransactionCount)
	}

	fmt.Fprintf(&b, "\nDirection: %s (average month-over-month change %+.2f)\n",
		r.Direction, r.AverageChange)
	if r.Forecast != nil {
		fmt.Fprintf(&b, "Forecast for %s %d: %.2f (confidence: %s)\n",
			time.Month(r.Forecast.Month).String(), r.Forecast.Year,
			r.Forecast.ProjectedTotal, r.Confidence)
	}

	b.WriteString("\nNotes: the forecast is a linear projection of the average change; ")
	b.WriteString("confidence reflects how volatile the month-over-month changes were.\n")
	return b.String()
}

// writeDayLines renders at most MaxDayLines day entries plus a "+N more"
// trailer for the rest.
func writeDayLines(b *strings.Builder, days []analytics.DayTotal) {
	extra := 0
	if len(days) > MaxDayLines {
		extra = len(days) - MaxDayLines
		days = days[:MaxDayLines]
	}
	for _, d := range days {
		fmt.Fprintf(b, "- %s: %.2f (%d transactions)\n", d.Date, d.Amount, d.TransactionCount)
	}
	if extra > 0 {
		fmt.Fprintf(b, "  +%d more\n", extra)
	}
}
