// Package analytics turns a snapshot of transaction records into monthly and
// category aggregates, cross-month comparisons, and rolling trend signals
// with a one-month forecast.
//
// Every function here is a pure function of (records, parameters): nothing is
// cached, nothing is mutated, and every result is freshly allocated. Expected
// empty outcomes are reported as structured results, never as errors.
package analytics

import (
	"sort"

	"finsight/internal/core"
)

// Year bounds accepted by every month-scoped operation.
const (
	MinYear = 2000
	MaxYear = 2100
)

// TopExpenseLimit is how many of the largest records an aggregate carries.
const TopExpenseLimit = 5

// FailureKind distinguishes the ways a lookup can come back empty. A rejected
// parameter is reported before any data scan; missing data is a valid outcome
// with valid parameters.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureInvalidParam
	FailureNoData
)

type (
	// CategoryShare is one category's slice of a larger total.
	CategoryShare struct {
		Name             string
		Amount           float64
		TransactionCount int
		Percentage       float64 // of the enclosing total, 0 when the total is 0
	}

	// DayTotal is the spend on a single civil date.
	DayTotal struct {
		Date             string // YYYY-MM-DD
		Amount           float64
		TransactionCount int
	}

	// ExpenseRef is a record projected down to the fields an aggregate reports.
	ExpenseRef struct {
		ID          string
		Category    string
		Amount      float64
		Description string
		Date        string // YYYY-MM-DD
	}
)

// percentage returns part/whole*100, defined as 0 when the denominator is 0
// so non-finite values never reach downstream narrative text.
func percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// inMonth reports whether a record falls in the given calendar month. This is
// a calendar-field comparison, deliberately not a string comparison and not
// UTC interval arithmetic: the record's own civil date decides.
func inMonth(r core.Record, month, year int) bool {
	return r.Date.Year() == year && int(r.Date.Month()) == month
}

// groupByCategory sums records per category label. Keys keep the casing of
// the first record seen for a label; labels differing only in case stay
// separate here because stored casing is authoritative within an aggregate.
func groupByCategory(records []core.Record, total float64) []CategoryShare {
	byName := make(map[string]*CategoryShare)
	var order []string
	for _, r := range records {
		share, ok := byName[r.Category]
		if !ok {
			share = &CategoryShare{Name: r.Category}
			byName[r.Category] = share
			order = append(order, r.Category)
		}
		share.Amount += r.Amount
		share.TransactionCount++
	}

	shares := make([]CategoryShare, 0, len(order))
	for _, name := range order {
		s := *byName[name]
		s.Percentage = percentage(s.Amount, total)
		shares = append(shares, s)
	}
	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}

// groupByDay sums records per civil date, ascending by date string.
func groupByDay(records []core.Record) []DayTotal {
	byDay := make(map[string]*DayTotal)
	var order []string
	for _, r := range records {
		day := r.DayString()
		dt, ok := byDay[day]
		if !ok {
			dt = &DayTotal{Date: day}
			byDay[day] = dt
			order = append(order, day)
		}
		dt.Amount += r.Amount
		dt.TransactionCount++
	}

	days := make([]DayTotal, 0, len(order))
	for _, day := range order {
		days = append(days, *byDay[day])
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// topExpenses returns the n largest records, ties broken by original order.
func topExpenses(records []core.Record, n int) []ExpenseRef {
	sorted := make([]core.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	refs := make([]ExpenseRef, len(sorted))
	for i, r := range sorted {
		refs[i] = ExpenseRef{
			ID:          r.ID,
			Category:    r.Category,
			Amount:      r.Amount,
			Description: r.Description,
			Date:        r.DayString(),
		}
	}
	return refs
}
