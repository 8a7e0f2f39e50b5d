package analytics

import (
	"fmt"
	"math"
	"sort"

	"finsight/internal/core"
)

type (
	// CategoryDiff is one category's movement between the two compared
	// months. Categories present in only one month keep a zero on the other
	// side rather than being dropped.
	CategoryDiff struct {
		Name             string
		FirstAmount      float64
		SecondAmount     float64
		Difference       float64 // second - first
		PercentageChange float64 // 0 when FirstAmount is 0
	}

	// Comparison pairs two independent month aggregates with their diff. It
	// is well-defined only when both months have data: a missing side makes
	// the whole comparison a not-found result naming that side, never a diff
	// against an implicit zero.
	Comparison struct {
		Found   bool
		Message string

		First  MonthSummary
		Second MonthSummary

		TotalDifference              float64 // second - first
		PercentageChange             float64 // 0 when the first total is 0
		TransactionCountDifference   int
		AverageTransactionDifference float64
		Categories                   []CategoryDiff // descending by |difference|
	}
)

// CompareMonths aggregates two month/year pairs independently and diffs them.
func CompareMonths(records []core.Record, month1, year1, month2, year2 int) Comparison {
	first := SummarizeMonth(records, month1, year1)
	second := SummarizeMonth(records, month2, year2)

	cmp := Comparison{First: first, Second: second}

	switch {
	case !first.Found && !second.Found:
		cmp.Message = fmt.Sprintf("first month: %s; second month: %s", first.Message, second.Message)
		return cmp
	case !first.Found:
		cmp.Message = fmt.Sprintf("first month: %s", first.Message)
		return cmp
	case !second.Found:
		cmp.Message = fmt.Sprintf("second month: %s", second.Message)
		return cmp
	}

	cmp.Found = true
	cmp.TotalDifference = second.TotalAmount - first.TotalAmount
	cmp.PercentageChange = percentage(cmp.TotalDifference, first.TotalAmount)
	cmp.TransactionCountDifference = second.TransactionCount - first.TransactionCount
	cmp.AverageTransactionDifference = second.AverageTransaction - first.AverageTransaction
	cmp.Categories = diffCategories(first.Categories, second.Categories)
	return cmp
}

// diffCategories builds the union of category labels seen in either month.
func diffCategories(first, second []CategoryShare) []CategoryDiff {
	byName := make(map[string]*CategoryDiff)
	var order []string

	for _, share := range first {
		byName[share.Name] = &CategoryDiff{Name: share.Name, FirstAmount: share.Amount}
		order = append(order, share.Name)
	}
	for _, share := range second {
		diff, ok := byName[share.Name]
		if !ok {
			diff = &CategoryDiff{Name: share.Name}
			byName[share.Name] = diff
			order = append(order, share.Name)
		}
		diff.SecondAmount = share.Amount
	}

	diffs := make([]CategoryDiff, 0, len(order))
	for _, name := range order {
		d := *byName[name]
		d.Difference = d.SecondAmount - d.FirstAmount
		d.PercentageChange = percentage(d.Difference, d.FirstAmount)
		diffs = append(diffs, d)
	}
	sort.SliceStable(diffs, func(i, j int) bool {
		di, dj := math.Abs(diffs[i].Difference), math.Abs(diffs[j].Difference)
		if di != dj {
			return di > dj
		}
		return diffs[i].Name < diffs[j].Name
	})
	return diffs
}
