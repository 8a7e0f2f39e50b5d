package analytics

import (
	"math"
	"sort"

	"finsight/internal/core"
)

// DefaultTrendWindow is how many recent months RollingTrend considers when
// the caller does not say otherwise.
const DefaultTrendWindow = 3

// Trend directions.
const (
	DirectionUpward   = "upward"
	DirectionDownward = "downward"
	DirectionStable   = "stable"
)

// Forecast confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Normalized-volatility thresholds for the confidence heuristic: the standard
// deviation of the month-over-month deltas divided by |mean delta|. Low
// relative volatility means the linear projection is more trustworthy.
const (
	highConfidenceVolatility   = 0.3
	mediumConfidenceVolatility = 0.7
)

type (
	// TrendPoint is one month's total inside the rolling window.
	TrendPoint struct {
		Month            int
		Year             int
		TotalAmount      float64
		TransactionCount int
	}

	// Forecast projects the month after the latest observed one.
	Forecast struct {
		Month          int
		Year           int
		ProjectedTotal float64 // clamped to >= 0, spend cannot be negative
	}

	// TrendReport carries the rolling window chronologically ascending, the
	// mean month-over-month delta, a direction classification, and a
	// volatility-derived confidence level for the forecast.
	TrendReport struct {
		Points        []TrendPoint
		AverageChange float64
		Direction     string
		Confidence    string
		Forecast      *Forecast
	}
)

// RollingTrend discovers the most recent windowSize months that have at least
// one record, presents them oldest first, and projects the next month's total
// as lastTotal + averageChange. Discovery is newest-first so a sparse history
// still yields the latest months with data rather than the latest calendar
// months.
func RollingTrend(records []core.Record, windowSize int) TrendReport {
	if windowSize <= 0 {
		windowSize = DefaultTrendWindow
	}

	byMonth := make(map[core.MonthKey]*TrendPoint)
	var keys []core.MonthKey
	for _, r := range records {
		key := r.Key()
		point, ok := byMonth[key]
		if !ok {
			point = &TrendPoint{Month: key.Month, Year: key.Year}
			byMonth[key] = point
			keys = append(keys, key)
		}
		point.TotalAmount += r.Amount
		point.TransactionCount++
	}

	report := TrendReport{Direction: DirectionStable, Confidence: ConfidenceLow}
	if len(keys) == 0 {
		return report
	}

	// Newest first for discovery, then reversed for presentation.
	sort.Slice(keys, func(i, j int) bool { return keys[j].Before(keys[i]) })
	if len(keys) > windowSize {
		keys = keys[:windowSize]
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}

	points := make([]TrendPoint, len(keys))
	for i, key := range keys {
		points[i] = *byMonth[key]
	}
	report.Points = points

	deltas := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		deltas = append(deltas, points[i].TotalAmount-points[i-1].TotalAmount)
	}
	if len(deltas) > 0 {
		var sum float64
		for _, d := range deltas {
			sum += d
		}
		report.AverageChange = sum / float64(len(deltas))
	}

	switch {
	case report.AverageChange > 0:
		report.Direction = DirectionUpward
	case report.AverageChange < 0:
		report.Direction = DirectionDownward
	default:
		report.Direction = DirectionStable
	}

	report.Confidence = classifyConfidence(deltas, report.AverageChange)

	last := keys[len(keys)-1]
	next := last.Next()
	projected := points[len(points)-1].TotalAmount + report.AverageChange
	if projected < 0 {
		projected = 0
	}
	report.Forecast = &Forecast{Month: next.Month, Year: next.Year, ProjectedTotal: projected}
	return report
}

// classifyConfidence grades the forecast by the coefficient of variation of
// the deltas. A single delta carries no volatility signal and is fixed at
// medium; no deltas at all means there is nothing to project from.
func classifyConfidence(deltas []float64, averageChange float64) string {
	switch len(deltas) {
	case 0:
		return ConfidenceLow
	case 1:
		return ConfidenceMedium
	}

	var varianceSum float64
	for _, d := range deltas {
		diff := d - averageChange
		varianceSum += diff * diff
	}
	stddev := math.Sqrt(varianceSum / float64(len(deltas)))

	volatility := stddev
	if averageChange != 0 {
		volatility = stddev / math.Abs(averageChange)
	}

	switch {
	case volatility <= highConfidenceVolatility:
		return ConfidenceHigh
	case volatility <= mediumConfidenceVolatility:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
