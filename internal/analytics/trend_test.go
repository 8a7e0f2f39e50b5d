package analytics

import (
	"testing"
	"time"

	"finsight/internal/core"
)

func TestRollingTrend_TwoMonths(t *testing.T) {
	records := []core.Record{
		rec("t1", "Food", 1000, "2025-01-10"),
		rec("t2", "Food", 1500, "2025-02-10"),
	}

	got := RollingTrend(records, 3)

	if len(got.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(got.Points))
	}
	// Chronological presentation even though discovery is newest-first.
	if got.Points[0].Month != 1 || got.Points[1].Month != 2 {
		t.Errorf("points out of order: %+v", got.Points)
	}
	if !approx(got.AverageChange, 500) {
		t.Errorf("AverageChange = %v, want 500", got.AverageChange)
	}
	if got.Direction != DirectionUpward {
		t.Errorf("Direction = %q, want %q", got.Direction, DirectionUpward)
	}
	if got.Confidence != ConfidenceMedium {
		t.Errorf("Confidence = %q, want %q (single delta)", got.Confidence, ConfidenceMedium)
	}
	if got.Forecast == nil {
		t.Fatal("expected a forecast")
	}
	if got.Forecast.Month != 3 || got.Forecast.Year != 2025 {
		t.Errorf("forecast month = %d/%d, want 3/2025", got.Forecast.Month, got.Forecast.Year)
	}
	if !approx(got.Forecast.ProjectedTotal, 2000) {
		t.Errorf("ProjectedTotal = %v, want 2000", got.Forecast.ProjectedTotal)
	}
}

func TestRollingTrend_Empty(t *testing.T) {
	got := RollingTrend(nil, 3)
	if len(got.Points) != 0 {
		t.Errorf("got %d points, want 0", len(got.Points))
	}
	if got.Direction != DirectionStable {
		t.Errorf("Direction = %q, want stable", got.Direction)
	}
	if got.Forecast != nil {
		t.Error("expected no forecast without data")
	}
}

func TestRollingTrend_WindowPicksNewestMonths(t *testing.T) {
	records := []core.Record{
		rec("t1", "Food", 100, "2024-03-01"),
		rec("t2", "Food", 200, "2024-07-01"),
		rec("t3", "Food", 300, "2024-11-01"),
		rec("t4", "Food", 400, "2025-02-01"),
	}

	got := RollingTrend(records, 3)

	if len(got.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(got.Points))
	}
	// Sparse history: the window holds the newest months WITH data, oldest
	// of those first.
	wantMonths := []core.MonthKey{
		{Year: 2024, Month: 7},
		{Year: 2024, Month: 11},
		{Year: 2025, Month: 2},
	}
	for i, want := range wantMonths {
		p := got.Points[i]
		if p.Month != want.Month || p.Year != want.Year {
			t.Errorf("Points[%d] = %d/%d, want %d/%d", i, p.Month, p.Year, want.Month, want.Year)
		}
	}
}

func TestRollingTrend_DecemberWrapsForecast(t *testing.T) {
	records := []core.Record{
		rec("t1", "Food", 100, "2025-11-15"),
		rec("t2", "Food", 200, "2025-12-15"),
	}
	got := RollingTrend(records, 3)
	if got.Forecast == nil {
		t.Fatal("expected a forecast")
	}
	if got.Forecast.Month != 1 || got.Forecast.Year != 2026 {
		t.Errorf("forecast = %d/%d, want 1/2026", got.Forecast.Month, got.Forecast.Year)
	}
}

func TestRollingTrend_ProjectionClampedAtZero(t *testing.T) {
	records := []core.Record{
		rec("t1", "Food", 900, "2025-01-15"),
		rec("t2", "Food", 100, "2025-02-15"),
	}
	got := RollingTrend(records, 3)
	if got.Direction != DirectionDownward {
		t.Errorf("Direction = %q, want downward", got.Direction)
	}
	// 100 + (-800) would be negative; spend cannot be.
	if got.Forecast.ProjectedTotal != 0 {
		t.Errorf("ProjectedTotal = %v, want 0", got.Forecast.ProjectedTotal)
	}
}

func TestRollingTrend_Confidence(t *testing.T) {
	tests := []struct {
		name   string
		totals []float64 // one month each, consecutive
		want   string
	}{
		{
			// Deltas 500, 500: stddev 0, volatility 0 <= 0.3.
			name:   "steady deltas high confidence",
			totals: []float64{1000, 1500, 2000},
			want:   ConfidenceHigh,
		},
		{
			// Deltas 800, 200: mean 500, stddev 300, 300/500 = 0.6 <= 0.7.
			name:   "moderate volatility medium confidence",
			totals: []float64{1000, 1800, 2000},
			want:   ConfidenceMedium,
		},
		{
			// Deltas 1500, -500: mean 500, stddev 1000, 1000/500 = 2.
			name:   "wild deltas low confidence",
			totals: []float64{1000, 2500, 2000},
			want:   ConfidenceLow,
		},
		{
			name:   "single delta fixed medium",
			totals: []float64{1000, 900},
			want:   ConfidenceMedium,
		},
		{
			name:   "single month low",
			totals: []float64{1000},
			want:   ConfidenceLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []core.Record
			for i, total := range tt.totals {
				records = append(records, core.Record{
					ID:       "t",
					Category: "Food",
					Amount:   total,
					Date:     monthDate(2025, i+1),
				})
			}
			got := RollingTrend(records, len(tt.totals))
			if got.Confidence != tt.want {
				t.Errorf("Confidence = %q, want %q", got.Confidence, tt.want)
			}
		})
	}
}

func TestRollingTrend_FlatMonthsStable(t *testing.T) {
	records := []core.Record{
		rec("t1", "Food", 500, "2025-01-10"),
		rec("t2", "Food", 500, "2025-02-10"),
		rec("t3", "Food", 500, "2025-03-10"),
	}
	got := RollingTrend(records, 3)
	if got.Direction != DirectionStable {
		t.Errorf("Direction = %q, want stable", got.Direction)
	}
	if !approx(got.Forecast.ProjectedTotal, 500) {
		t.Errorf("ProjectedTotal = %v, want 500", got.Forecast.ProjectedTotal)
	}
}

func monthDate(year, month int) time.Time {
	return time.Date(year, time.Month(month), 15, 0, 0, 0, 0, time.UTC)
}
