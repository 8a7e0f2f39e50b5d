package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finsight/internal/analytics"
	"finsight/internal/core"
	"finsight/internal/log"
	"finsight/internal/narrative"
	"finsight/internal/query"
)

// ErrEmptyQuestion is returned when the question has no content to parse.
var ErrEmptyQuestion = errors.New("empty question")

// Snapshotter supplies the transaction snapshot the engine works on.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]core.Record, error)
}

// Answer kinds returned by Ask.
const (
	AnswerComparison    = "comparison"
	AnswerTrend         = "trend"
	AnswerCategory      = "category"
	AnswerCategoryMonth = "category_month"
	AnswerSummary       = "summary"
)

// Answer carries both the structured result and the rendered narrative so
// the caller can forward either onward.
type Answer struct {
	Question  string `json:"question"`
	Kind      string `json:"kind"`
	Narrative string `json:"narrative"`
	Result    any    `json:"result"`
}

// InsightService is the one place that composes the query parser, the
// aggregators and the narrative formatter.
type InsightService struct {
	source      Snapshotter
	trendWindow int
	logger      *log.Logger
}

func NewInsightService(source Snapshotter, trendWindow int, logger *log.Logger) *InsightService {
	if trendWindow < 1 {
		trendWindow = analytics.DefaultTrendWindow
	}
	return &InsightService{
		source:      source,
		trendWindow: trendWindow,
		logger:      logger.WithComponent(log.ComponentQuery),
	}
}

// Ask routes a free-form question to the matching engine operation. The
// routing chain tries, in order: comparison, trend, category, plain month
// summary. Parse failures surface as errors naming the missing element.
func (s *InsightService) Ask(ctx context.Context, question string) (Answer, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return Answer{}, ErrEmptyQuestion
	}

	records, err := s.source.Snapshot(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("load snapshot: %w", err)
	}

	answer := Answer{Question: trimmed}

	if cq, err := query.ParseComparison(trimmed); err == nil {
		comparison := analytics.CompareMonths(records, cq.Month1, cq.Year1, cq.Month2, cq.Year2)
		answer.Kind = AnswerComparison
		answer.Narrative = narrative.FormatComparison(comparison)
		answer.Result = comparison
		s.logAnswer(ctx, answer)
		return answer, nil
	} else if !errors.Is(err, query.ErrNotComparison) {
		// A comparison was asked for but a piece is missing.
		return Answer{}, err
	}

	if wantsTrend(trimmed) {
		report := analytics.RollingTrend(records, s.trendWindow)
		answer.Kind = AnswerTrend
		answer.Narrative = narrative.FormatTrend(report)
		answer.Result = report
		s.logAnswer(ctx, answer)
		return answer, nil
	}

	if category, ok := query.DetectCategory(trimmed, knownCategories(records)); ok {
		if my, err := query.ParseMonthYear(trimmed); err == nil {
			summary := analytics.SummarizeCategoryMonth(records, my.Month, my.Year, category)
			answer.Kind = AnswerCategoryMonth
			answer.Narrative = narrative.FormatCategorySummary(summary)
			answer.Result = summary
			s.logAnswer(ctx, answer)
			return answer, nil
		}
		summary := analytics.SummarizeCategory(records, category)
		answer.Kind = AnswerCategory
		answer.Narrative = narrative.FormatCategorySummary(summary)
		answer.Result = summary
		s.logAnswer(ctx, answer)
		return answer, nil
	}

	my, err := query.ParseMonthYear(trimmed)
	if err != nil {
		return Answer{}, err
	}

	summary := analytics.SummarizeMonth(records, my.Month, my.Year)
	answer.Kind = AnswerSummary
	answer.Narrative = narrative.FormatMonthSummary(summary)
	answer.Result = summary
	s.logAnswer(ctx, answer)
	return answer, nil
}

// MonthSummary runs the monthly aggregator against the current snapshot.
func (s *InsightService) MonthSummary(ctx context.Context, month, year int) (analytics.MonthSummary, error) {
	records, err := s.source.Snapshot(ctx)
	if err != nil {
		return analytics.MonthSummary{}, fmt.Errorf("load snapshot: %w", err)
	}
	return analytics.SummarizeMonth(records, month, year), nil
}

// CategoryMonthSummary runs the category aggregator for one month.
func (s *InsightService) CategoryMonthSummary(ctx context.Context, month, year int, category string) (analytics.CategorySummary, error) {
	records, err := s.source.Snapshot(ctx)
	if err != nil {
		return analytics.CategorySummary{}, fmt.Errorf("load snapshot: %w", err)
	}
	return analytics.SummarizeCategoryMonth(records, month, year, category), nil
}

// CategorySummary runs the category aggregator across the whole history.
func (s *InsightService) CategorySummary(ctx context.Context, category string) (analytics.CategorySummary, error) {
	records, err := s.source.Snapshot(ctx)
	if err != nil {
		return analytics.CategorySummary{}, fmt.Errorf("load snapshot: %w", err)
	}
	return analytics.SummarizeCategory(records, category), nil
}

// Compare runs the month comparator against the current snapshot.
func (s *InsightService) Compare(ctx context.Context, month1, year1, month2, year2 int) (analytics.Comparison, error) {
	records, err := s.source.Snapshot(ctx)
	if err != nil {
		return analytics.Comparison{}, fmt.Errorf("load snapshot: %w", err)
	}
	return analytics.CompareMonths(records, month1, year1, month2, year2), nil
}

// Trend runs the rolling trend engine. A window below 1 falls back to the
// configured default.
func (s *InsightService) Trend(ctx context.Context, window int) (analytics.TrendReport, error) {
	records, err := s.source.Snapshot(ctx)
	if err != nil {
		return analytics.TrendReport{}, fmt.Errorf("load snapshot: %w", err)
	}
	if window < 1 {
		window = s.trendWindow
	}
	return analytics.RollingTrend(records, window), nil
}

func (s *InsightService) logAnswer(ctx context.Context, a Answer) {
	s.logger.InfoContext(ctx, "Answered question",
		log.FieldOperation, log.OpAsk,
		log.FieldQuestion, a.Question,
		"kind", a.Kind)
}

func wantsTrend(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range []string{"trend", "forecast", "predict", "projection"} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func knownCategories(records []core.Record) []string {
	seen := map[string]struct{}{}
	var categories []string
	for _, r := range records {
		key := strings.ToLower(strings.TrimSpace(r.Category))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		categories = append(categories, r.Category)
	}
	return categories
}
