package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finsight/internal/core"
	"finsight/internal/narrative"
	"finsight/internal/query"
	"finsight/internal/services"
	"finsight/internal/storage"
)

// analyticResponse pairs a structured engine result with its rendered
// narrative block.
type analyticResponse struct {
	Result    any    `json:"result"`
	Narrative string `json:"narrative"`
}

// transactionBody is the wire shape of a stored transaction.
type transactionBody struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

func transactionJSON(r core.Record) transactionBody {
	return transactionBody{
		ID:          r.ID,
		Category:    r.Category,
		Amount:      r.Amount,
		Description: r.Description,
		Date:        r.DayString(),
		CreatedAt:   r.CreatedAt,
	}
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	month, year, err := parseMonthYearParams(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	summary, err := s.insight.MonthSummary(r.Context(), month, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Month summary failed", "error", err, "month", month, "year", year)
		InternalServerError("failed to load month summary").Write(w)
		return
	}

	NewJSONResponse().Payload(analyticResponse{
		Result:    summary,
		Narrative: narrative.FormatMonthSummary(summary),
	}).Write(w)
}

func (s *Server) handleCategoryMonthSummary(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		BadRequestError(`missing required parameter "name"`).Write(w)
		return
	}
	month, year, err := parseMonthYearParams(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	summary, err := s.insight.CategoryMonthSummary(r.Context(), month, year, name)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category month summary failed", "error", err, "category", name)
		InternalServerError("failed to load category summary").Write(w)
		return
	}

	NewJSONResponse().Payload(analyticResponse{
		Result:    summary,
		Narrative: narrative.FormatCategorySummary(summary),
	}).Write(w)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		BadRequestError(`missing required parameter "name"`).Write(w)
		return
	}

	summary, err := s.insight.CategorySummary(r.Context(), name)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category summary failed", "error", err, "category", name)
		InternalServerError("failed to load category summary").Write(w)
		return
	}

	NewJSONResponse().Payload(analyticResponse{
		Result:    summary,
		Narrative: narrative.FormatCategorySummary(summary),
	}).Write(w)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	month1, err := requireIntParam(r, "month1")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	year1, err := requireIntParam(r, "year1")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	month2, err := requireIntParam(r, "month2")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	year2, err := requireIntParam(r, "year2")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	comparison, err := s.insight.Compare(r.Context(), month1, year1, month2, year2)
	if err != nil {
		slog.ErrorContext(r.Context(), "Comparison failed", "error", err)
		InternalServerError("failed to compare months").Write(w)
		return
	}

	NewJSONResponse().Payload(analyticResponse{
		Result:    comparison,
		Narrative: narrative.FormatComparison(comparison),
	}).Write(w)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindowParam(r, 0)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	report, err := s.insight.Trend(r.Context(), window)
	if err != nil {
		slog.ErrorContext(r.Context(), "Trend report failed", "error", err, "window", window)
		InternalServerError("failed to build trend report").Write(w)
		return
	}

	NewJSONResponse().Payload(analyticResponse{
		Result:    report,
		Narrative: narrative.FormatTrend(report),
	}).Write(w)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeAskPayload(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	answer, err := s.insight.Ask(r.Context(), payload.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyQuestion):
			BadRequestError("message must not be empty").Write(w)
		case errors.Is(err, query.ErrMonthNotFound),
			errors.Is(err, query.ErrYearNotFound):
			UnprocessableEntityError(err.Error()).Write(w)
		default:
			slog.ErrorContext(r.Context(), "Ask failed", "error", err, "question", payload.Message)
			InternalServerError("failed to answer question").Write(w)
		}
		return
	}

	NewJSONResponse().Payload(answer).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		NotImplementedError("transaction writes require the sqlite backend").Write(w)
		return
	}

	record, err := decodeTransactionPayload(r)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), record)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err, "category", record.Category)
		InternalServerError("failed to store transaction").Write(w)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).
		Payload(map[string]any{"transaction": transactionJSON(created)}).
		Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		NotImplementedError("transaction listing requires the sqlite backend").Write(w)
		return
	}

	month, year, err := parseMonthYearParams(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	records, err := s.store.ListMonth(r.Context(), month, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "error", err, "month", month, "year", year)
		InternalServerError("failed to list transactions").Write(w)
		return
	}

	items := make([]transactionBody, 0, len(records))
	for _, rec := range records {
		items = append(items, transactionJSON(rec))
	}
	NewJSONResponse().Payload(map[string]any{
		"transactions": items,
		"count":        len(items),
	}).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		NotImplementedError("transaction deletes require the sqlite backend").Write(w)
		return
	}

	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		BadRequestError("missing transaction id").Write(w)
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError(fmt.Sprintf("transaction %q not found", id)).Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Transaction delete failed", "error", err, "transaction_id", id)
		InternalServerError("failed to delete transaction").Write(w)
		return
	}

	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// budgetTotalBody is the wire shape of a budget total.
type budgetTotalBody struct {
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	TotalCents int64   `json:"total_cents"`
	Total      float64 `json:"total"`
	Cached     bool    `json:"cached"`
}

func budgetCacheKey(month, year int) string {
	return fmt.Sprintf("budget:%04d-%02d", year, month)
}

func (s *Server) handleBudgetTotal(w http.ResponseWriter, r *http.Request) {
	if s.budgets == nil {
		NotImplementedError("budgets require the sqlite backend").Write(w)
		return
	}

	month, year, err := parseMonthYearParams(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	key := budgetCacheKey(month, year)
	if cents, found := s.budgetCache.Get(key); found {
		NewJSONResponse().Payload(budgetTotalBody{
			Month:      month,
			Year:       year,
			TotalCents: cents,
			Total:      core.AmountFromCents(cents),
			Cached:     true,
		}).Write(w)
		return
	}

	cents, err := s.budgets.BudgetTotal(r.Context(), month, year)
	if err != nil {
		if errors.Is(err, core.ErrInvalidMonth) {
			BadRequestError(err.Error()).Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Budget total failed", "error", err, "month", month, "year", year)
		InternalServerError("failed to load budget total").Write(w)
		return
	}
	s.budgetCache.Set(key, cents)

	NewJSONResponse().Payload(budgetTotalBody{
		Month:      month,
		Year:       year,
		TotalCents: cents,
		Total:      core.AmountFromCents(cents),
	}).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if s.budgets == nil {
		NotImplementedError("budgets require the sqlite backend").Write(w)
		return
	}

	payload, cents, err := decodeBudgetPayload(r)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	if err := s.budgets.SetBudget(r.Context(), payload.Category, payload.Month, payload.Year, cents); err != nil {
		if errors.Is(err, core.ErrInvalidMonth) || errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrEmptyCategory) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Budget upsert failed", "error", err, "category", payload.Category)
		InternalServerError("failed to store budget").Write(w)
		return
	}

	// The stored total for this month changed under the cache.
	s.budgetCache.Delete(budgetCacheKey(payload.Month, payload.Year))

	NewJSONResponse().Status(http.StatusCreated).Payload(map[string]string{"status": "ok"}).Write(w)
}
