package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finsight/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a transaction does not exist or was deleted.
var ErrNotFound = errors.New("transaction not found")

// Budget is a spending limit for a category in a given month.
type Budget struct {
	ID          int64
	Category    string
	Month       int
	Year        int
	AmountCents int64
	CreatedAt   time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction persists a transaction. A missing ID gets a fresh UUID
// and a zero CreatedAt gets the current time.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, record core.Record) (core.Record, error) {
	if err := record.Validate(); err != nil {
		return core.Record{}, fmt.Errorf("validate transaction: %w", err)
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, category, amount_cents, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Category,
		core.CentsFromAmount(record.Amount),
		record.Description,
		record.Date.UTC().Format(time.RFC3339Nano),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return core.Record{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", record.ID,
		"category", record.Category,
		"amount_cents", core.CentsFromAmount(record.Amount),
		"date", record.DayString())

	return record, nil
}

// DeleteTransaction soft-deletes a transaction by ID.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// GetTransaction retrieves a single live transaction by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category, amount_cents, description, date, created_at
		 FROM transactions WHERE id = ? AND deleted_at IS NULL`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get transaction: %w", err)
	}
	return record, nil
}

// ListByMonth returns live transactions whose date falls in the given
// calendar month, oldest first.
func (r *SQLiteRepository) ListByMonth(ctx context.Context, month, year int) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount_cents, description, date, created_at
		 FROM transactions
		 WHERE deleted_at IS NULL
		   AND CAST(strftime('%m', date) AS INTEGER) = ?
		   AND CAST(strftime('%Y', date) AS INTEGER) = ?
		 ORDER BY date ASC, created_at ASC`, month, year)
	if err != nil {
		return nil, fmt.Errorf("list transactions by month: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Snapshot returns every live transaction, oldest first.
func (r *SQLiteRepository) Snapshot(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount_cents, description, date, created_at
		 FROM transactions
		 WHERE deleted_at IS NULL
		 ORDER BY date ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("snapshot transactions: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Categories returns the distinct category names of live transactions.
func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM transactions
		 WHERE deleted_at IS NULL ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// SetBudget upserts the budget for a category in a given month.
func (r *SQLiteRepository) SetBudget(ctx context.Context, category string, month, year int, amountCents int64) error {
	if month < 1 || month > 12 {
		return core.ErrInvalidMonth
	}
	if amountCents < 0 {
		return core.ErrInvalidAmount
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (category, month, year, amount_cents)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (category, month, year)
		 DO UPDATE SET amount_cents = excluded.amount_cents`,
		category, month, year, amountCents)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"category", category, "month", month, "year", year, "amount_cents", amountCents)
	return nil
}

// BudgetTotal returns the summed budget cents for a month across categories.
func (r *SQLiteRepository) BudgetTotal(ctx context.Context, month, year int) (int64, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM budgets WHERE month = ? AND year = ?`,
		month, year)

	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("budget total: %w", err)
	}
	return total, nil
}

// ListBudgets returns the budgets defined for a month, by category name.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, month, year int) ([]Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, month, year, amount_cents, created_at
		 FROM budgets WHERE month = ? AND year = ? ORDER BY category ASC`,
		month, year)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []Budget
	for rows.Next() {
		var b Budget
		var createdAt string
		if err := rows.Scan(&b.ID, &b.Category, &b.Month, &b.Year, &b.AmountCents, &createdAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.CreatedAt = parseStoredTime(createdAt)
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var (
		record      core.Record
		amountCents int64
		date        string
		createdAt   string
	)
	if err := row.Scan(&record.ID, &record.Category, &amountCents, &record.Description, &date, &createdAt); err != nil {
		return core.Record{}, err
	}

	record.Amount = core.AmountFromCents(amountCents)
	record.Date = parseStoredTime(date)
	record.CreatedAt = parseStoredTime(createdAt)
	return record, nil
}

func collectRecords(rows *sql.Rows) ([]core.Record, error) {
	var records []core.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return records, nil
}

func parseStoredTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
