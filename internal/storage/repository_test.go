package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finsight/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(category string, amount float64, date time.Time) core.Record {
	return core.Record{
		Category:    category,
		Amount:      amount,
		Description: "test " + category,
		Date:        date,
	}
}

func TestSQLiteRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, testRecord("Food", 42.50, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if created.ID == "" {
		t.Error("CreateTransaction() did not assign an ID")
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreateTransaction() did not set CreatedAt")
	}

	got, err := repo.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Category != "Food" {
		t.Errorf("GetTransaction() Category = %q, want Food", got.Category)
	}
	if got.Amount != 42.50 {
		t.Errorf("GetTransaction() Amount = %v, want 42.50", got.Amount)
	}
	if !got.Date.Equal(created.Date) {
		t.Errorf("GetTransaction() Date = %v, want %v", got.Date, created.Date)
	}
}

func TestSQLiteRepository_CreateRejectsInvalid(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.CreateTransaction(ctx, core.Record{
		Category: "",
		Amount:   10,
		Date:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("CreateTransaction() error = %v, want ErrEmptyCategory", err)
	}
}

func TestSQLiteRepository_DeleteTransaction(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, testRecord("Travel", 100, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	if err := repo.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	if _, err := repo.GetTransaction(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTransaction() after delete error = %v, want ErrNotFound", err)
	}

	// Second delete reports not found.
	if err := repo.DeleteTransaction(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTransaction() repeat error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_ListByMonth(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		if _, err := repo.CreateTransaction(ctx, testRecord("Food", float64(10*(i+1)), d)); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	records, err := repo.ListByMonth(ctx, 1, 2025)
	if err != nil {
		t.Fatalf("ListByMonth() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListByMonth() returned %d records, want 2", len(records))
	}
	if !records[0].Date.Before(records[1].Date) {
		t.Error("ListByMonth() records not ordered oldest first")
	}
}

func TestSQLiteRepository_SnapshotExcludesDeleted(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	keep, err := repo.CreateTransaction(ctx, testRecord("Food", 10, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	gone, err := repo.CreateTransaction(ctx, testRecord("Travel", 20, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if err := repo.DeleteTransaction(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	records, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Snapshot() returned %d records, want 1", len(records))
	}
	if records[0].ID != keep.ID {
		t.Errorf("Snapshot() kept ID %s, want %s", records[0].ID, keep.ID)
	}
}

func TestSQLiteRepository_Categories(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, category := range []string{"Travel", "Food", "Food"} {
		if _, err := repo.CreateTransaction(ctx, testRecord(category, 10, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	categories, err := repo.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	want := []string{"Food", "Travel"}
	if len(categories) != len(want) {
		t.Fatalf("Categories() = %v, want %v", categories, want)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Errorf("Categories()[%d] = %q, want %q", i, categories[i], want[i])
		}
	}
}

func TestSQLiteRepository_Budgets(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.SetBudget(ctx, "Food", 1, 2025, 50000); err != nil {
		t.Fatalf("SetBudget() error = %v", err)
	}
	if err := repo.SetBudget(ctx, "Travel", 1, 2025, 30000); err != nil {
		t.Fatalf("SetBudget() error = %v", err)
	}

	// Upsert replaces the previous amount.
	if err := repo.SetBudget(ctx, "Food", 1, 2025, 60000); err != nil {
		t.Fatalf("SetBudget() upsert error = %v", err)
	}

	total, err := repo.BudgetTotal(ctx, 1, 2025)
	if err != nil {
		t.Fatalf("BudgetTotal() error = %v", err)
	}
	if total != 90000 {
		t.Errorf("BudgetTotal() = %d, want 90000", total)
	}

	budgets, err := repo.ListBudgets(ctx, 1, 2025)
	if err != nil {
		t.Fatalf("ListBudgets() error = %v", err)
	}
	if len(budgets) != 2 {
		t.Fatalf("ListBudgets() returned %d budgets, want 2", len(budgets))
	}
	if budgets[0].Category != "Food" || budgets[0].AmountCents != 60000 {
		t.Errorf("ListBudgets()[0] = %+v, want Food with 60000 cents", budgets[0])
	}

	if err := repo.SetBudget(ctx, "Food", 13, 2025, 1000); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("SetBudget() invalid month error = %v, want ErrInvalidMonth", err)
	}

	emptyTotal, err := repo.BudgetTotal(ctx, 6, 2025)
	if err != nil {
		t.Fatalf("BudgetTotal() empty month error = %v", err)
	}
	if emptyTotal != 0 {
		t.Errorf("BudgetTotal() empty month = %d, want 0", emptyTotal)
	}
}
