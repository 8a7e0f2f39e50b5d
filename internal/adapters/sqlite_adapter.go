// Package adapters bridges the SQLite persistence layer to the spreadsheet
// ports so every backend hands the same surface to its consumers.
package adapters

import (
	"context"

	"finsight/internal/core"
	"finsight/internal/services"
	"finsight/internal/sheets"
	"finsight/internal/storage"
)

// SQLiteAdapter presents SQLiteRepository and TransactionService through the
// sheets ports. Writes go through the service so digest requests are still
// published; reads go straight to the repository.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.TransactionService
}

var (
	_ sheets.TransactionSource = (*SQLiteAdapter)(nil)
	_ sheets.TransactionWriter = (*SQLiteAdapter)(nil)
	_ sheets.CategorySource    = (*SQLiteAdapter)(nil)
)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.TransactionService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// ListTransactions implements sheets.TransactionSource.
func (a *SQLiteAdapter) ListTransactions(ctx context.Context) ([]core.Record, error) {
	return a.storage.Snapshot(ctx)
}

// AppendTransaction implements sheets.TransactionWriter.
func (a *SQLiteAdapter) AppendTransaction(ctx context.Context, record core.Record) (string, error) {
	created, err := a.service.CreateTransaction(ctx, record)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// ListCategories implements sheets.CategorySource.
func (a *SQLiteAdapter) ListCategories(ctx context.Context) ([]string, error) {
	return a.storage.Categories(ctx)
}
