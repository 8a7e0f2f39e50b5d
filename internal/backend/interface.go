// Package backend selects and constructs the transaction data source the
// server runs against.
package backend

import (
	"context"

	"finsight/internal/core"
	"finsight/internal/services"
	"finsight/internal/sheets"
	"finsight/internal/storage"
)

// Backend is the surface every data source provides: the engine's snapshot
// input, transaction appends, and the parser's category vocabulary.
type Backend interface {
	sheets.TransactionSource
	sheets.TransactionWriter
	sheets.CategorySource
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result contains the constructed backend plus the extra surfaces only some
// backends provide. Transactions and Budgets are nil unless the backend has
// local persistence.
type Result struct {
	Backend      Backend
	Transactions *services.TransactionService
	Budgets      *storage.SQLiteRepository
	Cleanup      CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Type identifies a backend implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// snapshotAdapter presents a TransactionSource as the services.Snapshotter
// the insight service consumes.
type snapshotAdapter struct {
	source sheets.TransactionSource
}

func (a snapshotAdapter) Snapshot(ctx context.Context) ([]core.Record, error) {
	return a.source.ListTransactions(ctx)
}

// Snapshotter adapts a backend to the insight service's snapshot port.
func Snapshotter(b Backend) services.Snapshotter {
	return snapshotAdapter{source: b}
}
