// Package services orchestrates the engine, storage and messaging layers.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"finsight/internal/amqp"
	"finsight/internal/core"
	"finsight/internal/storage"
)

// DigestPublisher publishes digest rebuild requests. *amqp.Client satisfies it.
type DigestPublisher interface {
	PublishDigestRequest(ctx context.Context, month, year int, reason string) error
	Close() error
}

var _ DigestPublisher = (*amqp.Client)(nil)

// TransactionService persists transactions and asks the worker to refresh
// the affected month's digest. Persistence comes first, a failed publish
// never fails the write.
type TransactionService struct {
	storage   *storage.SQLiteRepository
	publisher DigestPublisher
}

func NewTransactionService(storage *storage.SQLiteRepository, publisher DigestPublisher) *TransactionService {
	return &TransactionService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateTransaction saves a transaction locally and publishes a digest request.
func (s *TransactionService) CreateTransaction(ctx context.Context, record core.Record) (core.Record, error) {
	created, err := s.storage.CreateTransaction(ctx, record)
	if err != nil {
		return core.Record{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishDigestRequest(ctx, int(created.Date.Month()), created.Date.Year(), amqp.ReasonTransactionCreated)
	return created, nil
}

// DeleteTransaction soft-deletes a transaction and publishes a digest request
// for the month it belonged to.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	record, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishDigestRequest(ctx, int(record.Date.Month()), record.Date.Year(), amqp.ReasonTransactionDeleted)
	return nil
}

// ListMonth returns the live transactions for a calendar month.
func (s *TransactionService) ListMonth(ctx context.Context, month, year int) ([]core.Record, error) {
	return s.storage.ListByMonth(ctx, month, year)
}

// Snapshot returns every live transaction.
func (s *TransactionService) Snapshot(ctx context.Context) ([]core.Record, error) {
	return s.storage.Snapshot(ctx)
}

// BudgetTotal returns the summed budget cents for a month.
func (s *TransactionService) BudgetTotal(ctx context.Context, month, year int) (int64, error) {
	return s.storage.BudgetTotal(ctx, month, year)
}

func (s *TransactionService) publishDigestRequest(ctx context.Context, month, year int, reason string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Digest publisher not available, skipping request",
			"month", month, "year", year, "reason", reason)
		return
	}

	if err := s.publisher.PublishDigestRequest(ctx, month, year, reason); err != nil {
		// The write already succeeded, the digest catches up on the next
		// scheduled rebuild.
		slog.ErrorContext(ctx, "Failed to publish digest request",
			"month", month, "year", year, "reason", reason, "error", err)
	}
}

// Close closes both storage and the publisher connection.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
