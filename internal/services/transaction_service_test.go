package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finsight/internal/amqp"
	"finsight/internal/core"
	"finsight/internal/storage"
)

type stubPublisher struct {
	published []amqp.DigestMessage
	err       error
	closed    bool
}

func (p *stubPublisher) PublishDigestRequest(_ context.Context, month, year int, reason string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, amqp.DigestMessage{Month: month, Year: year, Reason: reason})
	return nil
}

func (p *stubPublisher) Close() error {
	p.closed = true
	return nil
}

func newServiceFixture(t *testing.T, publisher DigestPublisher) *TransactionService {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	svc := NewTransactionService(repo, publisher)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestTransactionService_CreatePublishesDigestRequest(t *testing.T) {
	publisher := &stubPublisher{}
	svc := newServiceFixture(t, publisher)
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, core.Record{
		Category: "Food",
		Amount:   42.50,
		Date:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if created.ID == "" {
		t.Error("CreateTransaction() did not assign an ID")
	}

	if len(publisher.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(publisher.published))
	}
	msg := publisher.published[0]
	if msg.Month != 1 || msg.Year != 2025 || msg.Reason != amqp.ReasonTransactionCreated {
		t.Errorf("published message = %+v, want January 2025 created", msg)
	}
}

func TestTransactionService_CreateSurvivesPublishFailure(t *testing.T) {
	publisher := &stubPublisher{err: errors.New("broker down")}
	svc := newServiceFixture(t, publisher)
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, core.Record{
		Category: "Travel",
		Amount:   100,
		Date:     time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v, write must not fail on publish error", err)
	}

	records, err := svc.ListMonth(ctx, 2, 2025)
	if err != nil {
		t.Fatalf("ListMonth() error = %v", err)
	}
	if len(records) != 1 || records[0].ID != created.ID {
		t.Errorf("ListMonth() = %v, want the created record", records)
	}
}

func TestTransactionService_CreateWithoutPublisher(t *testing.T) {
	svc := newServiceFixture(t, nil)
	ctx := context.Background()

	if _, err := svc.CreateTransaction(ctx, core.Record{
		Category: "Food",
		Amount:   10,
		Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("CreateTransaction() without publisher error = %v", err)
	}
}

func TestTransactionService_DeletePublishesDigestRequest(t *testing.T) {
	publisher := &stubPublisher{}
	svc := newServiceFixture(t, publisher)
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, core.Record{
		Category: "Food",
		Amount:   10,
		Date:     time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	if err := svc.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	if len(publisher.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(publisher.published))
	}
	msg := publisher.published[1]
	if msg.Month != 3 || msg.Year != 2025 || msg.Reason != amqp.ReasonTransactionDeleted {
		t.Errorf("published message = %+v, want March 2025 deleted", msg)
	}
}

func TestTransactionService_DeleteMissing(t *testing.T) {
	svc := newServiceFixture(t, &stubPublisher{})

	err := svc.DeleteTransaction(context.Background(), "no-such-id")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestTransactionService_InvalidRecordRejected(t *testing.T) {
	publisher := &stubPublisher{}
	svc := newServiceFixture(t, publisher)

	_, err := svc.CreateTransaction(context.Background(), core.Record{
		Category: "Food",
		Amount:   -5,
		Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("CreateTransaction() error = %v, want ErrInvalidAmount", err)
	}
	if len(publisher.published) != 0 {
		t.Error("no digest request should be published for a rejected write")
	}
}
