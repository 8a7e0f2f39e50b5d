package sheets

import (
	"context"
	"time"

	"finsight/internal/core"
)

// Digest is a rendered monthly narrative ready to be archived.
type Digest struct {
	Month       int
	Year        int
	Title       string
	Body        string
	GeneratedAt time.Time
}

// Ports for outbound adapters.
type (
	// TransactionSource provides the full transaction snapshot the
	// analytics engine works on.
	TransactionSource interface {
		ListTransactions(ctx context.Context) ([]core.Record, error)
	}

	TransactionWriter interface {
		AppendTransaction(ctx context.Context, r core.Record) (rowRef string, err error)
	}

	// DigestWriter archives rendered monthly digests.
	DigestWriter interface {
		AppendDigest(ctx context.Context, d Digest) (rowRef string, err error)
	}

	// CategorySource returns the known category names.
	CategorySource interface {
		ListCategories(ctx context.Context) (categories []string, err error)
	}
)
