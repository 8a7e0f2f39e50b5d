// Package worker rebuilds monthly digests in response to AMQP requests and
// archives them through a DigestWriter.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finsight/internal/amqp"
	"finsight/internal/analytics"
	"finsight/internal/core"
	"finsight/internal/narrative"
	"finsight/internal/sheets"
)

// Snapshotter supplies the transaction snapshot the digests are built from.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]core.Record, error)
}

// Consumer feeds digest requests to a handler. *amqp.Client satisfies it.
type Consumer interface {
	ConsumeDigestRequests(ctx context.Context, handler func(*amqp.DigestMessage) error) error
}

// DigestWorker turns digest requests into rendered month summaries and a
// periodic trend digest.
type DigestWorker struct {
	source      Snapshotter
	writer      sheets.DigestWriter
	consumer    Consumer
	trendWindow int
	interval    time.Duration
}

func NewDigestWorker(source Snapshotter, writer sheets.DigestWriter, consumer Consumer, trendWindow int, interval time.Duration) *DigestWorker {
	if trendWindow < 1 {
		trendWindow = analytics.DefaultTrendWindow
	}
	return &DigestWorker{
		source:      source,
		writer:      writer,
		consumer:    consumer,
		trendWindow: trendWindow,
		interval:    interval,
	}
}

// Run consumes digest requests and exports a trend digest on a fixed
// interval until the context ends.
func (w *DigestWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.consumeLoop(ctx)
	})
	g.Go(func() error {
		return w.trendLoop(ctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (w *DigestWorker) consumeLoop(ctx context.Context) error {
	if w.consumer == nil {
		slog.InfoContext(ctx, "No AMQP consumer configured, digests rebuild on schedule only")
		<-ctx.Done()
		return ctx.Err()
	}

	return w.consumer.ConsumeDigestRequests(ctx, func(msg *amqp.DigestMessage) error {
		return w.HandleDigestRequest(ctx, msg)
	})
}

func (w *DigestWorker) trendLoop(ctx context.Context) error {
	if w.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExportTrendDigest(ctx); err != nil {
				slog.ErrorContext(ctx, "Failed to export trend digest", "error", err)
			}
		}
	}
}

// HandleDigestRequest rebuilds the digest for the requested month and
// archives it. A month with no data is skipped, not an error: the request
// may refer to a month whose last transaction was just deleted.
func (w *DigestWorker) HandleDigestRequest(ctx context.Context, msg *amqp.DigestMessage) error {
	slog.InfoContext(ctx, "Processing digest request",
		"month", msg.Month,
		"year", msg.Year,
		"reason", msg.Reason)

	records, err := w.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	summary := analytics.SummarizeMonth(records, msg.Month, msg.Year)
	if summary.Failure == analytics.FailureInvalidParam {
		// Drop malformed requests instead of requeueing them forever.
		slog.WarnContext(ctx, "Dropping digest request with invalid month",
			"month", msg.Month, "year", msg.Year, "message", summary.Message)
		return nil
	}
	if !summary.Found {
		slog.InfoContext(ctx, "No data for requested digest month, skipping",
			"month", msg.Month, "year", msg.Year)
		return nil
	}

	digest := sheets.Digest{
		Month:       msg.Month,
		Year:        msg.Year,
		Title:       summary.Label(),
		Body:        narrative.FormatMonthSummary(summary),
		GeneratedAt: time.Now(),
	}

	ref, err := w.writer.AppendDigest(ctx, digest)
	if err != nil {
		return fmt.Errorf("archive digest: %w", err)
	}

	slog.InfoContext(ctx, "Digest rebuilt",
		"month", msg.Month,
		"year", msg.Year,
		"sheets_ref", ref)
	return nil
}

// ExportTrendDigest renders the rolling trend report and archives it under
// the most recent month with data.
func (w *DigestWorker) ExportTrendDigest(ctx context.Context) error {
	records, err := w.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	report := analytics.RollingTrend(records, w.trendWindow)
	if len(report.Points) == 0 {
		slog.InfoContext(ctx, "No data for trend digest, skipping")
		return nil
	}

	last := report.Points[len(report.Points)-1]
	digest := sheets.Digest{
		Month:       last.Month,
		Year:        last.Year,
		Title:       fmt.Sprintf("Spending trend (%d-month window)", w.trendWindow),
		Body:        narrative.FormatTrend(report),
		GeneratedAt: time.Now(),
	}

	ref, err := w.writer.AppendDigest(ctx, digest)
	if err != nil {
		return fmt.Errorf("archive trend digest: %w", err)
	}

	slog.InfoContext(ctx, "Trend digest exported",
		"window", w.trendWindow,
		"direction", report.Direction,
		"sheets_ref", ref)
	return nil
}
