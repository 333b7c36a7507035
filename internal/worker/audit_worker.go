// Package worker turns transaction change events into audit rows.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"finance/internal/amqp"
	"finance/internal/cache"
	"finance/internal/sheets"
)

// seenTTL bounds how long a delivery key is remembered for redelivery checks.
const seenTTL = 10 * time.Minute

// EventSource is satisfied by *amqp.Client.
type EventSource interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
}

// AuditWorker appends one audit row per distinct change event. Redelivered
// events are recognised by type, transaction and emit time and skipped.
type AuditWorker struct {
	writer sheets.AuditWriter
	seen   *cache.LRUCache[struct{}]
	now    func() time.Time

	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

func NewAuditWorker(writer sheets.AuditWriter, seenSize int) *AuditWorker {
	return &AuditWorker{
		writer: writer,
		seen:   cache.NewLRUCache[struct{}](seenSize, seenTTL),
		now:    time.Now,
	}
}

// Seen exposes the redelivery cache so a cache.Manager can expire it.
func (w *AuditWorker) Seen() cache.Cleaner {
	return w.seen
}

// RowFromEvent maps an event onto the audit sheet layout.
func RowFromEvent(evt *amqp.TransactionEvent, recorded time.Time) sheets.AuditRow {
	return sheets.AuditRow{
		Recorded:      recorded,
		Event:         string(evt.Type),
		UserID:        evt.UserID,
		TransactionID: evt.TransactionID,
		Kind:          evt.Kind,
		Amount:        evt.Amount,
		CategoryID:    evt.CategoryID,
		OccurredAt:    evt.OccurredAt,
		Description:   evt.Description,
	}
}

func deliveryKey(evt *amqp.TransactionEvent) string {
	return string(evt.Type) + ":" + strconv.FormatInt(evt.TransactionID, 10) + ":" + strconv.FormatInt(evt.Timestamp.UnixNano(), 10)
}

// HandleEvent processes a single transaction event from AMQP.
func (w *AuditWorker) HandleEvent(ctx context.Context, evt *amqp.TransactionEvent) error {
	key := deliveryKey(evt)
	if _, ok := w.seen.Get(key); ok {
		w.skipped.Add(1)
		slog.DebugContext(ctx, "Skipping redelivered event", "type", evt.Type, "transaction_id", evt.TransactionID)
		return nil
	}

	ref, err := w.writer.AppendAudit(ctx, RowFromEvent(evt, w.now()))
	if err != nil {
		w.failed.Add(1)
		slog.ErrorContext(ctx, "Failed to append audit row",
			"type", evt.Type,
			"transaction_id", evt.TransactionID,
			"error", err)
		return fmt.Errorf("append audit row: %w", err)
	}
	w.seen.Set(key, struct{}{})
	w.processed.Add(1)

	slog.InfoContext(ctx, "Audit row recorded",
		"type", evt.Type,
		"user_id", evt.UserID,
		"transaction_id", evt.TransactionID,
		"ref", ref)
	return nil
}

// Run consumes events from src until ctx is done.
func (w *AuditWorker) Run(ctx context.Context, src EventSource) error {
	slog.InfoContext(ctx, "Audit worker started")
	err := src.ConsumeTransactionEvents(ctx, w.HandleEvent)
	slog.InfoContext(ctx, "Audit worker stopped", "stats", w.Stats())
	return err
}

type Stats struct {
	Processed int64 `json:"processed"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("processed", s.Processed),
		slog.Int64("skipped", s.Skipped),
		slog.Int64("failed", s.Failed))
}

func (w *AuditWorker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Skipped:   w.skipped.Load(),
		Failed:    w.failed.Load(),
	}
}
