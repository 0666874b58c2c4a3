// Package worker consumes transaction mutation events and mirrors
// created transactions into the Google Sheets export.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"masroofy/internal/amqp"
	"masroofy/internal/core"
)

// Appender is the destination of exported transactions.
type Appender interface {
	Append(ctx context.Context, tx core.Transaction) error
}

// ExportWorker handles one event at a time; delivery retries are the
// broker's job.
type ExportWorker struct {
	sheet Appender
}

func NewExportWorker(sheet Appender) *ExportWorker {
	return &ExportWorker{sheet: sheet}
}

// HandleEvent processes a single mutation event. The export is an
// append-only mirror: updates and deletes are acknowledged but not
// replayed into the sheet.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	switch msg.Action {
	case amqp.ActionCreated:
		if msg.Transaction == nil {
			// Malformed producer message; requeueing would loop forever.
			slog.WarnContext(ctx, "Created event without payload, dropping", "id", msg.ID)
			return nil
		}
		if err := w.sheet.Append(ctx, *msg.Transaction); err != nil {
			return fmt.Errorf("export transaction %d: %w", msg.ID, err)
		}
		slog.InfoContext(ctx, "Exported transaction",
			"id", msg.ID,
			"name", msg.Transaction.Name,
			"amount", msg.Transaction.Amount)
		return nil
	case amqp.ActionUpdated, amqp.ActionDeleted:
		slog.DebugContext(ctx, "Skipping non-created event", "action", msg.Action, "id", msg.ID)
		return nil
	default:
		slog.WarnContext(ctx, "Unknown event action, dropping", "action", msg.Action, "id", msg.ID)
		return nil
	}
}
