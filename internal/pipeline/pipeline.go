// Package pipeline ties order splitting, spreadsheet appends and the
// processed-order ledger together into the per-record processing step.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"sheetsync/internal/metrics"
	"sheetsync/internal/order"
)

// Appender appends flattened rows to the spreadsheet.
type Appender interface {
	AppendAll(ctx context.Context, rows []order.Row) error
}

// Ledger records which orders have already been appended, so replayed
// records are not appended twice.
type Ledger interface {
	Appended(ctx context.Context, id string) (bool, error)
	MarkAppended(ctx context.Context, id string, rows int) error
}

// Pipeline processes one incoming order record at a time.
type Pipeline struct {
	appender Appender
	ledger   Ledger
}

// New creates a pipeline.
func New(appender Appender, ledger Ledger) *Pipeline {
	return &Pipeline{
		appender: appender,
		ledger:   ledger,
	}
}

// Process splits the order into rows and appends them to the spreadsheet.
// Orders already recorded in the ledger are skipped. A failure aborts this
// order only; rows appended before the failure stay in the worksheet.
func (p *Pipeline) Process(ctx context.Context, id string, o order.Order) error {
	done, err := p.ledger.Appended(ctx, id)
	if err != nil {
		return err
	}
	if done {
		slog.Debug("order already appended, skipping", "order", id)
		return nil
	}

	rows, err := order.Split(o)
	if err != nil {
		metrics.OrdersRejected.Inc()
		return fmt.Errorf("splitting order %s: %w", id, err)
	}

	if err := p.appender.AppendAll(ctx, rows); err != nil {
		metrics.AppendFailures.Inc()
		return fmt.Errorf("appending order %s: %w", id, err)
	}

	metrics.OrdersAppended.Inc()
	metrics.RowsAppended.Add(float64(len(rows)))

	if err := p.ledger.MarkAppended(ctx, id, len(rows)); err != nil {
		return err
	}

	slog.Info("order appended", "order", id, "rows", len(rows))

	return nil
}
