package worker

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alimurrofid/petualangan-cuan/internal/amqp"
	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

type TransactionSource interface {
	ListTransactions(ctx context.Context, query url.Values) (api.TransactionPage, error)
}

// Exporter writes one transaction to the spreadsheet and returns a reference.
type Exporter interface {
	Append(ctx context.Context, tx core.Transaction) (string, error)
}

// Markers remembers which transactions were already exported so redelivered
// events do not duplicate rows.
type Markers interface {
	IsExported(ctx context.Context, transactionID int64) (bool, error)
	MarkExported(ctx context.Context, transactionID int64, ref string) error
}

// ExportWorker mirrors the backend ledger into a spreadsheet. Events only
// say that money moved; the worker re-reads the newest transactions and
// exports whatever it has not seen.
type ExportWorker struct {
	source    TransactionSource
	exporter  Exporter
	markers   Markers
	batchSize int
	logger    *log.Logger
}

func NewExportWorker(source TransactionSource, exporter Exporter, markers Markers, batchSize int, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if batchSize < 1 {
		batchSize = 50
	}
	return &ExportWorker{
		source:    source,
		exporter:  exporter,
		markers:   markers,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes one mirrored event. Returning an error requeues it.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.EventMessage) error {
	w.logger.InfoContext(ctx, "Processing event",
		log.FieldEvent, msg.Event.Kind,
		log.FieldEventID, msg.Event.ID,
		log.FieldUserID, msg.UserID)

	if !msg.Event.MovesMoney() {
		return nil
	}
	n, err := w.exportPending(ctx, w.batchSize)
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Event processed", log.FieldEventID, msg.Event.ID, log.FieldCount, n)
	return nil
}

// CatchUp exports a larger window of recent transactions, covering events
// missed while the worker was down or never delivered.
func (w *ExportWorker) CatchUp(ctx context.Context) error {
	n, err := w.exportPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("catch-up: %w", err)
	}
	if n == 0 {
		w.logger.DebugContext(ctx, "No pending transactions found")
		return nil
	}
	w.logger.InfoContext(ctx, "Catch-up completed", log.FieldCount, n)
	return nil
}

// exportPending exports the unexported transactions among the newest
// limit, oldest first so sheet rows keep ledger order.
func (w *ExportWorker) exportPending(ctx context.Context, limit int) (int, error) {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("limit", strconv.Itoa(limit))
	page, err := w.source.ListTransactions(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	exported := 0
	for i := len(page.Data) - 1; i >= 0; i-- {
		tx := page.Data[i]
		done, err := w.markers.IsExported(ctx, tx.ID)
		if err != nil {
			return exported, err
		}
		if done {
			continue
		}

		ref, err := w.exporter.Append(ctx, tx)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to export transaction",
				log.FieldTransactionID, tx.ID,
				log.FieldError, err)
			return exported, fmt.Errorf("export transaction %d: %w", tx.ID, err)
		}
		if err := w.markers.MarkExported(ctx, tx.ID, ref); err != nil {
			// The row is in the sheet; a later run may append it again.
			w.logger.ErrorContext(ctx, "Failed to mark as exported",
				log.FieldTransactionID, tx.ID,
				log.FieldError, err)
		}
		exported++
	}
	return exported, nil
}
