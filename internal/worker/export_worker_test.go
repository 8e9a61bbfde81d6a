package worker

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimurrofid/petualangan-cuan/internal/amqp"
	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/events"
)

type fakeSource struct {
	txs     []core.Transaction
	err     error
	queries []url.Values
}

func (f *fakeSource) ListTransactions(_ context.Context, q url.Values) (api.TransactionPage, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return api.TransactionPage{}, f.err
	}
	return api.TransactionPage{Data: f.txs}, nil
}

type fakeExporter struct {
	appended []int64
	failOn   int64
}

func (f *fakeExporter) Append(_ context.Context, tx core.Transaction) (string, error) {
	if tx.ID == f.failOn {
		return "", errors.New("quota exceeded")
	}
	f.appended = append(f.appended, tx.ID)
	return "ref", nil
}

type memMarkers map[int64]string

func (m memMarkers) IsExported(_ context.Context, id int64) (bool, error) {
	_, ok := m[id]
	return ok, nil
}

func (m memMarkers) MarkExported(_ context.Context, id int64, ref string) error {
	m[id] = ref
	return nil
}

func newestFirst(ids ...int64) []core.Transaction {
	out := make([]core.Transaction, len(ids))
	for i, id := range ids {
		out[i] = core.Transaction{ID: id, Amount: decimal.NewFromInt(1000), Type: core.Expense, Date: time.Now()}
	}
	return out
}

func message(kind events.Kind) *amqp.EventMessage {
	return amqp.NewEventMessage(events.New(kind, 1), 7)
}

func TestExportWorker_HandleEvent(t *testing.T) {
	tests := []struct {
		name         string
		kind         events.Kind
		exported     memMarkers
		wantAppended []int64
	}{
		{
			name:         "exports oldest first",
			kind:         events.TransactionCreated,
			exported:     memMarkers{},
			wantAppended: []int64{1, 2, 3},
		},
		{
			name:         "skips exported transactions",
			kind:         events.DebtPaid,
			exported:     memMarkers{1: "ref", 3: "ref"},
			wantAppended: []int64{2},
		},
		{
			name:         "debt edits move no money",
			kind:         events.DebtUpdated,
			exported:     memMarkers{},
			wantAppended: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{txs: newestFirst(3, 2, 1)}
			exporter := &fakeExporter{}
			w := NewExportWorker(source, exporter, tt.exported, 10, nil)

			require.NoError(t, w.HandleEvent(context.Background(), message(tt.kind)))
			assert.Equal(t, tt.wantAppended, exporter.appended)
			for _, id := range tt.wantAppended {
				_, ok := tt.exported[id]
				assert.True(t, ok, "transaction %d marked", id)
			}
		})
	}
}

func TestExportWorker_Failures(t *testing.T) {
	t.Run("export failure requeues and keeps earlier rows", func(t *testing.T) {
		markers := memMarkers{}
		exporter := &fakeExporter{failOn: 2}
		w := NewExportWorker(&fakeSource{txs: newestFirst(3, 2, 1)}, exporter, markers, 10, nil)

		err := w.HandleEvent(context.Background(), message(events.TransactionCreated))
		require.Error(t, err)
		assert.Equal(t, []int64{1}, exporter.appended)
		assert.Len(t, markers, 1)
	})

	t.Run("list failure is returned", func(t *testing.T) {
		w := NewExportWorker(&fakeSource{err: errors.New("backend down")}, &fakeExporter{}, memMarkers{}, 10, nil)
		err := w.HandleEvent(context.Background(), message(events.TransferCompleted))
		assert.ErrorContains(t, err, "backend down")
	})
}

func TestExportWorker_CatchUp(t *testing.T) {
	source := &fakeSource{txs: newestFirst(2, 1)}
	exporter := &fakeExporter{}
	w := NewExportWorker(source, exporter, memMarkers{}, 20, nil)

	require.NoError(t, w.CatchUp(context.Background()))
	assert.Equal(t, []int64{1, 2}, exporter.appended)
	require.Len(t, source.queries, 1)
	assert.Equal(t, "100", source.queries[0].Get("limit"))
}
