package refresh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimurrofid/petualangan-cuan/internal/events"
)

type recorder struct {
	calls []Target
}

func (r *recorder) refresher(t Target, err error) Refresher {
	return RefresherFunc(func(ctx context.Context) error {
		r.calls = append(r.calls, t)
		return err
	})
}

func newRecordingCoordinator(failing map[Target]error) (*Coordinator, *recorder) {
	rec := &recorder{}
	c := NewCoordinator(nil)
	for _, t := range []Target{Transactions, Wallets, Debts, SavingGoals} {
		c.Register(t, rec.refresher(t, failing[t]))
	}
	return c, rec
}

func TestCoordinator_RefreshOrderPerEvent(t *testing.T) {
	tests := []struct {
		kind events.Kind
		want []Target
	}{
		{events.TransactionCreated, []Target{Transactions, Wallets}},
		{events.TransactionDeleted, []Target{Transactions, Wallets}},
		{events.TransferCompleted, []Target{Transactions, Wallets}},
		{events.DebtCreated, []Target{Debts, Wallets, Transactions}},
		{events.DebtPaid, []Target{Debts, Wallets, Transactions}},
		{events.DebtPaymentDeleted, []Target{Debts, Wallets, Transactions}},
		{events.DebtDeleted, []Target{Debts}},
		{events.DebtUpdated, []Target{Debts}},
		{events.SavingGoalContributed, []Target{SavingGoals, Wallets, Transactions}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c, rec := newRecordingCoordinator(nil)
			require.NoError(t, c.Run(context.Background(), tt.kind))
			assert.Equal(t, tt.want, rec.calls)
		})
	}
}

func TestCoordinator_EveryKindHasAPlan(t *testing.T) {
	for _, kind := range events.Kinds() {
		assert.NotEmpty(t, TargetsFor(kind), "kind %s", kind)
	}
	assert.Empty(t, TargetsFor("wallet.renamed"))
}

func TestCoordinator_FailureDoesNotStopLaterTargets(t *testing.T) {
	boom := errors.New("network down")
	c, rec := newRecordingCoordinator(map[Target]error{Wallets: boom})

	err := c.Run(context.Background(), events.DebtPaid)

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "refresh wallets")
	assert.Equal(t, []Target{Debts, Wallets, Transactions}, rec.calls)
}

func TestCoordinator_AttachToBus(t *testing.T) {
	bus := events.NewBus(nil)
	c, rec := newRecordingCoordinator(nil)
	detach := c.Attach(bus)

	bus.Publish(context.Background(), events.New(events.TransferCompleted, 0, 1, 2))
	assert.Equal(t, []Target{Transactions, Wallets}, rec.calls)

	detach()
	bus.Publish(context.Background(), events.New(events.TransferCompleted, 0, 1, 2))
	assert.Len(t, rec.calls, 2)
}

func TestCoordinator_UnregisteredTargetIsSkipped(t *testing.T) {
	rec := &recorder{}
	c := NewCoordinator(nil)
	c.Register(Debts, rec.refresher(Debts, nil))

	require.NoError(t, c.Run(context.Background(), events.DebtPaid))
	assert.Equal(t, []Target{Debts}, rec.calls)
}
