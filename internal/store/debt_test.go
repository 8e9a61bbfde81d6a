package store_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

func TestDebtStore_PaymentLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	wallet := h.fake.SeedWallet(h.user.ID, "BCA", 1000000)
	h.wallets.Fetch(ctx)

	debt, err := h.debts.Create(ctx, core.DebtInput{
		WalletID: wallet.ID, Name: "Andi", Amount: amount(500000), Type: core.DebtPayable,
	})
	require.NoError(t, err)
	assertAmount(t, 1500000, cachedWallet(t, h.wallets, wallet.ID).Balance)
	require.Len(t, h.debts.Debts(), 1)
	assert.Empty(t, h.debts.Receivables())
	assert.Len(t, h.transactions.Items(), 1, "opening transaction is visible")

	paid, err := h.debts.Pay(ctx, debt.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(200000)})
	require.NoError(t, err)
	assertAmount(t, 300000, paid.Remaining)
	assert.False(t, paid.IsPaid)
	assertAmount(t, 1300000, cachedWallet(t, h.wallets, wallet.ID).Balance)

	paid, err = h.debts.Pay(ctx, debt.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(300000)})
	require.NoError(t, err)
	assert.True(t, paid.Remaining.IsZero())
	assert.True(t, paid.IsPaid)
	require.Len(t, paid.Payments, 2)

	cached, ok := h.debts.Find(debt.ID)
	require.True(t, ok)
	assert.True(t, cached.IsPaid)
	assertAmount(t, 1000000, cachedWallet(t, h.wallets, wallet.ID).Balance)
	assert.Len(t, h.transactions.Items(), 3)

	_, err = h.debts.Pay(ctx, debt.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(1)})
	require.Error(t, err)
	assert.Equal(t, "debt is already fully paid", h.debts.Err())

	require.NoError(t, h.debts.DeletePayment(ctx, paid.Payments[1].ID))
	cached, ok = h.debts.Find(debt.ID)
	require.True(t, ok)
	assertAmount(t, 300000, cached.Remaining)
	assert.False(t, cached.IsPaid)
	assertAmount(t, 1300000, cachedWallet(t, h.wallets, wallet.ID).Balance)
}

func TestDebtStore_Overpayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	wallet := h.fake.SeedWallet(h.user.ID, "BCA", 0)

	debt, err := h.debts.Create(ctx, core.DebtInput{
		WalletID: wallet.ID, Name: "Andi", Amount: amount(100000), Type: core.DebtPayable,
	})
	require.NoError(t, err)
	h.fake.ResetRequests()

	_, err = h.debts.Pay(ctx, debt.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(150000)})
	require.Error(t, err)
	assert.Equal(t, "payment amount exceeds remaining debt", h.debts.Err())
	assert.Empty(t, h.fake.RequestsTo(http.MethodGet, "/api/wallets"), "failed writes publish nothing")

	cached, _ := h.debts.Find(debt.ID)
	assertAmount(t, 100000, cached.Remaining)
}

func TestDebtStore_Receivable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	wallet := h.fake.SeedWallet(h.user.ID, "BCA", 400000)

	r, err := h.debts.Create(ctx, core.DebtInput{
		WalletID: wallet.ID, Name: "Sari", Amount: amount(150000), Type: core.DebtReceivable,
	})
	require.NoError(t, err)
	require.Len(t, h.debts.Receivables(), 1)
	assert.Empty(t, h.debts.Debts())
	assertAmount(t, 250000, cachedWallet(t, h.wallets, wallet.ID).Balance)

	_, err = h.debts.Pay(ctx, r.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(50000)})
	require.NoError(t, err)
	assertAmount(t, 300000, cachedWallet(t, h.wallets, wallet.ID).Balance)

	h.fake.ResetRequests()
	require.NoError(t, h.debts.Delete(ctx, r.ID))
	assert.Empty(t, h.debts.Receivables())

	// Deleting only re-fetches debts; the wallet list is stale until the
	// next wallet fetch.
	assert.Empty(t, h.fake.RequestsTo(http.MethodGet, "/api/wallets"))
	assertAmount(t, 300000, cachedWallet(t, h.wallets, wallet.ID).Balance)
	h.wallets.Fetch(ctx)
	assertAmount(t, 400000, cachedWallet(t, h.wallets, wallet.ID).Balance)
}

func TestDebtStore_UpdateBelowPaid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	wallet := h.fake.SeedWallet(h.user.ID, "BCA", 0)

	debt, err := h.debts.Create(ctx, core.DebtInput{
		WalletID: wallet.ID, Name: "Andi", Amount: amount(100000), Type: core.DebtPayable,
	})
	require.NoError(t, err)
	_, err = h.debts.Pay(ctx, debt.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(60000)})
	require.NoError(t, err)

	_, err = h.debts.Update(ctx, debt.ID, core.DebtUpdateInput{WalletID: wallet.ID, Name: "Andi", Amount: amount(50000)})
	require.Error(t, err)
	assert.Equal(t, "new amount cannot be less than already paid amount", h.debts.Err())

	updated, err := h.debts.Update(ctx, debt.ID, core.DebtUpdateInput{WalletID: wallet.ID, Name: "Andi B", Amount: amount(120000)})
	require.NoError(t, err)
	assertAmount(t, 60000, updated.Remaining)

	cached, ok := h.debts.Find(debt.ID)
	require.True(t, ok)
	assert.Equal(t, "Andi B", cached.Name)
}
