package store_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/events"
	"github.com/alimurrofid/petualangan-cuan/internal/fakeapi"
	"github.com/alimurrofid/petualangan-cuan/internal/refresh"
	"github.com/alimurrofid/petualangan-cuan/internal/store"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

// harness wires the stores to a fake backend the same way the app does.
type harness struct {
	fake   *fakeapi.Server
	client *api.Client
	bus    *events.Bus
	user   core.User

	wallets      *store.WalletStore
	categories   *store.CategoryStore
	transactions *store.TransactionStore
	debts        *store.DebtStore
	goals        *store.SavingGoalStore
	wishlist     *store.WishlistStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := fakeapi.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	user, token, err := fake.SeedUser("Budi", "budi@example.com", "rahasia123")
	require.NoError(t, err)

	client := api.New(srv.URL+"/api", api.WithTokenSource(staticToken(token)))
	bus := events.NewBus(nil)

	h := &harness{
		fake:         fake,
		client:       client,
		bus:          bus,
		user:         user,
		wallets:      store.NewWalletStore(client, nil),
		categories:   store.NewCategoryStore(client, nil),
		transactions: store.NewTransactionStore(client, bus, nil),
		debts:        store.NewDebtStore(client, bus, nil),
		goals:        store.NewSavingGoalStore(client, bus, nil),
		wishlist:     store.NewWishlistStore(client, nil),
	}

	coordinator := refresh.NewCoordinator(nil)
	coordinator.Register(refresh.Wallets, h.wallets)
	coordinator.Register(refresh.Transactions, h.transactions)
	coordinator.Register(refresh.Debts, h.debts)
	coordinator.Register(refresh.SavingGoals, h.goals)
	t.Cleanup(coordinator.Attach(bus))

	return h
}

var day = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, amount(want).Equal(got), "want %d, got %s", want, got)
}

func cachedWallet(t *testing.T, s *store.WalletStore, id int64) core.Wallet {
	t.Helper()
	w, ok := s.Find(id)
	require.True(t, ok, "wallet %d not cached", id)
	return w
}
