package fakeapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/fakeapi"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

type fixture struct {
	fake   *fakeapi.Server
	client *api.Client
	user   core.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := fakeapi.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	user, token, err := fake.SeedUser("Budi", "budi@example.com", "rahasia123")
	require.NoError(t, err)

	return &fixture{
		fake:   fake,
		client: api.New(srv.URL+"/api", api.WithTokenSource(staticToken(token))),
		user:   user,
	}
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, amount(want).Equal(got), "want %d, got %s", want, got)
}

var day = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func TestTransactionsMoveWalletBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wallet := f.fake.SeedWallet(f.user.ID, "BCA", 100000)
	food := f.fake.SeedCategory(f.user.ID, "Makan", core.Expense)
	salary := f.fake.SeedCategory(f.user.ID, "Gaji", core.Income)

	expense, err := f.client.CreateTransaction(ctx, core.TransactionInput{
		WalletID: wallet.ID, CategoryID: food.ID, Amount: amount(20000), Type: core.Expense, Date: day,
	})
	require.NoError(t, err)
	assert.Equal(t, "Makan", expense.Category.Name)

	w, _ := f.fake.Wallet(f.user.ID, wallet.ID)
	assertAmount(t, 80000, w.Balance)

	_, err = f.client.CreateTransaction(ctx, core.TransactionInput{
		WalletID: wallet.ID, CategoryID: salary.ID, Amount: amount(50000), Type: core.Income, Date: day,
	})
	require.NoError(t, err)
	w, _ = f.fake.Wallet(f.user.ID, wallet.ID)
	assertAmount(t, 130000, w.Balance)

	require.NoError(t, f.client.DeleteTransaction(ctx, expense.ID))
	w, _ = f.fake.Wallet(f.user.ID, wallet.ID)
	assertAmount(t, 150000, w.Balance)
}

func TestTransactionRequiresExistingWallet(t *testing.T) {
	f := newFixture(t)
	food := f.fake.SeedCategory(f.user.ID, "Makan", core.Expense)

	_, err := f.client.CreateTransaction(context.Background(), core.TransactionInput{
		WalletID: 999, CategoryID: food.ID, Amount: amount(1000), Type: core.Expense, Date: day,
	})
	require.Error(t, err)
	assert.Equal(t, "wallet not found", api.Message(err, ""))
	assert.True(t, api.IsNotFound(err))
}

func TestTransferWritesPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from := f.fake.SeedWallet(f.user.ID, "BCA", 100000)
	to := f.fake.SeedWallet(f.user.ID, "Dompet", 0)

	require.NoError(t, f.client.Transfer(ctx, core.TransferInput{
		FromWalletID: from.ID, ToWalletID: to.ID, Amount: amount(25000), Date: day,
	}))

	src, _ := f.fake.Wallet(f.user.ID, from.ID)
	dst, _ := f.fake.Wallet(f.user.ID, to.ID)
	assertAmount(t, 75000, src.Balance)
	assertAmount(t, 25000, dst.Balance)

	page, err := f.client.ListTransactions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	types := []core.TransactionType{page.Data[0].Type, page.Data[1].Type}
	assert.ElementsMatch(t, []core.TransactionType{core.TransferIn, core.TransferOut}, types)
}

func TestDebtPaymentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wallet := f.fake.SeedWallet(f.user.ID, "BCA", 0)

	debt, err := f.client.CreateDebt(ctx, core.DebtInput{
		WalletID: wallet.ID, Name: "Pinjaman Andi", Amount: amount(500000), Type: core.DebtPayable,
	})
	require.NoError(t, err)
	assertAmount(t, 500000, debt.Remaining)

	w, _ := f.fake.Wallet(f.user.ID, wallet.ID)
	assertAmount(t, 500000, w.Balance)

	debt, err = f.client.PayDebt(ctx, debt.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(200000)})
	require.NoError(t, err)
	assertAmount(t, 300000, debt.Remaining)
	assert.False(t, debt.IsPaid)
	require.Len(t, debt.Payments, 1)
	assert.Equal(t, "Pembayaran Cicilan", debt.Payments[0].Note)

	_, err = f.client.PayDebt(ctx, debt.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(400000)})
	require.Error(t, err)
	assert.Equal(t, "payment amount exceeds remaining debt", api.Message(err, ""))

	debt, err = f.client.PayDebt(ctx, debt.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(300000)})
	require.NoError(t, err)
	assert.True(t, debt.Remaining.IsZero())
	assert.True(t, debt.IsPaid)

	w, _ = f.fake.Wallet(f.user.ID, wallet.ID)
	assertAmount(t, 0, w.Balance)

	_, err = f.client.PayDebt(ctx, debt.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(1)})
	require.Error(t, err)
	assert.Equal(t, "debt is already fully paid", api.Message(err, ""))

	require.NoError(t, f.client.DeleteDebtPayment(ctx, debt.Payments[1].ID))
	debts, err := f.client.ListDebts(ctx, core.DebtPayable)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assertAmount(t, 300000, debts[0].Remaining)
	assert.False(t, debts[0].IsPaid)

	w, _ = f.fake.Wallet(f.user.ID, wallet.ID)
	assertAmount(t, 300000, w.Balance)
}

func TestDeleteReceivableRestoresRemaining(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wallet := f.fake.SeedWallet(f.user.ID, "BCA", 1000000)

	debt, err := f.client.CreateDebt(ctx, core.DebtInput{
		WalletID: wallet.ID, Name: "Citra", Amount: amount(200000), Type: core.DebtReceivable,
	})
	require.NoError(t, err)
	_, err = f.client.PayDebt(ctx, debt.ID, core.PayDebtInput{WalletID: wallet.ID, Amount: amount(50000)})
	require.NoError(t, err)

	w, _ := f.fake.Wallet(f.user.ID, wallet.ID)
	assertAmount(t, 850000, w.Balance)

	require.NoError(t, f.client.DeleteDebt(ctx, debt.ID))
	w, _ = f.fake.Wallet(f.user.ID, wallet.ID)
	assertAmount(t, 1000000, w.Balance)
}

func TestContributionBooksExpense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wallet := f.fake.SeedWallet(f.user.ID, "BCA", 100000)
	savings := f.fake.SeedCategory(f.user.ID, "Tabungan", core.Expense)

	goal, err := f.client.CreateSavingGoal(ctx, core.SavingGoalInput{Name: "Laptop", TargetAmount: amount(50000), CategoryID: savings.ID})
	require.NoError(t, err)

	c, err := f.client.AddContribution(ctx, goal.ID, core.ContributionInput{WalletID: wallet.ID, Amount: amount(50000), Date: day})
	require.NoError(t, err)
	assert.NotZero(t, c.TransactionID)

	goals, err := f.client.ListSavingGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assertAmount(t, 50000, goals[0].CurrentAmount)
	assert.True(t, goals[0].IsAchieved)

	w, _ := f.fake.Wallet(f.user.ID, wallet.ID)
	assertAmount(t, 50000, w.Balance)
}

func TestTransactionListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bca := f.fake.SeedWallet(f.user.ID, "BCA", 0)
	cash := f.fake.SeedWallet(f.user.ID, "Cash", 0)
	food := f.fake.SeedCategory(f.user.ID, "Makan", core.Expense)

	for i, w := range []core.Wallet{bca, bca, cash} {
		_, err := f.client.CreateTransaction(ctx, core.TransactionInput{
			WalletID: w.ID, CategoryID: food.ID, Amount: amount(1000), Type: core.Expense,
			Description: "coffee", Date: day.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query url.Values
		want  int
		total int64
	}{
		{name: "no filter", query: nil, want: 3, total: 3},
		{name: "wallet all is ignored", query: url.Values{"wallet_id": {"all"}}, want: 3, total: 3},
		{name: "wallet filter", query: url.Values{"wallet_id": {itoa(bca.ID)}}, want: 2, total: 2},
		{name: "pagination", query: url.Values{"limit": {"2"}, "page": {"2"}}, want: 1, total: 3},
		{name: "search by category name", query: url.Values{"search": {"makan"}}, want: 3, total: 3},
		{name: "search miss", query: url.Values{"search": {"tea"}}, want: 0, total: 0},
		{name: "date range", query: url.Values{"start_date": {"2025-01-15"}, "end_date": {"2025-01-15"}}, want: 1, total: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.client.ListTransactions(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, "success", page.Status)
			assert.Len(t, page.Data, tt.want)
			assert.Equal(t, tt.total, page.Meta.Total)
		})
	}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestCalendarAndReportRequireRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.Calendar(ctx, url.Values{"start_date": {"2025-01-01"}})
	require.Error(t, err)
	assert.Equal(t, "start_date and end_date are required", api.Message(err, ""))

	_, err = f.client.Report(ctx, nil)
	require.Error(t, err)

	wallet := f.fake.SeedWallet(f.user.ID, "BCA", 0)
	food := f.fake.SeedCategory(f.user.ID, "Makan", core.Expense)
	_, err = f.client.CreateTransaction(ctx, core.TransactionInput{
		WalletID: wallet.ID, CategoryID: food.ID, Amount: amount(1500), Type: core.Expense, Date: day,
	})
	require.NoError(t, err)

	rng := url.Values{"start_date": {"2025-01-01"}, "end_date": {"2025-01-31"}}
	days, err := f.client.Calendar(ctx, rng)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-01-15", days[0].Date)
	assertAmount(t, 1500, days[0].Expense)

	report, err := f.client.Report(ctx, rng)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "Makan", report[0].CategoryName)
}

func TestAuthentication(t *testing.T) {
	fake := fakeapi.New()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	ctx := context.Background()

	anon := api.New(srv.URL + "/api")
	_, err := anon.ListWallets(ctx)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	auth, err := anon.Register(ctx, core.RegisterInput{Name: "Sari", Email: "sari@example.com", Password: "rahasia"})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)

	_, err = anon.Login(ctx, core.Credentials{Email: "sari@example.com", Password: "salah"})
	require.Error(t, err)
	assert.Equal(t, "invalid email or password", api.Message(err, ""))

	login, err := anon.Login(ctx, core.Credentials{Email: "sari@example.com", Password: "rahasia"})
	require.NoError(t, err)

	client := api.New(srv.URL+"/api", api.WithTokenSource(staticToken(login.Token)))
	profile, err := client.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sari", profile.Name)
}

func TestFailNextAndRecording(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fake.FailNext(http.MethodGet, "/api/wallets", http.StatusInternalServerError, "database unavailable")

	_, err := f.client.ListWallets(ctx)
	require.Error(t, err)
	assert.Equal(t, "database unavailable", api.Message(err, ""))

	_, err = f.client.ListWallets(ctx)
	require.NoError(t, err)

	recorded := f.fake.RequestsTo(http.MethodGet, "/api/wallets")
	assert.Len(t, recorded, 2)

	f.fake.ResetRequests()
	assert.Empty(t, f.fake.Requests())
}

func TestDelayHonoursContext(t *testing.T) {
	f := newFixture(t)
	f.fake.Delay(http.MethodGet, "/api/wallets", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.client.ListWallets(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAuthRateLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	fake := fakeapi.New(fakeapi.WithAuthRateLimit(2), fakeapi.WithClock(func() time.Time { return now }))
	srv := httptest.NewServer(fake)
	defer srv.Close()
	ctx := context.Background()

	_, _, err := fake.SeedUser("Budi", "budi@example.com", "rahasia123")
	require.NoError(t, err)
	anon := api.New(srv.URL + "/api")
	creds := core.Credentials{Email: "budi@example.com", Password: "salah"}

	for i := 0; i < 2; i++ {
		_, err := anon.Login(ctx, creds)
		assert.Equal(t, "invalid email or password", api.Message(err, ""))
	}

	_, err = anon.Login(ctx, creds)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)

	_, err = anon.ListWallets(ctx)
	assert.True(t, api.IsUnauthorized(err), "other routes are not limited")

	now = now.Add(time.Minute)
	_, err = anon.Login(ctx, core.Credentials{Email: "budi@example.com", Password: "rahasia123"})
	require.NoError(t, err)
}
