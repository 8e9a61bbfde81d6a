package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletJSONAmountsAreNumbers(t *testing.T) {
	w := Wallet{ID: 1, Name: "BCA", Type: "Bank", Balance: MustAmount("100000")}

	b, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"balance":100000`)

	var back Wallet
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"balance":80000.5,"available_balance":"10"}`), &back))
	assert.Equal(t, "80000.5", back.Balance.String())
	assert.Equal(t, "10", back.AvailableBalance.String())
}

func TestPageMetaTotalPages(t *testing.T) {
	tests := []struct {
		meta PageMeta
		want int
	}{
		{PageMeta{Total: 0, Page: 1, Limit: 10}, 1},
		{PageMeta{Total: 10, Page: 1, Limit: 10}, 1},
		{PageMeta{Total: 11, Page: 1, Limit: 10}, 2},
		{PageMeta{Total: 95, Page: 3, Limit: 20}, 5},
		{PageMeta{Total: 5, Page: 1, Limit: 0}, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.meta.TotalPages(), "%+v", tt.meta)
	}
}

func TestSavingGoalProgress(t *testing.T) {
	g := SavingGoal{TargetAmount: MustAmount("1000"), CurrentAmount: MustAmount("250")}
	assert.InDelta(t, 25.0, g.Progress(), 0.001)

	g.CurrentAmount = MustAmount("1500")
	assert.Equal(t, 100.0, g.Progress())

	assert.Equal(t, 0.0, SavingGoal{}.Progress())
}

func TestTransactionTypeInflow(t *testing.T) {
	assert.True(t, Income.Inflow())
	assert.True(t, TransferIn.Inflow())
	assert.False(t, Expense.Inflow())
	assert.False(t, TransferOut.Inflow())
}

func TestValidate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		input   any
		wantTag string
	}{
		{
			name:  "valid expense",
			input: TransactionInput{WalletID: 1, CategoryID: 2, Amount: MustAmount("20000"), Type: Expense, Date: now},
		},
		{
			name:    "zero amount",
			input:   TransactionInput{WalletID: 1, CategoryID: 2, Type: Expense, Date: now},
			wantTag: "gt",
		},
		{
			name:    "transfer type is not user-creatable",
			input:   TransactionInput{WalletID: 1, CategoryID: 2, Amount: MustAmount("1"), Type: TransferIn, Date: now},
			wantTag: "oneof",
		},
		{
			name:    "transfer to same wallet",
			input:   TransferInput{FromWalletID: 3, ToWalletID: 3, Amount: MustAmount("5"), Date: now},
			wantTag: "nefield",
		},
		{
			name:    "unknown debt type",
			input:   DebtInput{WalletID: 1, Name: "Budi", Amount: MustAmount("500000"), Type: "loan"},
			wantTag: "oneof",
		},
		{
			name:  "valid payment",
			input: PayDebtInput{WalletID: 1, Amount: MustAmount("200000")},
		},
		{
			name:    "bad email",
			input:   Credentials{Email: "nope", Password: "x"},
			wantTag: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
			assert.Equal(t, tt.wantTag, verrs[0].Tag())
		})
	}
}
