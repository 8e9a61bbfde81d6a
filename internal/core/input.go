package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Write payloads. Tags check shape only; business rules such as sufficient
// balance or overpayment are the server's job.
type (
	Credentials struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	RegisterInput struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	WalletInput struct {
		Name    string          `json:"name" validate:"required"`
		Type    string          `json:"type" validate:"required,oneof=Bank E-Wallet Cash"`
		Balance decimal.Decimal `json:"balance" validate:"gte=0"`
		Icon    string          `json:"icon"`
	}

	CategoryInput struct {
		Name        string          `json:"name" validate:"required"`
		Type        TransactionType `json:"type" validate:"required,oneof=income expense"`
		Icon        string          `json:"icon"`
		BudgetLimit decimal.Decimal `json:"budget_limit" validate:"gte=0"`
	}

	TransactionInput struct {
		WalletID    int64           `json:"wallet_id" validate:"required,gt=0"`
		CategoryID  int64           `json:"category_id" validate:"required,gt=0"`
		Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
		Type        TransactionType `json:"type" validate:"required,oneof=income expense"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date" validate:"required"`
	}

	TransferInput struct {
		FromWalletID int64           `json:"from_wallet_id" validate:"required,gt=0"`
		ToWalletID   int64           `json:"to_wallet_id" validate:"required,gt=0,nefield=FromWalletID"`
		Amount       decimal.Decimal `json:"amount" validate:"gt=0"`
		Description  string          `json:"description"`
		Date         time.Time       `json:"date" validate:"required"`
	}

	DebtInput struct {
		WalletID    int64           `json:"wallet_id" validate:"required,gt=0"`
		Name        string          `json:"name" validate:"required"`
		Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
		Type        DebtType        `json:"type" validate:"required,oneof=debt receivable"`
		Description string          `json:"description"`
		DueDate     *time.Time      `json:"due_date,omitempty"`
	}

	DebtUpdateInput struct {
		WalletID    int64           `json:"wallet_id" validate:"required,gt=0"`
		Name        string          `json:"name" validate:"required"`
		Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
		Description string          `json:"description"`
		DueDate     *time.Time      `json:"due_date,omitempty"`
	}

	PayDebtInput struct {
		WalletID int64           `json:"wallet_id" validate:"required,gt=0"`
		Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
		Note     string          `json:"note"`
	}

	WishlistInput struct {
		CategoryID     int64           `json:"category_id" validate:"required,gt=0"`
		Name           string          `json:"name" validate:"required"`
		EstimatedPrice decimal.Decimal `json:"estimated_price" validate:"gt=0"`
		Priority       Priority        `json:"priority" validate:"required,oneof=low medium high"`
	}

	SavingGoalInput struct {
		Name         string          `json:"name" validate:"required"`
		TargetAmount decimal.Decimal `json:"target_amount" validate:"gt=0"`
		CategoryID   int64           `json:"category_id" validate:"required,gt=0"`
		Deadline     *time.Time      `json:"deadline,omitempty"`
		Icon         string          `json:"icon"`
	}

	ContributionInput struct {
		WalletID    int64           `json:"wallet_id" validate:"required,gt=0"`
		Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
		Date        time.Time       `json:"date" validate:"required"`
		Description string          `json:"description"`
	}
)
