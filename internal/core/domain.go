// Package core holds the cuan domain types shared by the API adapter, the
// stores and the fake backend.
package core

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, the way the backend writes them.
	decimal.MarshalJSONWithoutQuotes = true
}

type TransactionType string

const (
	Income      TransactionType = "income"
	Expense     TransactionType = "expense"
	TransferIn  TransactionType = "transfer_in"
	TransferOut TransactionType = "transfer_out"
)

// Inflow reports whether the transaction adds to its wallet.
func (t TransactionType) Inflow() bool {
	return t == Income || t == TransferIn
}

type DebtType string

const (
	DebtPayable    DebtType = "debt"
	DebtReceivable DebtType = "receivable"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type HealthStatus string

const (
	HealthHealthy HealthStatus = "Sehat"
	HealthWarning HealthStatus = "Waspada"
	HealthDanger  HealthStatus = "Bahaya"
)

type (
	User struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	AuthResponse struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}

	Wallet struct {
		ID               int64           `json:"id"`
		UserID           int64           `json:"user_id"`
		Name             string          `json:"name"`
		Type             string          `json:"type"` // Bank, E-Wallet, Cash
		Balance          decimal.Decimal `json:"balance"`
		AvailableBalance decimal.Decimal `json:"available_balance"`
		Icon             string          `json:"icon"`
		CreatedAt        time.Time       `json:"created_at"`
		UpdatedAt        time.Time       `json:"updated_at"`
	}

	Category struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"user_id"`
		Name        string          `json:"name"`
		Type        TransactionType `json:"type"`
		Icon        string          `json:"icon"`
		BudgetLimit decimal.Decimal `json:"budget_limit"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	// WalletSummary is the wallet snapshot embedded in other entities at fetch time.
	WalletSummary struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Type string `json:"type,omitempty"`
		Icon string `json:"icon,omitempty"`
	}

	CategorySummary struct {
		ID   int64           `json:"id"`
		Name string          `json:"name"`
		Type TransactionType `json:"type,omitempty"`
		Icon string          `json:"icon,omitempty"`
	}

	Transaction struct {
		ID          int64            `json:"id"`
		UserID      int64            `json:"user_id"`
		WalletID    int64            `json:"wallet_id"`
		CategoryID  int64            `json:"category_id"`
		Amount      decimal.Decimal  `json:"amount"`
		Type        TransactionType  `json:"type"`
		Description string           `json:"description"`
		Date        time.Time        `json:"date"`
		Wallet      *WalletSummary   `json:"wallet,omitempty"`
		Category    *CategorySummary `json:"category,omitempty"`
	}

	Debt struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"user_id"`
		WalletID    int64           `json:"wallet_id"`
		Wallet      *WalletSummary  `json:"wallet,omitempty"`
		Name        string          `json:"name"`
		Amount      decimal.Decimal `json:"amount"`
		Remaining   decimal.Decimal `json:"remaining"`
		Type        DebtType        `json:"type"`
		Description string          `json:"description"`
		DueDate     *time.Time      `json:"due_date"`
		IsPaid      bool            `json:"is_paid"`
		Payments    []DebtPayment   `json:"payments"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	DebtPayment struct {
		ID            int64           `json:"id"`
		DebtID        int64           `json:"debt_id"`
		TransactionID int64           `json:"transaction_id"`
		WalletID      int64           `json:"wallet_id"`
		Wallet        *WalletSummary  `json:"wallet,omitempty"`
		Amount        decimal.Decimal `json:"amount"`
		Date          time.Time       `json:"date"`
		Note          string          `json:"note"`
	}

	WishlistItem struct {
		ID             int64            `json:"id"`
		CategoryID     int64            `json:"category_id"`
		Category       *CategorySummary `json:"category,omitempty"`
		Name           string           `json:"name"`
		EstimatedPrice decimal.Decimal  `json:"estimated_price"`
		IsBought       bool             `json:"is_bought"`
		Priority       Priority         `json:"priority"`
		CreatedAt      time.Time        `json:"created_at"`
	}

	SavingGoal struct {
		ID            int64           `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"target_amount"`
		CurrentAmount decimal.Decimal `json:"current_amount"`
		CategoryID    int64           `json:"category_id"`
		Deadline      *time.Time      `json:"deadline"`
		IsAchieved    bool            `json:"is_achieved"`
		Icon          string          `json:"icon"`
	}

	SavingContribution struct {
		ID            int64           `json:"id"`
		GoalID        int64           `json:"goal_id"`
		WalletID      int64           `json:"wallet_id"`
		TransactionID int64           `json:"transaction_id"`
		Amount        decimal.Decimal `json:"amount"`
		Date          time.Time       `json:"date"`
	}

	// DaySummary is one calendar cell: totals for a single YYYY-MM-DD date.
	DaySummary struct {
		Date    string          `json:"date"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
	}

	MonthlyTrend struct {
		Date    string          `json:"date"` // YYYY-MM
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
	}

	CategoryBreakdown struct {
		CategoryName string          `json:"category_name"`
		CategoryIcon string          `json:"category_icon"`
		Type         TransactionType `json:"type"`
		TotalAmount  decimal.Decimal `json:"total_amount"`
		BudgetLimit  decimal.Decimal `json:"budget_limit"`
		IsOverBudget bool            `json:"is_over_budget"`
		Percentage   float64         `json:"percentage"`
	}

	DashboardData struct {
		TotalBalance       decimal.Decimal     `json:"total_balance"`
		TotalIncomeMonth   decimal.Decimal     `json:"total_income_month"`
		TotalExpenseMonth  decimal.Decimal     `json:"total_expense_month"`
		Wallets            []Wallet            `json:"wallets"`
		RecentTransactions []Transaction       `json:"recent_transactions"`
		MonthlyTrend       []MonthlyTrend      `json:"monthly_trend"`
		ExpenseBreakdown   []CategoryBreakdown `json:"expense_breakdown"`
	}

	FinancialHealthRatio struct {
		Name           string       `json:"name"`
		Value          float64      `json:"value"`
		FormattedValue string       `json:"formatted_value"`
		Target         string       `json:"target"`
		Status         HealthStatus `json:"status"`
		Description    string       `json:"description"`
	}

	FinancialHealth struct {
		OverallScore  float64                `json:"overall_score"`
		OverallStatus HealthStatus           `json:"overall_status"`
		Ratios        []FinancialHealthRatio `json:"ratios"`
	}

	// PageMeta is the pagination block of a transaction list response.
	PageMeta struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
	}
)

// Entity IDs, used by the generic store collection.
func (w Wallet) EntityID() int64       { return w.ID }
func (c Category) EntityID() int64     { return c.ID }
func (t Transaction) EntityID() int64  { return t.ID }
func (d Debt) EntityID() int64         { return d.ID }
func (w WishlistItem) EntityID() int64 { return w.ID }
func (g SavingGoal) EntityID() int64   { return g.ID }

// TotalPages returns the number of pages for the current limit, at least 1.
func (m PageMeta) TotalPages() int {
	if m.Limit <= 0 || m.Total <= 0 {
		return 1
	}
	pages := int((m.Total + int64(m.Limit) - 1) / int64(m.Limit))
	if pages < 1 {
		return 1
	}
	return pages
}

// Progress returns CurrentAmount/TargetAmount as a percentage capped at 100.
func (g SavingGoal) Progress() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	pct, _ := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
	if pct > 100 {
		return 100
	}
	return pct
}
