package fakeapi

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

func (s *state) dashboard(userID int64, now time.Time) core.DashboardData {
	start, end := monthRange(now)
	month := transactionFilter{startDate: start, endDate: end}

	data := core.DashboardData{
		Wallets:            s.listWallets(userID),
		RecentTransactions: make([]core.Transaction, 0, recentTransactionsCap),
		MonthlyTrend:       s.monthlyTrend(userID),
		ExpenseBreakdown:   make([]core.CategoryBreakdown, 0),
	}
	for _, w := range data.Wallets {
		data.TotalBalance = data.TotalBalance.Add(w.Balance)
	}
	for _, day := range s.calendar(userID, month) {
		data.TotalIncomeMonth = data.TotalIncomeMonth.Add(day.Income)
		data.TotalExpenseMonth = data.TotalExpenseMonth.Add(day.Expense)
	}
	for i, t := range s.sortedTransactions(userID, transactionFilter{}) {
		if i == recentTransactionsCap {
			break
		}
		data.RecentTransactions = append(data.RecentTransactions, s.view(t))
	}
	month.typ = string(core.Expense)
	data.ExpenseBreakdown = append(data.ExpenseBreakdown, s.report(userID, month)...)
	return data
}

func (s *state) monthlyTrend(userID int64) []core.MonthlyTrend {
	byMonth := make(map[string]*core.MonthlyTrend)
	for _, t := range s.sortedTransactions(userID, transactionFilter{}) {
		if t.Type != core.Income && t.Type != core.Expense {
			continue
		}
		key := t.Date.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &core.MonthlyTrend{Date: key}
			byMonth[key] = m
		}
		if t.Type == core.Income {
			m.Income = m.Income.Add(t.Amount)
		} else {
			m.Expense = m.Expense.Add(t.Amount)
		}
	}
	out := make([]core.MonthlyTrend, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

var statusScore = map[core.HealthStatus]float64{
	core.HealthHealthy: 100,
	core.HealthWarning: 60,
	core.HealthDanger:  20,
}

// financialHealth scores the current month on savings rate and
// debt-to-income, the two ratios the ledger alone can answer.
func (s *state) financialHealth(userID int64, now time.Time) core.FinancialHealth {
	start, end := monthRange(now)
	var income, expense, installments decimal.Decimal
	for _, day := range s.calendar(userID, transactionFilter{startDate: start, endDate: end}) {
		income = income.Add(day.Income)
		expense = expense.Add(day.Expense)
	}
	for _, d := range s.debts {
		if d.UserID != userID || d.Type != core.DebtPayable {
			continue
		}
		for _, p := range d.Payments {
			day := p.Date.Format(dateLayout)
			if day >= start && day <= end {
				installments = installments.Add(p.Amount)
			}
		}
	}

	ratios := []core.FinancialHealthRatio{savingsRatio(income, expense), debtToIncome(income, installments)}
	total := 0.0
	for _, r := range ratios {
		total += statusScore[r.Status]
	}
	score := total / float64(len(ratios))

	status := core.HealthDanger
	switch {
	case score >= 80:
		status = core.HealthHealthy
	case score >= 50:
		status = core.HealthWarning
	}
	return core.FinancialHealth{OverallScore: score, OverallStatus: status, Ratios: ratios}
}

func savingsRatio(income, expense decimal.Decimal) core.FinancialHealthRatio {
	rate := 0.0
	if income.IsPositive() {
		rate, _ = income.Sub(expense).Div(income).Float64()
	}
	r := core.FinancialHealthRatio{
		Name:           "Savings Rate",
		Value:          rate,
		FormattedValue: fmt.Sprintf("%.1f%%", rate*100),
		Target:         "> 20%",
	}
	switch {
	case rate >= 0.20:
		r.Status = core.HealthHealthy
		r.Description = "Hebat! Anda menabung dengan porsi yang sehat."
	case rate >= 0.10:
		r.Status = core.HealthWarning
		r.Description = "Cukup baik, tapi coba tingkatkan lagi tabungan Anda."
	default:
		r.Status = core.HealthDanger
		r.Description = "Hati-hati, tabungan Anda terlalu sedikit (atau minus)."
	}
	return r
}

func debtToIncome(income, installments decimal.Decimal) core.FinancialHealthRatio {
	ratio := 0.0
	if income.IsPositive() {
		ratio, _ = installments.Div(income).Float64()
	}
	r := core.FinancialHealthRatio{
		Name:           "Debt-to-Income",
		Value:          ratio,
		FormattedValue: fmt.Sprintf("%.1f%%", ratio*100),
		Target:         "< 35%",
	}
	switch {
	case ratio == 0:
		r.Status = core.HealthHealthy
		r.Description = "Bebas utang! Kondisi yang sangat ideal."
	case ratio <= 0.35:
		r.Status = core.HealthWarning
		r.Description = "Cicilan masih wajar, jaga agar tidak bertambah."
	default:
		r.Status = core.HealthDanger
		r.Description = "Cicilan terlalu besar dibanding pemasukan."
	}
	return r
}
