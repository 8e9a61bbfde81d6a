package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

func newTable(out io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func walletName(w *core.WalletSummary) string {
	if w == nil {
		return "-"
	}
	return w.Name
}

func categoryName(c *core.CategorySummary) string {
	if c == nil {
		return "-"
	}
	return c.Name
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printWallets(out io.Writer, wallets []core.Wallet) error {
	tw := newTable(out, "ID", "NAME", "TYPE", "BALANCE")
	for _, w := range wallets {
		row(tw, w.ID, w.Name, w.Type, money(w.Balance))
	}
	return tw.Flush()
}

func printCategories(out io.Writer, categories []core.Category) error {
	tw := newTable(out, "ID", "NAME", "TYPE", "BUDGET")
	for _, c := range categories {
		budget := "-"
		if c.BudgetLimit.IsPositive() {
			budget = money(c.BudgetLimit)
		}
		row(tw, c.ID, c.Name, c.Type, budget)
	}
	return tw.Flush()
}

func printTransactions(out io.Writer, txs []core.Transaction) error {
	tw := newTable(out, "ID", "DATE", "TYPE", "CATEGORY", "WALLET", "AMOUNT", "DESCRIPTION")
	for _, t := range txs {
		row(tw, t.ID, t.Date.Format(dateLayout), t.Type, categoryName(t.Category), walletName(t.Wallet), money(t.Amount), t.Description)
	}
	return tw.Flush()
}

func printDebts(out io.Writer, title string, debts []core.Debt) error {
	fmt.Fprintln(out, title)
	tw := newTable(out, "ID", "NAME", "WALLET", "AMOUNT", "REMAINING", "DUE", "PAID")
	for _, d := range debts {
		due := "-"
		if d.DueDate != nil {
			due = d.DueDate.Format(dateLayout)
		}
		row(tw, d.ID, d.Name, walletName(d.Wallet), money(d.Amount), money(d.Remaining), due, yesNo(d.IsPaid))
		for _, p := range d.Payments {
			row(tw, "", fmt.Sprintf("  payment #%d", p.ID), walletName(p.Wallet), money(p.Amount), "", p.Date.Format(dateLayout), p.Note)
		}
	}
	return tw.Flush()
}

func printWishlist(out io.Writer, items []core.WishlistItem) error {
	tw := newTable(out, "ID", "NAME", "CATEGORY", "PRICE", "PRIORITY", "BOUGHT")
	for _, w := range items {
		row(tw, w.ID, w.Name, categoryName(w.Category), money(w.EstimatedPrice), w.Priority, yesNo(w.IsBought))
	}
	return tw.Flush()
}

func printGoals(out io.Writer, goals []core.SavingGoal) error {
	tw := newTable(out, "ID", "NAME", "SAVED", "TARGET", "PROGRESS", "DEADLINE", "ACHIEVED")
	for _, g := range goals {
		deadline := "-"
		if g.Deadline != nil {
			deadline = g.Deadline.Format(dateLayout)
		}
		row(tw, g.ID, g.Name, money(g.CurrentAmount), money(g.TargetAmount), fmt.Sprintf("%.0f%%", g.Progress()), deadline, yesNo(g.IsAchieved))
	}
	return tw.Flush()
}

func printBreakdown(out io.Writer, items []core.CategoryBreakdown) error {
	tw := newTable(out, "CATEGORY", "TYPE", "TOTAL", "BUDGET", "USED")
	for _, b := range items {
		budget, used := "-", "-"
		if b.BudgetLimit.IsPositive() {
			budget = money(b.BudgetLimit)
			used = fmt.Sprintf("%.0f%%", b.Percentage)
			if b.IsOverBudget {
				used += " over"
			}
		}
		row(tw, b.CategoryName, b.Type, money(b.TotalAmount), budget, used)
	}
	return tw.Flush()
}
