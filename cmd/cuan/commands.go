package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/export/sheets"
	"github.com/alimurrofid/petualangan-cuan/internal/store"
	"github.com/alimurrofid/petualangan-cuan/internal/worker"
)

// Session

func cmdLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlags("login", e)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *email == "" {
		v, err := e.prompt("Email: ")
		if err != nil {
			return err
		}
		*email = v
	}
	if *password == "" {
		v, err := e.prompt("Password: ")
		if err != nil {
			return err
		}
		*password = v
	}

	user, err := e.app.Auth.Login(ctx, core.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func cmdRegister(ctx context.Context, e *env, args []string) error {
	fs := newFlags("register", e)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password, at least 6 characters")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	user, err := e.app.Auth.Register(ctx, core.RegisterInput{Name: *name, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Registered and logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func cmdLogout(ctx context.Context, e *env, _ []string) error {
	if err := e.app.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Logged out.")
	return nil
}

func cmdWhoami(ctx context.Context, e *env, _ []string) error {
	user, err := e.app.Auth.FetchProfile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s <%s>\n", user.Name, user.Email)
	if exp, ok := e.app.Session.ExpiresAt(); ok {
		fmt.Fprintf(e.out, "Session expires %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// Wallets and categories

var walletCommands = map[string]handler{
	"list": func(ctx context.Context, e *env, _ []string) error {
		if err := e.app.Wallets.Refresh(ctx); err != nil {
			return err
		}
		return printWallets(e.out, e.app.Wallets.Items())
	},
	"add": func(ctx context.Context, e *env, args []string) error {
		fs := newFlags("wallets add", e)
		name := fs.String("name", "", "wallet name")
		typ := fs.String("type", "Bank", "Bank, E-Wallet or Cash")
		balance := fs.String("balance", "0", "opening balance")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		in := core.WalletInput{Name: *name, Type: *typ}
		if *balance != "0" {
			d, err := parseAmount(*balance, "balance")
			if err != nil {
				return err
			}
			in.Balance = d
		}
		w, err := e.app.Wallets.Create(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Wallet #%d %s created with balance %s\n", w.ID, w.Name, money(w.Balance))
		return nil
	},
	"delete": func(ctx context.Context, e *env, args []string) error {
		id, _, err := parseID(args, "wallet")
		if err != nil {
			return err
		}
		ok, err := e.confirmed(ctx, "Delete wallet", fmt.Sprintf("Wallet #%d will be deleted.", id))
		if err != nil || !ok {
			return err
		}
		if err := e.app.Wallets.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Wallet #%d deleted\n", id)
		return nil
	},
}

var categoryCommands = map[string]handler{
	"list": func(ctx context.Context, e *env, args []string) error {
		fs := newFlags("categories list", e)
		typ := fs.String("type", "", "income or expense")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if err := e.app.Categories.Refresh(ctx); err != nil {
			return err
		}
		items := e.app.Categories.Items()
		if *typ != "" {
			items = e.app.Categories.OfType(core.TransactionType(*typ))
		}
		return printCategories(e.out, items)
	},
	"add": func(ctx context.Context, e *env, args []string) error {
		fs := newFlags("categories add", e)
		name := fs.String("name", "", "category name")
		typ := fs.String("type", string(core.Expense), "income or expense")
		budget := fs.String("budget", "", "monthly budget limit")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		in := core.CategoryInput{Name: *name, Type: core.TransactionType(*typ)}
		if *budget != "" {
			d, err := parseAmount(*budget, "budget")
			if err != nil {
				return err
			}
			in.BudgetLimit = d
		}
		c, err := e.app.Categories.Create(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Category #%d %s created\n", c.ID, c.Name)
		return nil
	},
	"delete": func(ctx context.Context, e *env, args []string) error {
		id, _, err := parseID(args, "category")
		if err != nil {
			return err
		}
		ok, err := e.confirmed(ctx, "Delete category", fmt.Sprintf("Category #%d will be deleted.", id))
		if err != nil || !ok {
			return err
		}
		if err := e.app.Categories.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Category #%d deleted\n", id)
		return nil
	},
}

// Transactions

var txCommands = map[string]handler{
	"list":     cmdTxList,
	"add":      cmdTxAdd,
	"transfer": cmdTxTransfer,
	"delete":   cmdTxDelete,
}

func cmdTxList(ctx context.Context, e *env, args []string) error {
	fs := newFlags("tx list", e)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "rows per page")
	from := fs.String("from", "", "start date YYYY-MM-DD")
	to := fs.String("to", "", "end date YYYY-MM-DD")
	wallet := fs.Int64("wallet", 0, "wallet id")
	category := fs.Int64("category", 0, "category id")
	search := fs.String("search", "", "text in the description")
	typ := fs.String("type", "", "income, expense, transfer_in or transfer_out")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	opts := []store.FilterOption{
		store.Page(*page),
		store.Limit(*limit),
		store.Search(*search),
		store.Type(*typ),
		store.AllWallets(),
		store.AllCategories(),
	}
	if *from != "" || *to != "" {
		start, end, err := e.monthRange(*from, *to)
		if err != nil {
			return err
		}
		opts = append(opts, store.StartDate(start), store.EndDate(end))
	}
	if *wallet > 0 {
		opts = append(opts, store.Wallet(*wallet))
	}
	if *category > 0 {
		opts = append(opts, store.Category(*category))
	}

	txs := e.app.Transactions
	txs.ResetFilters()
	txs.SetFilters(opts...)
	if err := txs.Refresh(ctx); err != nil {
		return err
	}
	if err := printTransactions(e.out, txs.Items()); err != nil {
		return err
	}
	meta := txs.Meta()
	fmt.Fprintf(e.out, "Page %d/%d, %d transactions\n", meta.Page, meta.TotalPages(), meta.Total)
	return nil
}

func cmdTxAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlags("tx add", e)
	wallet := fs.Int64("wallet", 0, "wallet id")
	category := fs.Int64("category", 0, "category id")
	amount := fs.String("amount", "", "amount")
	typ := fs.String("type", string(core.Expense), "income or expense")
	date := fs.String("date", "", "date YYYY-MM-DD (default today)")
	desc := fs.String("desc", "", "description")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	amt, err := parseAmount(*amount, "amount")
	if err != nil {
		return err
	}
	day, err := e.parseDate(*date)
	if err != nil {
		return err
	}

	tx, err := e.app.Transactions.Create(ctx, core.TransactionInput{
		WalletID:    *wallet,
		CategoryID:  *category,
		Amount:      amt,
		Type:        core.TransactionType(*typ),
		Description: *desc,
		Date:        day,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Transaction #%d recorded\n", tx.ID)
	if w, ok := e.app.Wallets.Find(*wallet); ok {
		fmt.Fprintf(e.out, "%s balance: %s\n", w.Name, money(w.Balance))
	}
	return nil
}

func cmdTxTransfer(ctx context.Context, e *env, args []string) error {
	fs := newFlags("tx transfer", e)
	from := fs.Int64("from", 0, "source wallet id")
	to := fs.Int64("to", 0, "destination wallet id")
	amount := fs.String("amount", "", "amount")
	date := fs.String("date", "", "date YYYY-MM-DD (default today)")
	desc := fs.String("desc", "", "description")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	amt, err := parseAmount(*amount, "amount")
	if err != nil {
		return err
	}
	day, err := e.parseDate(*date)
	if err != nil {
		return err
	}

	if err := e.app.Transactions.Transfer(ctx, core.TransferInput{
		FromWalletID: *from,
		ToWalletID:   *to,
		Amount:       amt,
		Description:  *desc,
		Date:         day,
	}); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Transfer completed")
	for _, id := range []int64{*from, *to} {
		if w, ok := e.app.Wallets.Find(id); ok {
			fmt.Fprintf(e.out, "%s balance: %s\n", w.Name, money(w.Balance))
		}
	}
	return nil
}

func cmdTxDelete(ctx context.Context, e *env, args []string) error {
	id, _, err := parseID(args, "transaction")
	if err != nil {
		return err
	}
	ok, err := e.confirmed(ctx, "Delete transaction",
		fmt.Sprintf("Transaction #%d will be deleted and its wallet balance reverted.", id))
	if err != nil || !ok {
		return err
	}
	if err := e.app.Transactions.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Transaction #%d deleted\n", id)
	return nil
}

func cmdCalendar(ctx context.Context, e *env, args []string) error {
	fs := newFlags("calendar", e)
	from := fs.String("from", "", "start date YYYY-MM-DD (default first of this month)")
	to := fs.String("to", "", "end date YYYY-MM-DD (default end of this month)")
	wallet := fs.Int64("wallet", 0, "wallet id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	start, end, err := e.monthRange(*from, *to)
	if err != nil {
		return err
	}

	txs := e.app.Transactions
	txs.ResetFilters()
	txs.SetFilters(store.StartDate(start), store.EndDate(end))
	if *wallet > 0 {
		txs.SetFilters(store.Wallet(*wallet))
	}
	txs.FetchCalendar(ctx)
	if msg := txs.CalendarErr(); msg != "" {
		return errors.New(msg)
	}

	tw := newTable(e.out, "DATE", "INCOME", "EXPENSE")
	for _, d := range txs.Calendar() {
		row(tw, d.Date, money(d.Income), money(d.Expense))
	}
	return tw.Flush()
}

// Debts

var debtCommands = map[string]handler{
	"list": func(ctx context.Context, e *env, _ []string) error {
		if err := e.app.Debts.Refresh(ctx); err != nil {
			return err
		}
		if err := printDebts(e.out, "Debts", e.app.Debts.Debts()); err != nil {
			return err
		}
		fmt.Fprintln(e.out)
		return printDebts(e.out, "Receivables", e.app.Debts.Receivables())
	},
	"add":            cmdDebtAdd,
	"pay":            cmdDebtPay,
	"delete-payment": cmdDebtDeletePayment,
	"delete":         cmdDebtDelete,
}

func cmdDebtAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlags("debts add", e)
	typ := fs.String("type", string(core.DebtPayable), "debt or receivable")
	name := fs.String("name", "", "counterparty")
	amount := fs.String("amount", "", "amount")
	wallet := fs.Int64("wallet", 0, "wallet id")
	due := fs.String("due", "", "due date YYYY-MM-DD")
	desc := fs.String("desc", "", "description")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	amt, err := parseAmount(*amount, "amount")
	if err != nil {
		return err
	}
	dueDate, err := optionalDate(*due)
	if err != nil {
		return err
	}

	d, err := e.app.Debts.Create(ctx, core.DebtInput{
		WalletID:    *wallet,
		Name:        *name,
		Amount:      amt,
		Type:        core.DebtType(*typ),
		Description: *desc,
		DueDate:     dueDate,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s #%d with %s recorded: %s\n", d.Type, d.ID, d.Name, money(d.Amount))
	return nil
}

func cmdDebtPay(ctx context.Context, e *env, args []string) error {
	id, rest, err := parseID(args, "debt")
	if err != nil {
		return err
	}
	fs := newFlags("debts pay", e)
	wallet := fs.Int64("wallet", 0, "wallet id")
	amount := fs.String("amount", "", "amount")
	note := fs.String("note", "", "note")
	if err := fs.Parse(rest); err != nil {
		return errUsage
	}

	amt, err := parseAmount(*amount, "amount")
	if err != nil {
		return err
	}
	d, err := e.app.Debts.Pay(ctx, id, core.PayDebtInput{WalletID: *wallet, Amount: amt, Note: *note})
	if err != nil {
		return err
	}
	if d.IsPaid {
		fmt.Fprintf(e.out, "%s #%d is fully paid\n", d.Type, d.ID)
		return nil
	}
	fmt.Fprintf(e.out, "%s #%d remaining: %s\n", d.Type, d.ID, money(d.Remaining))
	return nil
}

func cmdDebtDeletePayment(ctx context.Context, e *env, args []string) error {
	id, _, err := parseID(args, "payment")
	if err != nil {
		return err
	}
	ok, err := e.confirmed(ctx, "Delete payment",
		fmt.Sprintf("Payment #%d will be deleted and its wallet balance reverted.", id))
	if err != nil || !ok {
		return err
	}
	if err := e.app.Debts.DeletePayment(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Payment #%d deleted\n", id)
	return nil
}

func cmdDebtDelete(ctx context.Context, e *env, args []string) error {
	id, _, err := parseID(args, "debt")
	if err != nil {
		return err
	}
	ok, err := e.confirmed(ctx, "Delete debt",
		fmt.Sprintf("Debt #%d and its payment history will be deleted.", id))
	if err != nil || !ok {
		return err
	}
	if err := e.app.Debts.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Debt #%d deleted\n", id)
	return nil
}

// Wishlist and saving goals

var wishlistCommands = map[string]handler{
	"list": func(ctx context.Context, e *env, _ []string) error {
		if err := e.app.Wishlist.Refresh(ctx); err != nil {
			return err
		}
		return printWishlist(e.out, e.app.Wishlist.Items())
	},
	"add": func(ctx context.Context, e *env, args []string) error {
		fs := newFlags("wishlist add", e)
		name := fs.String("name", "", "item name")
		category := fs.Int64("category", 0, "category id")
		price := fs.String("price", "", "estimated price")
		priority := fs.String("priority", string(core.PriorityMedium), "low, medium or high")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		amt, err := parseAmount(*price, "price")
		if err != nil {
			return err
		}
		if err := e.app.Wishlist.Create(ctx, core.WishlistInput{
			CategoryID:     *category,
			Name:           *name,
			EstimatedPrice: amt,
			Priority:       core.Priority(*priority),
		}); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s added to the wishlist\n", *name)
		return nil
	},
	"bought": func(ctx context.Context, e *env, args []string) error {
		id, _, err := parseID(args, "wishlist item")
		if err != nil {
			return err
		}
		if err := e.app.Wishlist.MarkBought(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Wishlist item #%d marked as bought\n", id)
		return nil
	},
	"delete": func(ctx context.Context, e *env, args []string) error {
		id, _, err := parseID(args, "wishlist item")
		if err != nil {
			return err
		}
		ok, err := e.confirmed(ctx, "Delete wishlist item", fmt.Sprintf("Wishlist item #%d will be deleted.", id))
		if err != nil || !ok {
			return err
		}
		if err := e.app.Wishlist.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Wishlist item #%d deleted\n", id)
		return nil
	},
}

var goalCommands = map[string]handler{
	"list": func(ctx context.Context, e *env, _ []string) error {
		if err := e.app.SavingGoals.Refresh(ctx); err != nil {
			return err
		}
		return printGoals(e.out, e.app.SavingGoals.Items())
	},
	"add": func(ctx context.Context, e *env, args []string) error {
		fs := newFlags("goals add", e)
		name := fs.String("name", "", "goal name")
		target := fs.String("target", "", "target amount")
		category := fs.Int64("category", 0, "expense category for contributions")
		deadline := fs.String("deadline", "", "deadline YYYY-MM-DD")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		amt, err := parseAmount(*target, "target")
		if err != nil {
			return err
		}
		dl, err := optionalDate(*deadline)
		if err != nil {
			return err
		}
		g, err := e.app.SavingGoals.Create(ctx, core.SavingGoalInput{
			Name:         *name,
			TargetAmount: amt,
			CategoryID:   *category,
			Deadline:     dl,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Saving goal #%d %s created, target %s\n", g.ID, g.Name, money(g.TargetAmount))
		return nil
	},
	"contribute": func(ctx context.Context, e *env, args []string) error {
		id, rest, err := parseID(args, "saving goal")
		if err != nil {
			return err
		}
		fs := newFlags("goals contribute", e)
		wallet := fs.Int64("wallet", 0, "wallet id")
		amount := fs.String("amount", "", "amount")
		date := fs.String("date", "", "date YYYY-MM-DD (default today)")
		desc := fs.String("desc", "", "description")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		amt, err := parseAmount(*amount, "amount")
		if err != nil {
			return err
		}
		day, err := e.parseDate(*date)
		if err != nil {
			return err
		}
		if _, err := e.app.SavingGoals.AddContribution(ctx, id, core.ContributionInput{
			WalletID:    *wallet,
			Amount:      amt,
			Date:        day,
			Description: *desc,
		}); err != nil {
			return err
		}
		if g, ok := e.app.SavingGoals.Find(id); ok {
			fmt.Fprintf(e.out, "%s: %s of %s (%.0f%%)\n", g.Name, money(g.CurrentAmount), money(g.TargetAmount), g.Progress())
			return nil
		}
		fmt.Fprintf(e.out, "Contribution to goal #%d recorded\n", id)
		return nil
	},
}

// Insights

func cmdReport(ctx context.Context, e *env, args []string) error {
	fs := newFlags("report", e)
	from := fs.String("from", "", "start date YYYY-MM-DD (default first of this month)")
	to := fs.String("to", "", "end date YYYY-MM-DD (default end of this month)")
	wallet := fs.Int64("wallet", 0, "wallet id")
	typ := fs.String("type", "", "income or expense")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	start, end, err := e.monthRange(*from, *to)
	if err != nil {
		return err
	}

	q := store.ReportQuery{StartDate: start, EndDate: end, Type: *typ}
	if *wallet > 0 {
		q.WalletID = fmt.Sprint(*wallet)
	}
	e.app.Reports.Fetch(ctx, q)
	if msg := e.app.Reports.Err(); msg != "" {
		return errors.New(msg)
	}
	return printBreakdown(e.out, e.app.Reports.Items())
}

func cmdDashboard(ctx context.Context, e *env, _ []string) error {
	if err := e.app.Dashboard.Refresh(ctx); err != nil {
		return err
	}
	d, _ := e.app.Dashboard.Value()

	fmt.Fprintf(e.out, "Total balance:      %s\n", money(d.TotalBalance))
	fmt.Fprintf(e.out, "Income this month:  %s\n", money(d.TotalIncomeMonth))
	fmt.Fprintf(e.out, "Expense this month: %s\n\n", money(d.TotalExpenseMonth))
	if err := printWallets(e.out, d.Wallets); err != nil {
		return err
	}
	if len(d.RecentTransactions) > 0 {
		fmt.Fprintln(e.out, "\nRecent transactions")
		return printTransactions(e.out, d.RecentTransactions)
	}
	return nil
}

func cmdHealth(ctx context.Context, e *env, _ []string) error {
	if err := e.app.FinancialHealth.Refresh(ctx); err != nil {
		return err
	}
	h, _ := e.app.FinancialHealth.Value()

	fmt.Fprintf(e.out, "Score %.0f (%s)\n", h.OverallScore, h.OverallStatus)
	tw := newTable(e.out, "RATIO", "VALUE", "TARGET", "STATUS")
	for _, r := range h.Ratios {
		row(tw, r.Name, r.FormattedValue, r.Target, r.Status)
	}
	return tw.Flush()
}

// Export

func cmdExport(ctx context.Context, e *env, _ []string) error {
	cfg := e.app.Config
	if !cfg.SheetsEnabled() {
		return errors.New("GOOGLE_SPREADSHEET_ID is not set")
	}
	if e.app.Storage == nil {
		return errors.New("export needs the session database to remember exported rows")
	}

	exporter, err := sheets.New(ctx, sheets.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, nil)
	if err != nil {
		return err
	}

	w := worker.NewExportWorker(e.app.Client, exporter, e.app.Storage, cfg.ExportBatchSize, nil)
	if err := w.CatchUp(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Export finished")
	return nil
}
