package fakeapi

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
)

const dateLayout = "2006-01-02"

// Ledger categories created on demand, one per user.
const (
	categoryTransfer      = "Transfer"
	categoryDebt          = "Utang"
	categoryReceivable    = "Piutang"
	categoryPayDebt       = "Bayar Utang"
	categoryCollectDebt   = "Terima Piutang"
	defaultPaymentNote    = "Pembayaran Cicilan"
	ledgerCategoryIcon    = "Em_MoneyBag"
	transferCategoryIcon  = "Em_Exchange"
	transferCategoryType  = core.TransactionType("transfer")
	recentTransactionsCap = 5
)

type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func badRequest(msg string) error   { return &apiError{status: http.StatusBadRequest, msg: msg} }
func notFound(msg string) error     { return &apiError{status: http.StatusNotFound, msg: msg} }
func unauthorized(msg string) error { return &apiError{status: http.StatusUnauthorized, msg: msg} }

type account struct {
	user core.User
	hash []byte
}

type wishlistRecord struct {
	userID int64
	item   core.WishlistItem
}

type goalRecord struct {
	userID int64
	goal   core.SavingGoal
}

// state is the backend's data. Callers hold Server.mu.
type state struct {
	seq           int64
	accounts      []*account
	wallets       []*core.Wallet
	categories    []*core.Category
	transactions  []*core.Transaction
	debts         []*core.Debt
	wishlist      []*wishlistRecord
	goals         []*goalRecord
	contributions []core.SavingContribution
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Accounts

func (s *state) register(in core.RegisterInput, now time.Time) (*account, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, a := range s.accounts {
		if a.user.Email == email {
			return nil, badRequest("email already registered")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	a := &account{
		user: core.User{ID: s.nextID(), Name: in.Name, Email: email, CreatedAt: now, UpdatedAt: now},
		hash: hash,
	}
	s.accounts = append(s.accounts, a)
	return a, nil
}

func (s *state) authenticate(in core.Credentials) (*account, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, a := range s.accounts {
		if a.user.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword(a.hash, []byte(in.Password)) != nil {
			break
		}
		return a, nil
	}
	return nil, unauthorized("invalid email or password")
}

func (s *state) account(id int64) (*account, bool) {
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Wallets

func (s *state) wallet(userID, id int64) (*core.Wallet, bool) {
	for _, w := range s.wallets {
		if w.ID == id && w.UserID == userID {
			return w, true
		}
	}
	return nil, false
}

func (s *state) listWallets(userID int64) []core.Wallet {
	out := make([]core.Wallet, 0)
	for _, w := range s.wallets {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out
}

func (s *state) createWallet(userID int64, in core.WalletInput, now time.Time) core.Wallet {
	w := &core.Wallet{
		ID:               s.nextID(),
		UserID:           userID,
		Name:             in.Name,
		Type:             in.Type,
		Balance:          in.Balance,
		AvailableBalance: in.Balance,
		Icon:             in.Icon,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.wallets = append(s.wallets, w)
	return *w
}

func (s *state) updateWallet(userID, id int64, in core.WalletInput, now time.Time) (core.Wallet, error) {
	w, ok := s.wallet(userID, id)
	if !ok {
		return core.Wallet{}, notFound("wallet not found")
	}
	w.Name = in.Name
	w.Type = in.Type
	w.Icon = in.Icon
	w.Balance = in.Balance
	w.AvailableBalance = in.Balance
	w.UpdatedAt = now
	return *w, nil
}

func (s *state) deleteWallet(userID, id int64) error {
	for i, w := range s.wallets {
		if w.ID == id && w.UserID == userID {
			s.wallets = append(s.wallets[:i], s.wallets[i+1:]...)
			return nil
		}
	}
	return notFound("wallet not found")
}

// move adds amount to the wallet when typ flows in and subtracts it otherwise.
// Balances may go negative.
func move(w *core.Wallet, typ core.TransactionType, amount decimal.Decimal) {
	if typ.Inflow() {
		w.Balance = w.Balance.Add(amount)
	} else {
		w.Balance = w.Balance.Sub(amount)
	}
	w.AvailableBalance = w.Balance
}

func revert(w *core.Wallet, typ core.TransactionType, amount decimal.Decimal) {
	move(w, typ, amount.Neg())
}

// Categories

func (s *state) category(userID, id int64) (*core.Category, bool) {
	for _, c := range s.categories {
		if c.ID == id && c.UserID == userID {
			return c, true
		}
	}
	return nil, false
}

func (s *state) listCategories(userID int64) []core.Category {
	out := make([]core.Category, 0)
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out
}

func (s *state) createCategory(userID int64, in core.CategoryInput, now time.Time) core.Category {
	c := &core.Category{
		ID:          s.nextID(),
		UserID:      userID,
		Name:        in.Name,
		Type:        in.Type,
		Icon:        in.Icon,
		BudgetLimit: in.BudgetLimit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.categories = append(s.categories, c)
	return *c
}

func (s *state) updateCategory(userID, id int64, in core.CategoryInput, now time.Time) (core.Category, error) {
	c, ok := s.category(userID, id)
	if !ok {
		return core.Category{}, notFound("category not found")
	}
	c.Name = in.Name
	c.Type = in.Type
	c.Icon = in.Icon
	c.BudgetLimit = in.BudgetLimit
	c.UpdatedAt = now
	return *c, nil
}

func (s *state) deleteCategory(userID, id int64) error {
	for i, c := range s.categories {
		if c.ID == id && c.UserID == userID {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return notFound("category not found")
}

// ledgerCategory finds or creates the named category used by system entries.
func (s *state) ledgerCategory(userID int64, name string, typ core.TransactionType, icon string, now time.Time) *core.Category {
	for _, c := range s.categories {
		if c.UserID == userID && c.Name == name && c.Type == typ {
			return c
		}
	}
	c := &core.Category{ID: s.nextID(), UserID: userID, Name: name, Type: typ, Icon: icon, CreatedAt: now, UpdatedAt: now}
	s.categories = append(s.categories, c)
	return c
}

// Transactions

type transactionFilter struct {
	startDate  string
	endDate    string
	walletID   int64
	categoryID int64
	search     string
	typ        string
}

func (f transactionFilter) match(s *state, t *core.Transaction) bool {
	if f.startDate != "" && f.endDate != "" {
		day := t.Date.Format(dateLayout)
		if day < f.startDate || day > f.endDate {
			return false
		}
	}
	if f.walletID != 0 && t.WalletID != f.walletID {
		return false
	}
	if f.categoryID != 0 && t.CategoryID != f.categoryID {
		return false
	}
	if f.typ != "" && string(t.Type) != f.typ {
		return false
	}
	if f.search != "" {
		needle := strings.ToLower(f.search)
		name := ""
		if c, ok := s.category(t.UserID, t.CategoryID); ok {
			name = c.Name
		}
		if !strings.Contains(strings.ToLower(t.Description), needle) && !strings.Contains(strings.ToLower(name), needle) {
			return false
		}
	}
	return true
}

// view returns t with wallet and category snapshots attached.
func (s *state) view(t *core.Transaction) core.Transaction {
	out := *t
	if w, ok := s.wallet(t.UserID, t.WalletID); ok {
		out.Wallet = &core.WalletSummary{ID: w.ID, Name: w.Name, Type: w.Type, Icon: w.Icon}
	}
	if c, ok := s.category(t.UserID, t.CategoryID); ok {
		out.Category = &core.CategorySummary{ID: c.ID, Name: c.Name, Type: c.Type, Icon: c.Icon}
	}
	return out
}

// sortedTransactions returns the user's transactions newest first.
func (s *state) sortedTransactions(userID int64, f transactionFilter) []*core.Transaction {
	out := make([]*core.Transaction, 0)
	for _, t := range s.transactions {
		if t.UserID == userID && f.match(s, t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *state) listTransactions(userID int64, f transactionFilter, page, limit int) ([]core.Transaction, core.PageMeta) {
	all := s.sortedTransactions(userID, f)
	meta := core.PageMeta{Total: int64(len(all)), Page: page, Limit: limit}

	if limit > 0 {
		start := (page - 1) * limit
		if start > len(all) {
			start = len(all)
		}
		end := start + limit
		if end > len(all) {
			end = len(all)
		}
		all = all[start:end]
	}

	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		out = append(out, s.view(t))
	}
	return out, meta
}

func (s *state) addTransaction(userID, walletID, categoryID int64, amount decimal.Decimal, typ core.TransactionType, description string, date time.Time) (*core.Transaction, error) {
	w, ok := s.wallet(userID, walletID)
	if !ok {
		return nil, notFound("wallet not found")
	}
	t := &core.Transaction{
		ID:          s.nextID(),
		UserID:      userID,
		WalletID:    walletID,
		CategoryID:  categoryID,
		Amount:      amount,
		Type:        typ,
		Description: description,
		Date:        date,
	}
	move(w, typ, amount)
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *state) createTransaction(userID int64, in core.TransactionInput) (core.Transaction, error) {
	if _, ok := s.category(userID, in.CategoryID); !ok {
		return core.Transaction{}, notFound("category not found")
	}
	t, err := s.addTransaction(userID, in.WalletID, in.CategoryID, in.Amount, in.Type, in.Description, in.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return s.view(t), nil
}

// removeTransaction deletes the transaction and reverts its wallet effect.
func (s *state) removeTransaction(userID, id int64) error {
	for i, t := range s.transactions {
		if t.ID != id || t.UserID != userID {
			continue
		}
		if w, ok := s.wallet(userID, t.WalletID); ok {
			revert(w, t.Type, t.Amount)
		}
		s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
		return nil
	}
	return notFound("transaction not found")
}

func (s *state) transfer(userID int64, in core.TransferInput, now time.Time) error {
	if _, ok := s.wallet(userID, in.FromWalletID); !ok {
		return notFound("source wallet not found")
	}
	if _, ok := s.wallet(userID, in.ToWalletID); !ok {
		return notFound("destination wallet not found")
	}
	cat := s.ledgerCategory(userID, categoryTransfer, transferCategoryType, transferCategoryIcon, now)
	if _, err := s.addTransaction(userID, in.FromWalletID, cat.ID, in.Amount, core.TransferOut, in.Description, in.Date); err != nil {
		return err
	}
	_, err := s.addTransaction(userID, in.ToWalletID, cat.ID, in.Amount, core.TransferIn, in.Description, in.Date)
	return err
}

func (s *state) calendar(userID int64, f transactionFilter) []core.DaySummary {
	byDay := make(map[string]*core.DaySummary)
	for _, t := range s.sortedTransactions(userID, f) {
		if t.Type != core.Income && t.Type != core.Expense {
			continue
		}
		day := t.Date.Format(dateLayout)
		sum, ok := byDay[day]
		if !ok {
			sum = &core.DaySummary{Date: day}
			byDay[day] = sum
		}
		if t.Type == core.Income {
			sum.Income = sum.Income.Add(t.Amount)
		} else {
			sum.Expense = sum.Expense.Add(t.Amount)
		}
	}

	out := make([]core.DaySummary, 0, len(byDay))
	for _, sum := range byDay {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *state) report(userID int64, f transactionFilter) []core.CategoryBreakdown {
	type key struct {
		categoryID int64
		typ        core.TransactionType
	}
	totals := make(map[key]decimal.Decimal)
	var order []key
	for _, t := range s.sortedTransactions(userID, f) {
		if t.Type != core.Income && t.Type != core.Expense {
			continue
		}
		k := key{t.CategoryID, t.Type}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] = totals[k].Add(t.Amount)
	}

	out := make([]core.CategoryBreakdown, 0, len(order))
	for _, k := range order {
		b := core.CategoryBreakdown{Type: k.typ, TotalAmount: totals[k]}
		if c, ok := s.category(userID, k.categoryID); ok {
			b.CategoryName = c.Name
			b.CategoryIcon = c.Icon
			b.BudgetLimit = c.BudgetLimit
		}
		if k.typ == core.Expense && b.BudgetLimit.IsPositive() {
			b.IsOverBudget = b.TotalAmount.GreaterThan(b.BudgetLimit)
			b.Percentage, _ = b.TotalAmount.Div(b.BudgetLimit).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		}
		out = append(out, b)
	}
	return out
}

// Debts

func (s *state) debt(userID, id int64) (*core.Debt, bool) {
	for _, d := range s.debts {
		if d.ID == id && d.UserID == userID {
			return d, true
		}
	}
	return nil, false
}

func (s *state) debtView(d *core.Debt) core.Debt {
	out := *d
	out.Payments = append([]core.DebtPayment(nil), d.Payments...)
	if out.Payments == nil {
		out.Payments = []core.DebtPayment{}
	}
	if w, ok := s.wallet(d.UserID, d.WalletID); ok {
		out.Wallet = &core.WalletSummary{ID: w.ID, Name: w.Name, Type: w.Type, Icon: w.Icon}
	}
	return out
}

func (s *state) listDebts(userID int64, typ string) []core.Debt {
	out := make([]core.Debt, 0)
	for _, d := range s.debts {
		if d.UserID != userID || (typ != "" && string(d.Type) != typ) {
			continue
		}
		out = append(out, s.debtView(d))
	}
	return out
}

// debtLedger returns the transaction type and category a debt of typ books
// when it is opened.
func debtLedger(typ core.DebtType) (core.TransactionType, string) {
	if typ == core.DebtPayable {
		return core.Income, categoryDebt
	}
	return core.Expense, categoryReceivable
}

// paymentLedger is the reverse direction, used for installments.
func paymentLedger(typ core.DebtType) (core.TransactionType, string) {
	if typ == core.DebtPayable {
		return core.Expense, categoryPayDebt
	}
	return core.Income, categoryCollectDebt
}

func (s *state) createDebt(userID int64, in core.DebtInput, now time.Time) (core.Debt, error) {
	if _, ok := s.wallet(userID, in.WalletID); !ok {
		return core.Debt{}, notFound("wallet not found")
	}
	d := &core.Debt{
		ID:          s.nextID(),
		UserID:      userID,
		WalletID:    in.WalletID,
		Name:        in.Name,
		Amount:      in.Amount,
		Remaining:   in.Amount,
		Type:        in.Type,
		Description: in.Description,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	typ, name := debtLedger(in.Type)
	cat := s.ledgerCategory(userID, name, typ, ledgerCategoryIcon, now)
	description := "Debt/Receivable: " + in.Name + " - " + in.Description
	if _, err := s.addTransaction(userID, in.WalletID, cat.ID, in.Amount, typ, description, now); err != nil {
		return core.Debt{}, err
	}
	s.debts = append(s.debts, d)
	return s.debtView(d), nil
}

func (s *state) updateDebt(userID, id int64, in core.DebtUpdateInput, now time.Time) (core.Debt, error) {
	d, ok := s.debt(userID, id)
	if !ok {
		return core.Debt{}, notFound("debt not found")
	}
	paid := d.Amount.Sub(d.Remaining)
	if in.Amount.LessThan(paid) {
		return core.Debt{}, badRequest("new amount cannot be less than already paid amount")
	}
	newWallet, ok := s.wallet(userID, in.WalletID)
	if !ok {
		return core.Debt{}, notFound("new wallet not found")
	}

	typ, _ := debtLedger(d.Type)
	if oldWallet, ok := s.wallet(userID, d.WalletID); ok {
		revert(oldWallet, typ, d.Amount)
	}
	move(newWallet, typ, in.Amount)

	d.WalletID = in.WalletID
	d.Name = in.Name
	d.Description = in.Description
	d.DueDate = in.DueDate
	d.Amount = in.Amount
	d.Remaining = in.Amount.Sub(paid)
	d.IsPaid = !d.Remaining.IsPositive()
	d.UpdatedAt = now
	return s.debtView(d), nil
}

func (s *state) payDebt(userID, id int64, in core.PayDebtInput, now time.Time) (core.Debt, error) {
	d, ok := s.debt(userID, id)
	if !ok {
		return core.Debt{}, notFound("debt not found")
	}
	if d.IsPaid {
		return core.Debt{}, badRequest("debt is already fully paid")
	}
	if in.Amount.GreaterThan(d.Remaining) {
		return core.Debt{}, badRequest("payment amount exceeds remaining debt")
	}
	if _, ok := s.wallet(userID, in.WalletID); !ok {
		return core.Debt{}, notFound("wallet not found")
	}

	note := in.Note
	if note == "" {
		note = defaultPaymentNote
	}
	typ, name := paymentLedger(d.Type)
	cat := s.ledgerCategory(userID, name, typ, ledgerCategoryIcon, now)
	t, err := s.addTransaction(userID, in.WalletID, cat.ID, in.Amount, typ, note+": "+d.Name, now)
	if err != nil {
		return core.Debt{}, err
	}

	d.Remaining = d.Remaining.Sub(in.Amount)
	if !d.Remaining.IsPositive() {
		d.Remaining = decimal.Zero
		d.IsPaid = true
	}
	d.UpdatedAt = now
	d.Payments = append(d.Payments, core.DebtPayment{
		ID:            s.nextID(),
		DebtID:        d.ID,
		TransactionID: t.ID,
		WalletID:      in.WalletID,
		Amount:        in.Amount,
		Date:          now,
		Note:          note,
	})
	return s.debtView(d), nil
}

func (s *state) deleteDebtPayment(userID, paymentID int64, now time.Time) error {
	for _, d := range s.debts {
		if d.UserID != userID {
			continue
		}
		for i, p := range d.Payments {
			if p.ID != paymentID {
				continue
			}
			if err := s.removeTransaction(userID, p.TransactionID); err != nil && !isNotFound(err) {
				return err
			}
			d.Remaining = d.Remaining.Add(p.Amount)
			d.IsPaid = !d.Remaining.IsPositive()
			d.UpdatedAt = now
			d.Payments = append(d.Payments[:i], d.Payments[i+1:]...)
			return nil
		}
	}
	return notFound("payment not found")
}

// deleteDebt drops the debt and settles its outstanding remainder against
// the linked wallet. Payment transactions stay in the ledger.
func (s *state) deleteDebt(userID, id int64) error {
	for i, d := range s.debts {
		if d.ID != id || d.UserID != userID {
			continue
		}
		w, ok := s.wallet(userID, d.WalletID)
		if !ok {
			return notFound("wallet linked to debt not found")
		}
		typ, _ := debtLedger(d.Type)
		revert(w, typ, d.Remaining)
		s.debts = append(s.debts[:i], s.debts[i+1:]...)
		return nil
	}
	return notFound("debt not found")
}

func isNotFound(err error) bool {
	e, ok := err.(*apiError)
	return ok && e.status == http.StatusNotFound
}

// Wishlist

func (s *state) listWishlist(userID int64) []core.WishlistItem {
	out := make([]core.WishlistItem, 0)
	for _, r := range s.wishlist {
		if r.userID != userID {
			continue
		}
		item := r.item
		if c, ok := s.category(userID, item.CategoryID); ok {
			item.Category = &core.CategorySummary{ID: c.ID, Name: c.Name, Type: c.Type, Icon: c.Icon}
		}
		out = append(out, item)
	}
	return out
}

func (s *state) wishlistItem(userID, id int64) (*wishlistRecord, bool) {
	for _, r := range s.wishlist {
		if r.item.ID == id && r.userID == userID {
			return r, true
		}
	}
	return nil, false
}

func (s *state) createWishlistItem(userID int64, in core.WishlistInput, now time.Time) {
	s.wishlist = append(s.wishlist, &wishlistRecord{
		userID: userID,
		item: core.WishlistItem{
			ID:             s.nextID(),
			CategoryID:     in.CategoryID,
			Name:           in.Name,
			EstimatedPrice: in.EstimatedPrice,
			Priority:       in.Priority,
			CreatedAt:      now,
		},
	})
}

func (s *state) updateWishlistItem(userID, id int64, in core.WishlistInput) error {
	r, ok := s.wishlistItem(userID, id)
	if !ok {
		return notFound("wishlist item not found")
	}
	r.item.CategoryID = in.CategoryID
	r.item.Name = in.Name
	r.item.EstimatedPrice = in.EstimatedPrice
	r.item.Priority = in.Priority
	return nil
}

func (s *state) markWishlistBought(userID, id int64) error {
	r, ok := s.wishlistItem(userID, id)
	if !ok {
		return notFound("wishlist item not found")
	}
	r.item.IsBought = true
	return nil
}

func (s *state) deleteWishlistItem(userID, id int64) error {
	for i, r := range s.wishlist {
		if r.item.ID == id && r.userID == userID {
			s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
			return nil
		}
	}
	return notFound("wishlist item not found")
}

// Saving goals

func (s *state) listGoals(userID int64) []core.SavingGoal {
	out := make([]core.SavingGoal, 0)
	for _, r := range s.goals {
		if r.userID == userID {
			out = append(out, r.goal)
		}
	}
	return out
}

func (s *state) createGoal(userID int64, in core.SavingGoalInput) core.SavingGoal {
	r := &goalRecord{
		userID: userID,
		goal: core.SavingGoal{
			ID:           s.nextID(),
			Name:         in.Name,
			TargetAmount: in.TargetAmount,
			CategoryID:   in.CategoryID,
			Deadline:     in.Deadline,
			Icon:         in.Icon,
		},
	}
	s.goals = append(s.goals, r)
	return r.goal
}

func (s *state) contribute(userID, goalID int64, in core.ContributionInput) (core.SavingContribution, error) {
	var goal *goalRecord
	for _, r := range s.goals {
		if r.goal.ID == goalID && r.userID == userID {
			goal = r
			break
		}
	}
	if goal == nil {
		return core.SavingContribution{}, notFound("goal not found")
	}

	description := in.Description
	if description == "" {
		description = "Tabungan: " + goal.goal.Name
	}
	t, err := s.addTransaction(userID, in.WalletID, goal.goal.CategoryID, in.Amount, core.Expense, description, in.Date)
	if err != nil {
		return core.SavingContribution{}, err
	}

	goal.goal.CurrentAmount = goal.goal.CurrentAmount.Add(in.Amount)
	goal.goal.IsAchieved = !goal.goal.CurrentAmount.LessThan(goal.goal.TargetAmount)

	c := core.SavingContribution{
		ID:            s.nextID(),
		GoalID:        goalID,
		WalletID:      in.WalletID,
		TransactionID: t.ID,
		Amount:        in.Amount,
		Date:          in.Date,
	}
	s.contributions = append(s.contributions, c)
	return c, nil
}
