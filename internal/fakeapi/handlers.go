package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.status, map[string]string{"error": apiErr.msg})
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Handler failed", log.FieldPath, r.URL.Path, log.FieldError, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func message(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// decode reads a JSON body into in and checks its shape.
func decode(r *http.Request, in any) error {
	if err := json.NewDecoder(r.Body).Decode(in); err != nil {
		return badRequest("invalid request body")
	}
	if err := core.Validate(in); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id")
	}
	return id, nil
}

// queryID parses an optional id filter. Empty, "all" and "0" mean no filter.
func queryID(r *http.Request, key string) int64 {
	v := r.URL.Query().Get(key)
	if v == "" || v == "all" {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}

func (s *Server) filter(r *http.Request) transactionFilter {
	q := r.URL.Query()
	typ := q.Get("type")
	if typ == "all" {
		typ = ""
	}
	return transactionFilter{
		startDate:  q.Get("start_date"),
		endDate:    q.Get("end_date"),
		walletID:   queryID(r, "wallet_id"),
		categoryID: queryID(r, "category_id"),
		search:     q.Get("search"),
		typ:        typ,
	}
}

// Auth

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in core.RegisterInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	a, err := s.state.register(in, s.now())
	s.mu.Unlock()
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := s.mintToken(a.user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, core.AuthResponse{Token: token, User: a.user})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in core.Credentials
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	a, err := s.state.authenticate(in)
	s.mu.Unlock()
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := s.mintToken(a.user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.AuthResponse{Token: token, User: a.user})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	message(w, http.StatusOK, "Successfully logged out")
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	a, ok := s.state.account(userID(r))
	s.mu.Unlock()
	if !ok {
		writeError(w, r, unauthorized("Unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.User{"user": a.user})
}

// Wallets and categories

func (s *Server) listWallets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.state.listWallets(userID(r)))
}

func (s *Server) createWallet(w http.ResponseWriter, r *http.Request) {
	var in core.WalletInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusCreated, s.state.createWallet(userID(r), in, s.now()))
}

func (s *Server) updateWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in core.WalletInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wallet, err := s.state.updateWallet(userID(r), id, in, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (s *Server) deleteWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.deleteWallet(userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	message(w, http.StatusOK, "Wallet deleted")
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.state.listCategories(userID(r)))
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var in core.CategoryInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusCreated, s.state.createCategory(userID(r), in, s.now()))
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in core.CategoryInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	category, err := s.state.updateCategory(userID(r), id, in, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.deleteCategory(userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	message(w, http.StatusOK, "Category deleted")
}

// Transactions

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", 10)

	s.mu.Lock()
	items, meta := s.state.listTransactions(userID(r), s.filter(r), page, limit)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   items,
		"meta":   meta,
	})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.state.createTransaction(userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.removeTransaction(userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	message(w, http.StatusOK, "Transaction deleted")
}

func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var in core.TransferInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.transfer(userID(r), in, s.now()); err != nil {
		writeError(w, r, err)
		return
	}
	message(w, http.StatusOK, "Transfer successful")
}

// requireRange answers 400 unless both ends of the date range are present.
func requireRange(w http.ResponseWriter, r *http.Request, f transactionFilter) bool {
	if f.startDate == "" || f.endDate == "" {
		writeError(w, r, badRequest("start_date and end_date are required"))
		return false
	}
	return true
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	f := s.filter(r)
	f.typ = ""
	if !requireRange(w, r, f) {
		return
	}
	s.mu.Lock()
	data := s.state.calendar(userID(r), f)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": data})
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	f := s.filter(r)
	f.categoryID = 0
	f.search = ""
	if !requireRange(w, r, f) {
		return
	}
	s.mu.Lock()
	data := s.state.report(userID(r), f)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": data})
}

// Debts

func (s *Server) listDebts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": s.state.listDebts(userID(r), r.URL.Query().Get("type"))})
}

func (s *Server) getDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.state.debt(userID(r), id)
	if !ok {
		writeError(w, r, notFound("debt not found"))
		return
	}
	writeJSON(w, http.StatusOK, s.state.debtView(d))
}

func (s *Server) createDebt(w http.ResponseWriter, r *http.Request) {
	var in core.DebtInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.state.createDebt(userID(r), in, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) updateDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in core.DebtUpdateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.state.updateDebt(userID(r), id, in, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) payDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in core.PayDebtInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.state.payDebt(userID(r), id, in, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) deleteDebtPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.deleteDebtPayment(userID(r), id, s.now()); err != nil {
		writeError(w, r, err)
		return
	}
	message(w, http.StatusOK, "Payment deleted and balance reverted")
}

func (s *Server) deleteDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.deleteDebt(userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	message(w, http.StatusOK, "Debt deleted")
}

// Wishlist

func (s *Server) listWishlist(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.state.listWishlist(userID(r)))
}

func (s *Server) createWishlistItem(w http.ResponseWriter, r *http.Request) {
	var in core.WishlistInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.createWishlistItem(userID(r), in, s.now())
	message(w, http.StatusCreated, "Wishlist item created")
}

func (s *Server) updateWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in core.WishlistInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.updateWishlistItem(userID(r), id, in); err != nil {
		writeError(w, r, err)
		return
	}
	message(w, http.StatusOK, "Wishlist item updated")
}

func (s *Server) markWishlistBought(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.markWishlistBought(userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	message(w, http.StatusOK, "Item marked as bought")
}

func (s *Server) deleteWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.deleteWishlistItem(userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	message(w, http.StatusOK, "Wishlist item deleted")
}

// Saving goals

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": s.state.listGoals(userID(r))})
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var in core.SavingGoalInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"data": s.state.createGoal(userID(r), in)})
}

func (s *Server) contribute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in core.ContributionInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.state.contribute(userID(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": c})
}

// Insights

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data := s.state.dashboard(userID(r), s.now())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": data})
}

func (s *Server) financialHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data := s.state.financialHealth(userID(r), s.now())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func monthRange(now time.Time) (string, string) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format(dateLayout), last.Format(dateLayout)
}
