// Package fakeapi is an in-memory stand-in for the cuan REST backend.
//
// It keeps the server-side bookkeeping the client relies on: wallet balances
// follow transactions, transfers write a transfer_out/transfer_in pair, debts
// and their payments book ledger transactions and move the linked wallet.
// Every route under /api except register and login needs a bearer token
// minted by this server. Requests are recorded, and failures or latency can
// be injected per route for tests.
package fakeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

const tokenTTL = 72 * time.Hour

type contextKey string

const userIDKey contextKey = "user_id"

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
}

// URL returns the path with its encoded query, as the client sent it.
func (r Request) URL() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

type failure struct {
	status  int
	message string
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l.WithComponent(log.ComponentFakeAPI) }
}

// WithSecret sets the HMAC key used to sign and verify tokens.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithAuthRateLimit caps register and login calls per client IP per minute.
func WithAuthRateLimit(requestsPerMinute int) Option {
	return func(s *Server) { s.authLimit = requestsPerMinute }
}

type Server struct {
	mu    sync.Mutex
	state *state

	secret    []byte
	now       func() time.Time
	logger    *log.Logger
	authLimit int

	recMu    sync.Mutex
	requests []Request
	failures map[string]failure
	delays   map[string]time.Duration

	router chi.Router
}

func New(opts ...Option) *Server {
	s := &Server{
		state:    &state{},
		secret:   []byte("cuan-fake-secret"),
		now:      time.Now,
		logger:   log.Discard(),
		failures: make(map[string]failure),
		delays:   make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(log.Middleware(s.logger))
	r.Use(s.record)
	r.Use(s.inject)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.authLimit > 0 {
				r.Use(newLimiter(s.authLimit, s.now).middleware)
			}
			r.Post("/auth/register", s.register)
			r.Post("/auth/login", s.login)
		})

		r.With(s.authenticate).Group(func(r chi.Router) {
			r.Post("/auth/logout", s.logout)
			r.Get("/user/profile", s.profile)

			r.Get("/wallets", s.listWallets)
			r.Post("/wallets", s.createWallet)
			r.Put("/wallets/{id}", s.updateWallet)
			r.Delete("/wallets/{id}", s.deleteWallet)

			r.Get("/categories", s.listCategories)
			r.Post("/categories", s.createCategory)
			r.Put("/categories/{id}", s.updateCategory)
			r.Delete("/categories/{id}", s.deleteCategory)

			r.Get("/transactions", s.listTransactions)
			r.Post("/transactions", s.createTransaction)
			r.Post("/transactions/transfer", s.transfer)
			r.Get("/transactions/calendar", s.calendar)
			r.Get("/transactions/report", s.report)
			r.Delete("/transactions/{id}", s.deleteTransaction)

			r.Get("/debts", s.listDebts)
			r.Post("/debts", s.createDebt)
			r.Get("/debts/{id}", s.getDebt)
			r.Put("/debts/{id}", s.updateDebt)
			r.Delete("/debts/{id}", s.deleteDebt)
			r.Post("/debts/{id}/pay", s.payDebt)
			r.Delete("/debts/payments/{id}", s.deleteDebtPayment)

			r.Get("/wishlist", s.listWishlist)
			r.Post("/wishlist", s.createWishlistItem)
			r.Put("/wishlist/{id}", s.updateWishlistItem)
			r.Patch("/wishlist/{id}/bought", s.markWishlistBought)
			r.Delete("/wishlist/{id}", s.deleteWishlistItem)

			r.Get("/saving-goals", s.listGoals)
			r.Post("/saving-goals", s.createGoal)
			r.Post("/saving-goals/{id}/contributions", s.contribute)

			r.Get("/dashboard", s.dashboard)
			r.Get("/financial-health", s.financialHealth)
		})
	})

	return r
}

// record keeps every request that reaches the router.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.recMu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
		})
		s.recMu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// inject applies configured delays and one-shot failures.
func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r.Method, r.URL.Path)

		s.recMu.Lock()
		delay := s.delays[key]
		f, fail := s.failures[key]
		if fail {
			delete(s.failures, key)
		}
		s.recMu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if fail {
			writeJSON(w, f.status, map[string]string{"error": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing or malformed JWT"})
			return
		}
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token format"})
			return
		}

		userID, err := s.parseToken(parts[1])
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid or expired token"})
			return
		}

		s.mu.Lock()
		_, ok := s.state.account(userID)
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func (s *Server) mintToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     s.now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (int64, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("token has no user_id")
	}
	return int64(id), nil
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

func routeKey(method, path string) string {
	return method + " " + strings.TrimRight(path, "/")
}

// Test controls

// Requests returns a copy of every recorded request, oldest first.
func (s *Server) Requests() []Request {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the recorded requests for one method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) ResetRequests() {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	s.requests = nil
}

// FailNext makes the next request to method and path answer status with
// {"error": message}.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	s.failures[routeKey(method, path)] = failure{status: status, message: message}
}

// Delay holds every request to method and path for d before handling it.
func (s *Server) Delay(method, path string, d time.Duration) {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	if d <= 0 {
		delete(s.delays, routeKey(method, path))
		return
	}
	s.delays[routeKey(method, path)] = d
}

// Seeding

// SeedUser registers an account and returns it with a valid token.
func (s *Server) SeedUser(name, email, password string) (core.User, string, error) {
	s.mu.Lock()
	a, err := s.state.register(core.RegisterInput{Name: name, Email: email, Password: password}, s.now())
	s.mu.Unlock()
	if err != nil {
		return core.User{}, "", err
	}
	token, err := s.mintToken(a.user.ID)
	return a.user, token, err
}

// Token mints a fresh token for an existing user.
func (s *Server) Token(userID int64) (string, error) {
	return s.mintToken(userID)
}

func (s *Server) SeedWallet(userID int64, name string, balance int64) core.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createWallet(userID, core.WalletInput{Name: name, Type: "Bank", Balance: decimal.NewFromInt(balance)}, s.now())
}

func (s *Server) SeedCategory(userID int64, name string, typ core.TransactionType) core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createCategory(userID, core.CategoryInput{Name: name, Type: typ}, s.now())
}

// Wallet returns the server's current view of a wallet.
func (s *Server) Wallet(userID, id int64) (core.Wallet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.state.wallet(userID, id)
	if !ok {
		return core.Wallet{}, false
	}
	return *w, true
}
