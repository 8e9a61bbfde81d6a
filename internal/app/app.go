// Package app builds one application session: the persisted credentials,
// the API client, every store and the refresh coordinator, wired to a
// single event bus.
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/alimurrofid/petualangan-cuan/internal/amqp"
	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/cache"
	"github.com/alimurrofid/petualangan-cuan/internal/config"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/events"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
	"github.com/alimurrofid/petualangan-cuan/internal/refresh"
	"github.com/alimurrofid/petualangan-cuan/internal/session"
	"github.com/alimurrofid/petualangan-cuan/internal/storage"
	"github.com/alimurrofid/petualangan-cuan/internal/store"
)

const reportKeyPrefix = "cuan:report:"

type App struct {
	Config  *config.Config
	Session *session.Manager
	Client  *api.Client
	Bus     *events.Bus
	Refresh *refresh.Coordinator

	// Storage is nil when the session lives in memory only.
	Storage *storage.SQLiteRepository

	Auth            *store.AuthStore
	Wallets         *store.WalletStore
	Categories      *store.CategoryStore
	Transactions    *store.TransactionStore
	Debts           *store.DebtStore
	SavingGoals     *store.SavingGoalStore
	Wishlist        *store.WishlistStore
	Dashboard       *store.DashboardStore
	FinancialHealth *store.FinancialHealthStore
	Reports         *store.ReportStore

	logger   *log.Logger
	cleanups []func() error
}

type options struct {
	memorySession bool
	apiOptions    []api.Option
}

type Option func(*options)

// WithMemorySession skips the SQLite session store; credentials last as
// long as the process.
func WithMemorySession() Option {
	return func(o *options) { o.memorySession = true }
}

// WithAPIOptions passes extra options to the API client.
func WithAPIOptions(opts ...api.Option) Option {
	return func(o *options) { o.apiOptions = append(o.apiOptions, opts...) }
}

// New wires a session from cfg. Optional integrations (Redis, AMQP) that
// fail to connect are logged and skipped. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = log.Discard()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config: cfg,
		logger: logger.WithComponent(log.ComponentApp),
	}

	var repo session.Repository
	if !o.memorySession {
		sqliteRepo, err := storage.NewSQLiteRepository(cfg.SessionDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize session storage: %w", err)
		}
		a.Storage = sqliteRepo
		a.onClose(sqliteRepo.Close)
		a.logger.Debug("Session storage opened", "path", cfg.SessionDBPath, "schema_version", sqliteRepo.SchemaVersion())
		repo = sqliteRepo
	}

	a.Session = session.New(repo, logger)
	if err := a.Session.Init(ctx); err != nil {
		a.Close()
		return nil, err
	}

	apiOpts := append([]api.Option{
		api.WithTokenSource(a.Session),
		api.WithTimeout(cfg.APITimeout),
		api.WithLogger(logger),
	}, o.apiOptions...)
	a.Client = api.New(cfg.APIBaseURL, apiOpts...)
	a.Bus = events.NewBus(logger)

	a.Auth = store.NewAuthStore(a.Client, a.Session, logger)
	a.Wallets = store.NewWalletStore(a.Client, logger)
	a.Categories = store.NewCategoryStore(a.Client, logger)
	a.Transactions = store.NewTransactionStore(a.Client, a.Bus, logger)
	a.Debts = store.NewDebtStore(a.Client, a.Bus, logger)
	a.SavingGoals = store.NewSavingGoalStore(a.Client, a.Bus, logger)
	a.Wishlist = store.NewWishlistStore(a.Client, logger)
	a.Dashboard = store.NewDashboardStore(a.Client, logger)
	a.FinancialHealth = store.NewFinancialHealthStore(a.Client, logger)
	a.Reports = store.NewReportStore(a.Client, a.reportCache(ctx), logger)

	a.Refresh = refresh.NewCoordinator(logger)
	a.Refresh.Register(refresh.Transactions, a.Transactions)
	a.Refresh.Register(refresh.Wallets, a.Wallets)
	a.Refresh.Register(refresh.Debts, a.Debts)
	a.Refresh.Register(refresh.SavingGoals, a.SavingGoals)
	a.unsubscribeOnClose(a.Refresh.Attach(a.Bus))
	a.unsubscribeOnClose(a.Bus.Subscribe("report-cache", a.Reports.Invalidate))

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			a.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without event mirror", log.FieldError, err)
		} else {
			a.unsubscribeOnClose(a.Bus.Subscribe("amqp-mirror", client.Mirror(a.userID)))
			a.onClose(client.Close)
			a.logger.InfoContext(ctx, "Initialized AMQP event mirror",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	a.logger.InfoContext(ctx, "Application initialized",
		log.FieldOperation, log.OpStartup,
		"api", cfg.APIBaseURL,
		"persistent_session", a.Storage != nil,
		"authenticated", a.Session.Authenticated())
	return a, nil
}

// reportCache picks Redis when configured and reachable, else an in-memory
// LRU cleaned in the background.
func (a *App) reportCache(ctx context.Context) cache.Cache[[]core.CategoryBreakdown] {
	cfg := a.Config
	if cfg.RedisEnabled() {
		client, err := cache.ConnectRedis(ctx, cfg.RedisURL)
		if err == nil {
			a.onClose(client.Close)
			a.logger.InfoContext(ctx, "Report cache backed by Redis")
			return cache.NewScoped[[]core.CategoryBreakdown](
				cache.NewRedisCache[[]core.CategoryBreakdown](client, reportKeyPrefix, cfg.ReportCacheTTL, a.logger),
				a.userScope)
		}
		a.logger.WarnContext(ctx, "Failed to connect to Redis, continuing with in-memory report cache", log.FieldError, err)
	}

	lru := cache.NewLRUCache[[]core.CategoryBreakdown](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	manager := cache.NewManager(a.logger)
	manager.Register(lru)
	manager.StartCleanup(cfg.ReportCacheTTL)
	a.onClose(func() error {
		manager.Stop()
		return nil
	})
	return cache.NewScoped[[]core.CategoryBreakdown](lru, a.userScope)
}

func (a *App) userID() int64 {
	u, ok := a.Session.User()
	if !ok {
		return 0
	}
	return u.ID
}

func (a *App) userScope() string {
	return strconv.FormatInt(a.userID(), 10)
}

// RequireAuth fails with session.ErrUnauthenticated when nobody is logged in.
func (a *App) RequireAuth() error {
	return a.Session.RequireAuth()
}

// LoadAll fetches every list store and both insight snapshots. Failures
// stay on each store's Err; the first one is returned.
func (a *App) LoadAll(ctx context.Context) error {
	loaders := []func(context.Context) error{
		a.Wallets.Refresh,
		a.Categories.Refresh,
		a.Transactions.Refresh,
		a.Debts.Refresh,
		a.SavingGoals.Refresh,
		a.Wishlist.Refresh,
		a.Dashboard.Refresh,
		a.FinancialHealth.Refresh,
	}
	var first error
	for _, load := range loaders {
		if err := load(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *App) onClose(fn func() error) {
	a.cleanups = append(a.cleanups, fn)
}

func (a *App) unsubscribeOnClose(unsubscribe func()) {
	a.onClose(func() error {
		unsubscribe()
		return nil
	})
}

// Close releases everything New opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanups = nil
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("Cleanup failed", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		return err
	}
	return nil
}
