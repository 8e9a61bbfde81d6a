package store

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/cache"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/events"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

// snapshot is a single server-computed value. It is not refreshed after
// mutations and goes stale until the next Fetch.
type snapshot[T any] struct {
	mu       sync.RWMutex
	value    T
	loaded   bool
	inFlight int
	err      string
	load     func(ctx context.Context) (T, error)
	name     string
	fallback string
	logger   *log.Logger
}

func (s *snapshot[T]) Fetch(ctx context.Context) {
	_ = s.Refresh(ctx)
}

func (s *snapshot[T]) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.inFlight++
	s.err = ""
	s.mu.Unlock()

	v, err := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if err != nil {
		s.err = api.Message(err, s.fallback)
		s.logger.ErrorContext(ctx, "Fetch failed", log.FieldOperation, log.OpFetch, log.FieldError, err)
		return fmt.Errorf("fetch %s: %w", s.name, err)
	}
	s.value = v
	s.loaded = true
	return nil
}

// Value returns the last fetched value and whether one was ever fetched.
func (s *snapshot[T]) Value() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.loaded
}

func (s *snapshot[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

func (s *snapshot[T]) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

type DashboardAPI interface {
	Dashboard(ctx context.Context) (core.DashboardData, error)
}

type DashboardStore struct {
	*snapshot[core.DashboardData]
}

func NewDashboardStore(client DashboardAPI, logger *log.Logger) *DashboardStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &DashboardStore{&snapshot[core.DashboardData]{
		load:     client.Dashboard,
		name:     "dashboard",
		fallback: "Failed to fetch dashboard",
		logger:   logger.WithComponent(log.ComponentStore).With(log.FieldStore, "dashboard"),
	}}
}

type FinancialHealthAPI interface {
	FinancialHealth(ctx context.Context) (core.FinancialHealth, error)
}

type FinancialHealthStore struct {
	*snapshot[core.FinancialHealth]
}

func NewFinancialHealthStore(client FinancialHealthAPI, logger *log.Logger) *FinancialHealthStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &FinancialHealthStore{&snapshot[core.FinancialHealth]{
		load:     client.FinancialHealth,
		name:     "financial health",
		fallback: "Failed to fetch financial health",
		logger:   logger.WithComponent(log.ComponentStore).With(log.FieldStore, "financial_health"),
	}}
}

type ReportAPI interface {
	Report(ctx context.Context, query url.Values) ([]core.CategoryBreakdown, error)
}

// ReportQuery selects a category breakdown. The backend requires both dates.
type ReportQuery struct {
	StartDate string
	EndDate   string
	WalletID  string
	Type      string
}

func (q ReportQuery) values() url.Values {
	v := url.Values{}
	set(v, "start_date", q.StartDate)
	set(v, "end_date", q.EndDate)
	set(v, "wallet_id", q.WalletID)
	set(v, "type", q.Type)
	return v
}

// ReportStore reads category breakdowns through a cache that is purged
// whenever money moves.
type ReportStore struct {
	mu       sync.RWMutex
	items    []core.CategoryBreakdown
	inFlight int
	err      string
	// generation counts purges; a response fetched before one is not cached.
	generation uint64

	client ReportAPI
	cache  cache.Cache[[]core.CategoryBreakdown]
	logger *log.Logger
}

func NewReportStore(client ReportAPI, c cache.Cache[[]core.CategoryBreakdown], logger *log.Logger) *ReportStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReportStore{
		client: client,
		cache:  c,
		logger: logger.WithComponent(log.ComponentStore).With(log.FieldStore, "report"),
	}
}

// Fetch loads the breakdown for q, from cache when possible.
func (s *ReportStore) Fetch(ctx context.Context, q ReportQuery) {
	key := q.values().Encode()
	if s.cache != nil {
		if items, ok := s.cache.Get(key); ok {
			s.mu.Lock()
			s.items = items
			s.err = ""
			s.mu.Unlock()
			return
		}
	}

	s.mu.Lock()
	s.inFlight++
	s.err = ""
	gen := s.generation
	s.mu.Unlock()

	items, err := s.client.Report(ctx, q.values())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if err != nil {
		s.err = api.Message(err, "Failed to fetch report")
		s.logger.ErrorContext(ctx, "Fetch failed", log.FieldOperation, log.OpFetch, log.FieldQuery, key, log.FieldError, err)
		return
	}
	s.items = items
	if s.cache == nil {
		return
	}
	if gen != s.generation {
		s.logger.DebugContext(ctx, "Report outdated by a purge, not cached", log.FieldQuery, key)
		return
	}
	s.cache.Set(key, items)
}

func (s *ReportStore) Items() []core.CategoryBreakdown {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.CategoryBreakdown, len(s.items))
	copy(out, s.items)
	return out
}

func (s *ReportStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

func (s *ReportStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Invalidate drops cached reports after money-moving events. It has the
// events.Handler signature.
func (s *ReportStore) Invalidate(ctx context.Context, e events.Event) error {
	if s.cache == nil || !e.MovesMoney() {
		return nil
	}
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
	if n := s.cache.Purge(); n > 0 {
		s.logger.DebugContext(ctx, "Report cache purged", log.FieldEvent, e.Kind, log.FieldCount, n)
	}
	return nil
}
