package store

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/events"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

type TransactionAPI interface {
	ListTransactions(ctx context.Context, query url.Values) (api.TransactionPage, error)
	CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	Transfer(ctx context.Context, in core.TransferInput) error
	DeleteTransaction(ctx context.Context, id int64) error
	Calendar(ctx context.Context, query url.Values) ([]core.DaySummary, error)
}

// TransactionStore caches one page of transactions plus the calendar
// summary for the current filters.
type TransactionStore struct {
	collection[core.Transaction]

	// meta is guarded by collection.mu so it always matches the items.
	meta core.PageMeta

	mu               sync.RWMutex
	filters          Filters
	calendar         []core.DaySummary
	calendarErr      string
	calendarInFlight int

	client TransactionAPI
	bus    Publisher
	logger *log.Logger
}

func NewTransactionStore(client TransactionAPI, bus Publisher, logger *log.Logger) *TransactionStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionStore{
		filters: DefaultFilters(),
		client:  client,
		bus:     publisherOrNop(bus),
		logger:  logger.WithComponent(log.ComponentStore).With(log.FieldStore, "transactions"),
	}
}

// Filters returns the stored filters.
func (s *TransactionStore) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// SetFilters merges opts into the stored filters. It does not fetch.
func (s *TransactionStore) SetFilters(opts ...FilterOption) {
	s.mu.Lock()
	s.filters = s.filters.with(opts)
	s.mu.Unlock()
}

// ResetFilters restores the defaults. It does not fetch.
func (s *TransactionStore) ResetFilters() {
	s.mu.Lock()
	s.filters = DefaultFilters()
	s.mu.Unlock()
}

// Meta returns the pagination block of the last successful fetch.
func (s *TransactionStore) Meta() core.PageMeta {
	s.collection.mu.RLock()
	defer s.collection.mu.RUnlock()
	return s.meta
}

func (s *TransactionStore) Calendar() []core.DaySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.DaySummary, len(s.calendar))
	copy(out, s.calendar)
	return out
}

// CalendarLoading reports whether a calendar request is in flight.
func (s *TransactionStore) CalendarLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calendarInFlight > 0
}

func (s *TransactionStore) CalendarErr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calendarErr
}

// Fetch loads the page described by the stored filters with opts applied
// on top. opts affect this call only; the stored filters stay as they are.
func (s *TransactionStore) Fetch(ctx context.Context, opts ...FilterOption) {
	_ = s.fetch(ctx, opts...)
}

func (s *TransactionStore) fetch(ctx context.Context, opts ...FilterOption) error {
	s.begin()
	defer s.end()

	query := s.Filters().with(opts).Query()
	page, err := s.client.ListTransactions(ctx, query)
	if err != nil {
		s.fail(api.Message(err, "Failed to fetch transactions"))
		s.logger.ErrorContext(ctx, "Fetch failed",
			log.FieldOperation, log.OpFetch,
			log.FieldQuery, query.Encode(),
			log.FieldError, err)
		return fmt.Errorf("fetch transactions: %w", err)
	}

	s.replaceThen(page.Data, func() { s.meta = page.Meta })
	return nil
}

// FetchCalendar loads daily totals for the stored filters. Without a full
// date range there is nothing to ask for and the call is skipped.
func (s *TransactionStore) FetchCalendar(ctx context.Context) {
	_ = s.fetchCalendar(ctx)
}

func (s *TransactionStore) fetchCalendar(ctx context.Context) error {
	f := s.Filters()
	if !f.HasDateRange() {
		s.logger.DebugContext(ctx, "Calendar skipped without date range")
		return nil
	}

	s.mu.Lock()
	s.calendarInFlight++
	s.mu.Unlock()

	days, err := s.client.Calendar(ctx, f.CalendarQuery())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendarInFlight--
	if err != nil {
		s.calendarErr = api.Message(err, "Failed to fetch calendar")
		s.logger.ErrorContext(ctx, "Calendar fetch failed", log.FieldOperation, log.OpFetch, log.FieldError, err)
		return fmt.Errorf("fetch calendar: %w", err)
	}
	s.calendarErr = ""
	s.calendar = days
	return nil
}

// RefreshData fetches the list and the calendar concurrently and waits for
// both. It returns the first failure; both results are applied regardless.
func (s *TransactionStore) RefreshData(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.fetch(ctx) })
	g.Go(func() error { return s.fetchCalendar(ctx) })
	return g.Wait()
}

// Refresh implements refresh.Refresher.
func (s *TransactionStore) Refresh(ctx context.Context) error {
	return s.RefreshData(ctx)
}

// Create records an income or expense. The wallet and transaction stores
// are re-fetched before it returns.
func (s *TransactionStore) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	s.begin()
	defer s.end()

	tx, err := s.client.CreateTransaction(ctx, in)
	if err != nil {
		s.fail(api.Message(err, "Failed to create transaction"))
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.add(tx)
	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldTransactionID, tx.ID,
		log.FieldWalletID, in.WalletID,
		log.FieldAmount, in.Amount.String())

	s.bus.Publish(ctx, events.New(events.TransactionCreated, tx.ID, in.WalletID))
	return tx, nil
}

// Transfer moves money between two wallets.
func (s *TransactionStore) Transfer(ctx context.Context, in core.TransferInput) error {
	s.begin()
	defer s.end()

	if err := s.client.Transfer(ctx, in); err != nil {
		s.fail(api.Message(err, "Failed to transfer"))
		return fmt.Errorf("transfer: %w", err)
	}
	s.logger.InfoContext(ctx, "Transfer completed",
		log.FieldFromWalletID, in.FromWalletID,
		log.FieldToWalletID, in.ToWalletID,
		log.FieldAmount, in.Amount.String())

	s.bus.Publish(ctx, events.New(events.TransferCompleted, 0, in.FromWalletID, in.ToWalletID))
	return nil
}

// Delete removes a transaction; the server reverts its wallet effect.
func (s *TransactionStore) Delete(ctx context.Context, id int64) error {
	s.begin()
	defer s.end()

	if err := s.client.DeleteTransaction(ctx, id); err != nil {
		s.fail(api.Message(err, "Failed to delete transaction"))
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	var wallets []int64
	if tx, ok := s.Find(id); ok {
		wallets = append(wallets, tx.WalletID)
	}
	s.remove(id)

	s.bus.Publish(ctx, events.New(events.TransactionDeleted, id, wallets...))
	return nil
}
