package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/events"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

type DebtAPI interface {
	ListDebts(ctx context.Context, typ core.DebtType) ([]core.Debt, error)
	CreateDebt(ctx context.Context, in core.DebtInput) (core.Debt, error)
	UpdateDebt(ctx context.Context, id int64, in core.DebtUpdateInput) (core.Debt, error)
	DeleteDebt(ctx context.Context, id int64) error
	PayDebt(ctx context.Context, id int64, in core.PayDebtInput) (core.Debt, error)
	DeleteDebtPayment(ctx context.Context, paymentID int64) error
}

// DebtStore keeps money the user owes (Debts) and money owed to the user
// (Receivables) as two lists fetched together.
type DebtStore struct {
	debts       collection[core.Debt]
	receivables collection[core.Debt]
	client      DebtAPI
	bus         Publisher
	logger      *log.Logger
}

func NewDebtStore(client DebtAPI, bus Publisher, logger *log.Logger) *DebtStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &DebtStore{
		client: client,
		bus:    publisherOrNop(bus),
		logger: logger.WithComponent(log.ComponentStore).With(log.FieldStore, "debts"),
	}
}

func (s *DebtStore) Debts() []core.Debt       { return s.debts.Items() }
func (s *DebtStore) Receivables() []core.Debt { return s.receivables.Items() }

func (s *DebtStore) Loading() bool {
	return s.debts.Loading() || s.receivables.Loading()
}

// Err returns the last failure of either list.
func (s *DebtStore) Err() string {
	if e := s.debts.Err(); e != "" {
		return e
	}
	return s.receivables.Err()
}

// Find looks a debt or receivable up by id in the cache.
func (s *DebtStore) Find(id int64) (core.Debt, bool) {
	if d, ok := s.debts.Find(id); ok {
		return d, true
	}
	return s.receivables.Find(id)
}

func (s *DebtStore) list(t core.DebtType) *collection[core.Debt] {
	if t == core.DebtReceivable {
		return &s.receivables
	}
	return &s.debts
}

// Fetch loads both lists, debts first.
func (s *DebtStore) Fetch(ctx context.Context) {
	_ = s.fetch(ctx)
}

func (s *DebtStore) Refresh(ctx context.Context) error {
	return s.fetch(ctx)
}

func (s *DebtStore) fetch(ctx context.Context) error {
	var errs []error
	for _, t := range []core.DebtType{core.DebtPayable, core.DebtReceivable} {
		c := s.list(t)
		c.begin()
		items, err := s.client.ListDebts(ctx, t)
		if err != nil {
			c.fail(api.Message(err, "Failed to fetch debts"))
			s.logger.ErrorContext(ctx, "Fetch failed",
				log.FieldOperation, log.OpFetch,
				log.FieldDebtType, t,
				log.FieldError, err)
			errs = append(errs, fmt.Errorf("fetch %s: %w", t, err))
		} else {
			c.replace(items)
		}
		c.end()
	}
	return errors.Join(errs...)
}

// Create records a new debt or receivable. The server books the opening
// transaction and moves the wallet balance.
func (s *DebtStore) Create(ctx context.Context, in core.DebtInput) (core.Debt, error) {
	c := s.list(in.Type)
	c.begin()
	defer c.end()

	d, err := s.client.CreateDebt(ctx, in)
	if err != nil {
		c.fail(api.Message(err, "Failed to create debt"))
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	c.add(d)
	s.logger.InfoContext(ctx, "Debt created",
		log.FieldDebtID, d.ID,
		log.FieldDebtType, d.Type,
		log.FieldAmount, d.Amount.String())

	s.bus.Publish(ctx, events.New(events.DebtCreated, d.ID, in.WalletID))
	return d, nil
}

// Update edits a debt's details. Balances are not touched.
func (s *DebtStore) Update(ctx context.Context, id int64, in core.DebtUpdateInput) (core.Debt, error) {
	c := &s.debts
	if cached, ok := s.Find(id); ok {
		c = s.list(cached.Type)
	}
	c.begin()
	defer c.end()

	d, err := s.client.UpdateDebt(ctx, id, in)
	if err != nil {
		c.fail(api.Message(err, "Failed to update debt"))
		return core.Debt{}, fmt.Errorf("update debt %d: %w", id, err)
	}
	if !s.list(d.Type).swap(d) {
		s.logger.WarnContext(ctx, "Updated entity not in cache", log.FieldOperation, log.OpUpdate, log.FieldEntityID, id)
	}

	s.bus.Publish(ctx, events.New(events.DebtUpdated, id))
	return d, nil
}

// Pay records an installment. Overpaying or paying a settled debt is
// rejected by the server; the message ends up in Err.
func (s *DebtStore) Pay(ctx context.Context, id int64, in core.PayDebtInput) (core.Debt, error) {
	c := &s.debts
	if cached, ok := s.Find(id); ok {
		c = s.list(cached.Type)
	}
	c.begin()
	defer c.end()

	d, err := s.client.PayDebt(ctx, id, in)
	if err != nil {
		c.fail(api.Message(err, "Failed to pay debt"))
		return core.Debt{}, fmt.Errorf("pay debt %d: %w", id, err)
	}
	s.list(d.Type).swap(d)
	s.logger.InfoContext(ctx, "Debt payment recorded",
		log.FieldDebtID, id,
		log.FieldAmount, in.Amount.String(),
		log.FieldRemaining, d.Remaining.String(),
		log.FieldIsPaid, d.IsPaid)

	s.bus.Publish(ctx, events.New(events.DebtPaid, id, in.WalletID))
	return d, nil
}

// DeletePayment removes one installment; the server reverts its transaction
// and the wallet balance.
func (s *DebtStore) DeletePayment(ctx context.Context, paymentID int64) error {
	s.debts.begin()
	defer s.debts.end()

	if err := s.client.DeleteDebtPayment(ctx, paymentID); err != nil {
		s.debts.fail(api.Message(err, "Failed to delete payment"))
		return fmt.Errorf("delete debt payment %d: %w", paymentID, err)
	}

	s.bus.Publish(ctx, events.New(events.DebtPaymentDeleted, paymentID))
	return nil
}

// Delete removes a debt and its payments.
func (s *DebtStore) Delete(ctx context.Context, id int64) error {
	c := &s.debts
	if cached, ok := s.Find(id); ok {
		c = s.list(cached.Type)
	}
	c.begin()
	defer c.end()

	if err := s.client.DeleteDebt(ctx, id); err != nil {
		c.fail(api.Message(err, "Failed to delete debt"))
		return fmt.Errorf("delete debt %d: %w", id, err)
	}
	c.remove(id)

	s.bus.Publish(ctx, events.New(events.DebtDeleted, id))
	return nil
}
