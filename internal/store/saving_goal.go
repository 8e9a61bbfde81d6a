package store

import (
	"context"
	"fmt"

	"github.com/alimurrofid/petualangan-cuan/internal/api"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/events"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

type SavingGoalAPI interface {
	ListSavingGoals(ctx context.Context) ([]core.SavingGoal, error)
	CreateSavingGoal(ctx context.Context, in core.SavingGoalInput) (core.SavingGoal, error)
	AddContribution(ctx context.Context, goalID int64, in core.ContributionInput) (core.SavingContribution, error)
}

type SavingGoalStore struct {
	collection[core.SavingGoal]
	client SavingGoalAPI
	bus    Publisher
	logger *log.Logger
}

func NewSavingGoalStore(client SavingGoalAPI, bus Publisher, logger *log.Logger) *SavingGoalStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &SavingGoalStore{
		client: client,
		bus:    publisherOrNop(bus),
		logger: logger.WithComponent(log.ComponentStore).With(log.FieldStore, "saving_goals"),
	}
}

func (s *SavingGoalStore) Fetch(ctx context.Context) {
	_ = s.fetch(ctx)
}

func (s *SavingGoalStore) Refresh(ctx context.Context) error {
	return s.fetch(ctx)
}

func (s *SavingGoalStore) fetch(ctx context.Context) error {
	s.begin()
	defer s.end()

	goals, err := s.client.ListSavingGoals(ctx)
	if err != nil {
		s.fail(api.Message(err, "Failed to fetch saving goals"))
		s.logger.ErrorContext(ctx, "Fetch failed", log.FieldOperation, log.OpFetch, log.FieldError, err)
		return fmt.Errorf("fetch saving goals: %w", err)
	}
	s.replace(goals)
	return nil
}

// Create posts a new goal and re-fetches the list, so the cache carries the
// server's ordering and computed fields.
func (s *SavingGoalStore) Create(ctx context.Context, in core.SavingGoalInput) (core.SavingGoal, error) {
	s.begin()
	g, err := s.client.CreateSavingGoal(ctx, in)
	if err != nil {
		s.fail(api.Message(err, "Failed to create saving goal"))
	}
	s.end()
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("create saving goal: %w", err)
	}
	s.Fetch(ctx)
	return g, nil
}

// AddContribution moves money from a wallet into a goal. The server books
// it as an expense, so wallets and transactions are re-fetched too.
func (s *SavingGoalStore) AddContribution(ctx context.Context, goalID int64, in core.ContributionInput) (core.SavingContribution, error) {
	s.begin()
	defer s.end()

	c, err := s.client.AddContribution(ctx, goalID, in)
	if err != nil {
		s.fail(api.Message(err, "Failed to add contribution"))
		return core.SavingContribution{}, fmt.Errorf("add contribution to goal %d: %w", goalID, err)
	}
	s.logger.InfoContext(ctx, "Contribution added",
		log.FieldEntityID, goalID,
		log.FieldWalletID, in.WalletID,
		log.FieldAmount, in.Amount.String())

	s.bus.Publish(ctx, events.New(events.SavingGoalContributed, goalID, in.WalletID))
	return c, nil
}
