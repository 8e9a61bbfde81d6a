// Package refresh turns domain events into ordered store re-fetches.
//
// The server computes every balance, remaining amount and aggregate; the
// client stays consistent only by re-fetching the lists a mutation touched.
// plan is the one place that says which lists those are.
package refresh

import "github.com/alimurrofid/petualangan-cuan/internal/events"

// Target names a store that can be re-fetched.
type Target string

const (
	Transactions Target = "transactions"
	Wallets      Target = "wallets"
	Debts        Target = "debts"
	SavingGoals  Target = "saving_goals"
)

// plan lists, per event, the stores to re-fetch and the order to do it in.
var plan = map[events.Kind][]Target{
	events.TransactionCreated:    {Transactions, Wallets},
	events.TransactionDeleted:    {Transactions, Wallets},
	events.TransferCompleted:     {Transactions, Wallets},
	events.DebtCreated:           {Debts, Wallets, Transactions},
	events.DebtPaid:              {Debts, Wallets, Transactions},
	events.DebtPaymentDeleted:    {Debts, Wallets, Transactions},
	events.DebtDeleted:           {Debts},
	events.DebtUpdated:           {Debts},
	events.SavingGoalContributed: {SavingGoals, Wallets, Transactions},
}

// TargetsFor returns the refresh order for kind. Unknown kinds refresh nothing.
func TargetsFor(kind events.Kind) []Target {
	targets := plan[kind]
	out := make([]Target, len(targets))
	copy(out, targets)
	return out
}
