// Package events carries domain events from mutating stores to whoever
// needs to react: the refresh coordinator, the report cache, the AMQP mirror.
package events

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	TransactionCreated    Kind = "transaction.created"
	TransactionDeleted    Kind = "transaction.deleted"
	TransferCompleted     Kind = "transaction.transferred"
	DebtCreated           Kind = "debt.created"
	DebtUpdated           Kind = "debt.updated"
	DebtPaid              Kind = "debt.paid"
	DebtPaymentDeleted    Kind = "debt.payment_deleted"
	DebtDeleted           Kind = "debt.deleted"
	SavingGoalContributed Kind = "saving_goal.contributed"
)

// Kinds lists every event kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		TransactionCreated,
		TransactionDeleted,
		TransferCompleted,
		DebtCreated,
		DebtUpdated,
		DebtPaid,
		DebtPaymentDeleted,
		DebtDeleted,
		SavingGoalContributed,
	}
}

// Event records a mutation the server has accepted.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	EntityID   int64     `json:"entity_id,omitempty"`
	WalletIDs  []int64   `json:"wallet_ids,omitempty"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(kind Kind, entityID int64, walletIDs ...int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		EntityID:   entityID,
		WalletIDs:  walletIDs,
		OccurredAt: time.Now().UTC(),
	}
}

// MovesMoney reports whether the event can change a wallet balance.
func (e Event) MovesMoney() bool {
	return e.Kind != DebtUpdated
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}
