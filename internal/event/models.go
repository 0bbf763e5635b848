// Package event defines the notification stream emitted by the wallet and
// treasury for off-system observers. Events are emitted exactly once per
// triggering operation and never for operations that failed.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "vaultgate/pkg/domain"
)

// Type names a notification kind on the stream.
type Type string

const (
	TypeOwnerAdded                 Type = "owner_added"
	TypeDeposit                    Type = "deposit"
	TypeTransactionProposed        Type = "transaction_proposed"
	TypeTransactionApproved        Type = "transaction_approved"
	TypeTransactionAlreadyApproved Type = "transaction_already_approved"
	TypeTransactionExecuted        Type = "transaction_executed"
)

// Event is one notification. Only the fields relevant to the Type are set.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	Type      Type       `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	Owner     id.Address `json:"owner,omitempty"`     // owner_added
	Sender    id.Address `json:"sender,omitempty"`    // deposit
	Actor     id.Address `json:"actor,omitempty"`     // proposer, approver or executor
	Recipient id.Address `json:"recipient,omitempty"` // transaction_proposed
	Amount    int64      `json:"amount,omitempty"`    // deposit, transaction_proposed

	// TransactionID is nil for events not tied to a ledger entry.
	TransactionID *uint64 `json:"transaction_id,omitempty"`
}

// Publisher is the port services emit through. Implementations must not
// block operations on downstream availability; delivery is fail-open.
type Publisher interface {
	Emit(ctx context.Context, ev Event) error
}

func newEvent(t Type) Event {
	return Event{ID: uuid.New(), Type: t, Timestamp: time.Now().UTC()}
}

// OwnerAdded records acceptance of one owner during registry construction.
func OwnerAdded(owner id.Address) Event {
	ev := newEvent(TypeOwnerAdded)
	ev.Owner = owner
	return ev
}

// Deposit records value received into the pool outside of execution.
func Deposit(sender id.Address, amount int64) Event {
	ev := newEvent(TypeDeposit)
	ev.Sender = sender
	ev.Amount = amount
	return ev
}

// TransactionProposed records a new ledger entry.
func TransactionProposed(txID uint64, proposer, recipient id.Address, value int64) Event {
	ev := newEvent(TypeTransactionProposed)
	ev.TransactionID = &txID
	ev.Actor = proposer
	ev.Recipient = recipient
	ev.Amount = value
	return ev
}

// TransactionApproved records a first-time approval by an owner.
func TransactionApproved(txID uint64, approver id.Address) Event {
	ev := newEvent(TypeTransactionApproved)
	ev.TransactionID = &txID
	ev.Actor = approver
	return ev
}

// TransactionAlreadyApproved records an idempotent repeat approval. The
// triggering call succeeds without mutating the ledger.
func TransactionAlreadyApproved(txID uint64, approver id.Address) Event {
	ev := newEvent(TypeTransactionAlreadyApproved)
	ev.TransactionID = &txID
	ev.Actor = approver
	return ev
}

// TransactionExecuted records a successful value release.
func TransactionExecuted(txID uint64, executor id.Address) Event {
	ev := newEvent(TypeTransactionExecuted)
	ev.TransactionID = &txID
	ev.Actor = executor
	return ev
}
