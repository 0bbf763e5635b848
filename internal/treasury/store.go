// Package treasury holds the pooled value guarded by the wallet. It tracks
// one pool balance plus per-recipient credited accounts, and performs the
// single-shot balance-checked transfer the execution engine relies on.
package treasury

import (
	"context"
	"errors"

	id "vaultgate/pkg/domain"
)

// Transfer failure facts. The wallet service wraps these in its
// TransferFailed error; nothing here is retried or partially applied.
var (
	// ErrInsufficientFunds: the pool holds less than the requested amount.
	ErrInsufficientFunds = errors.New("insufficient pool balance")
	// ErrAccountClosed: the recipient account refuses incoming value.
	ErrAccountClosed = errors.New("recipient account closed")
)

// Store persists the pool balance and recipient accounts.
type Store interface {
	// AddToPool credits the shared pool.
	AddToPool(ctx context.Context, amount int64) error
	// PoolBalance returns the current pool balance.
	PoolBalance(ctx context.Context) (int64, error)
	// Transfer atomically debits the pool and credits the recipient.
	// Fails with ErrInsufficientFunds or ErrAccountClosed; on failure
	// neither balance changes.
	Transfer(ctx context.Context, recipient id.Address, amount int64) error
	// AccountBalance returns the credited balance of a recipient.
	AccountBalance(ctx context.Context, addr id.Address) (int64, error)
	// SetAccountClosed marks whether an account rejects incoming value.
	SetAccountClosed(ctx context.Context, addr id.Address, closed bool) error
}
