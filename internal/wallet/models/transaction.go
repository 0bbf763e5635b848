package models

import (
	"time"

	id "vaultgate/pkg/domain"
)

// Transaction is one proposed transfer out of the treasury pool. The ledger
// is append-only: transactions are never deleted, and once Executed flips to
// true the record never changes again.
type Transaction struct {
	ID            uint64
	Recipient     id.Address
	Value         int64
	ApprovalCount int
	Executed      bool
	CreatedAt     time.Time
}
