package models

import (
	"fmt"

	id "vaultgate/pkg/domain"
	dErrors "vaultgate/pkg/domain-errors"
)

// Typed errors for the wallet state machine. Each carries the structured
// fields a caller needs to diagnose the failure without re-querying state,
// and implements dErrors.Coder so transport maps it to an HTTP status.

// ErrNoOwners rejects construction with an empty owner set.
var ErrNoOwners = dErrors.New(dErrors.CodeInvariantViolation, "owner set cannot be empty")

// ErrZeroAddressRecipient rejects proposals targeting the null principal.
var ErrZeroAddressRecipient = dErrors.New(dErrors.CodeValidation, "recipient cannot be the zero address")

// InvalidRequiredApprovalsError rejects a quorum threshold outside
// [1, ownerCount].
type InvalidRequiredApprovalsError struct {
	Required   int
	OwnerCount int
}

func (e *InvalidRequiredApprovalsError) Error() string {
	return fmt.Sprintf("required approvals %d must be between 1 and %d", e.Required, e.OwnerCount)
}

func (e *InvalidRequiredApprovalsError) DomainCode() dErrors.Code {
	return dErrors.CodeInvariantViolation
}

// ZeroAddressOwnerError rejects a null principal in the owner list.
// Position is the zero-based index of the offending entry.
type ZeroAddressOwnerError struct {
	Position int
}

func (e *ZeroAddressOwnerError) Error() string {
	return fmt.Sprintf("owner at position %d is the zero address", e.Position)
}

func (e *ZeroAddressOwnerError) DomainCode() dErrors.Code {
	return dErrors.CodeInvariantViolation
}

// OwnerAlreadyExistsError rejects a duplicate entry in the owner list.
// Duplicates are a hard construction error, not silently deduplicated.
type OwnerAlreadyExistsError struct {
	Owner id.Address
}

func (e *OwnerAlreadyExistsError) Error() string {
	return fmt.Sprintf("owner %s listed more than once", e.Owner)
}

func (e *OwnerAlreadyExistsError) DomainCode() dErrors.Code {
	return dErrors.CodeInvariantViolation
}

// NotOwnerError rejects any mutating call from a principal outside the
// owner registry.
type NotOwnerError struct {
	Caller id.Address
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("caller %s is not an owner", e.Caller)
}

func (e *NotOwnerError) DomainCode() dErrors.Code {
	return dErrors.CodeForbidden
}

// InvalidTransactionNonceError rejects a reference to a transaction id that
// was never proposed.
type InvalidTransactionNonceError struct {
	ID uint64
}

func (e *InvalidTransactionNonceError) Error() string {
	return fmt.Sprintf("transaction %d does not exist", e.ID)
}

func (e *InvalidTransactionNonceError) DomainCode() dErrors.Code {
	return dErrors.CodeNotFound
}

// TransactionAlreadyExecutedError rejects mutation of a terminal transaction.
type TransactionAlreadyExecutedError struct {
	ID uint64
}

func (e *TransactionAlreadyExecutedError) Error() string {
	return fmt.Sprintf("transaction %d already executed", e.ID)
}

func (e *TransactionAlreadyExecutedError) DomainCode() dErrors.Code {
	return dErrors.CodeConflict
}

// NotEnoughApprovalsError rejects execution below quorum.
type NotEnoughApprovalsError struct {
	ID        uint64
	Approvals int
	Required  int
}

func (e *NotEnoughApprovalsError) Error() string {
	return fmt.Sprintf("transaction %d has %d of %d required approvals", e.ID, e.Approvals, e.Required)
}

func (e *NotEnoughApprovalsError) DomainCode() dErrors.Code {
	return dErrors.CodeConflict
}

// TransferFailedError reports a value release that did not complete. The
// executed flag has been rolled back; no value moved.
type TransferFailedError struct {
	ID        uint64
	Recipient id.Address
	Value     int64
	Err       error
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("transfer of %d to %s for transaction %d failed: %v", e.Value, e.Recipient, e.ID, e.Err)
}

func (e *TransferFailedError) Unwrap() error { return e.Err }

func (e *TransferFailedError) DomainCode() dErrors.Code {
	return dErrors.CodeConflict
}

// ReentrantCallError rejects a nested mutating call triggered while an
// execute is releasing value.
type ReentrantCallError struct {
	Operation string
}

func (e *ReentrantCallError) Error() string {
	return fmt.Sprintf("reentrant %s call rejected: execution in flight", e.Operation)
}

func (e *ReentrantCallError) DomainCode() dErrors.Code {
	return dErrors.CodeConflict
}
