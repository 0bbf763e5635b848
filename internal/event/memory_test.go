package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vaultgate/pkg/domain"
)

var (
	owner     = id.Address("0x00000000000000000000000000000000000000a1")
	recipient = id.Address("0x00000000000000000000000000000000000000e1")
)

func TestMemorySinkRecordsInOrder(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()

	require.NoError(t, sink.Emit(ctx, OwnerAdded(owner)))
	require.NoError(t, sink.Emit(ctx, TransactionProposed(0, owner, recipient, 10)))
	require.NoError(t, sink.Emit(ctx, TransactionApproved(0, owner)))

	events := sink.Events()
	require.Len(t, events, 3)
	assert.Equal(t, TypeOwnerAdded, events[0].Type)
	assert.Equal(t, TypeTransactionProposed, events[1].Type)
	assert.Equal(t, TypeTransactionApproved, events[2].Type)

	approved := sink.ByType(TypeTransactionApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, owner, approved[0].Actor)

	sink.Reset()
	assert.Empty(t, sink.Events())
}

func TestConstructorsPopulateFields(t *testing.T) {
	proposed := TransactionProposed(4, owner, recipient, 25)
	require.NotNil(t, proposed.TransactionID)
	assert.Equal(t, uint64(4), *proposed.TransactionID)
	assert.Equal(t, owner, proposed.Actor)
	assert.Equal(t, recipient, proposed.Recipient)
	assert.Equal(t, int64(25), proposed.Amount)
	assert.NotEqual(t, proposed.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.False(t, proposed.Timestamp.IsZero())

	deposit := Deposit(owner, 7)
	assert.Equal(t, owner, deposit.Sender)
	assert.Equal(t, int64(7), deposit.Amount)
	assert.Nil(t, deposit.TransactionID)

	executed := TransactionExecuted(4, owner)
	assert.Equal(t, TypeTransactionExecuted, executed.Type)
	assert.Equal(t, owner, executed.Actor)

	repeat := TransactionAlreadyApproved(4, owner)
	assert.Equal(t, TypeTransactionAlreadyApproved, repeat.Type)
}

func TestEventIDsAreUnique(t *testing.T) {
	a := OwnerAdded(owner)
	b := OwnerAdded(owner)
	assert.NotEqual(t, a.ID, b.ID)
}
