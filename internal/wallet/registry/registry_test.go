package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultgate/internal/event"
	"vaultgate/internal/wallet/models"
	id "vaultgate/pkg/domain"
)

var (
	alice = id.Address("0x1111111111111111111111111111111111111111")
	bob   = id.Address("0x2222222222222222222222222222222222222222")
	carol = id.Address("0x3333333333333333333333333333333333333333")
)

func TestNewValidSet(t *testing.T) {
	sink := event.NewMemorySink()

	reg, err := New(context.Background(), []id.Address{alice, bob, carol}, 2,
		WithPublisher(sink))
	require.NoError(t, err)

	assert.Equal(t, []id.Address{alice, bob, carol}, reg.Owners())
	assert.Equal(t, 2, reg.RequiredApprovals())
	assert.Equal(t, 3, reg.OwnerCount())

	assert.True(t, reg.IsOwner(alice))
	assert.True(t, reg.IsOwner(carol))
	assert.False(t, reg.IsOwner(id.Address("0x4444444444444444444444444444444444444444")))
	assert.False(t, reg.IsOwner(id.ZeroAddress))

	added := sink.ByType(event.TypeOwnerAdded)
	require.Len(t, added, 3)
	assert.Equal(t, alice, added[0].Owner)
	assert.Equal(t, bob, added[1].Owner)
	assert.Equal(t, carol, added[2].Owner)
}

func TestNewSingleOwnerQuorumOne(t *testing.T) {
	reg, err := New(context.Background(), []id.Address{alice}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.RequiredApprovals())
}

func TestNewQuorumEqualToOwnerCount(t *testing.T) {
	reg, err := New(context.Background(), []id.Address{alice, bob}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.RequiredApprovals())
}

func TestNewEmptyOwners(t *testing.T) {
	_, err := New(context.Background(), nil, 1)
	assert.ErrorIs(t, err, models.ErrNoOwners)
}

func TestNewInvalidQuorum(t *testing.T) {
	cases := []struct {
		name     string
		required int
	}{
		{"zero", 0},
		{"above owner count", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(context.Background(), []id.Address{alice, bob}, tc.required)

			var invalid *models.InvalidRequiredApprovalsError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.required, invalid.Required)
			assert.Equal(t, 2, invalid.OwnerCount)
		})
	}
}

func TestNewZeroAddressOwner(t *testing.T) {
	_, err := New(context.Background(), []id.Address{alice, id.ZeroAddress, bob}, 1)

	var zero *models.ZeroAddressOwnerError
	require.ErrorAs(t, err, &zero)
	assert.Equal(t, 1, zero.Position)
}

func TestNewDuplicateOwner(t *testing.T) {
	_, err := New(context.Background(), []id.Address{alice, bob, alice}, 1)

	var dup *models.OwnerAlreadyExistsError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, alice, dup.Owner)
}

func TestNewEntriesValidatedInInputOrder(t *testing.T) {
	// The duplicate at position 1 is reported before the zero address at 2.
	_, err := New(context.Background(),
		[]id.Address{alice, alice, id.ZeroAddress}, 1)

	var dup *models.OwnerAlreadyExistsError
	require.ErrorAs(t, err, &dup)
}

func TestNewRejectedSetEmitsNothing(t *testing.T) {
	sink := event.NewMemorySink()

	_, err := New(context.Background(), []id.Address{alice, alice}, 1,
		WithPublisher(sink))
	require.Error(t, err)

	assert.Empty(t, sink.Events())
}

func TestOwnersReturnsCopy(t *testing.T) {
	reg, err := New(context.Background(), []id.Address{alice, bob}, 1)
	require.NoError(t, err)

	got := reg.Owners()
	got[0] = carol

	assert.Equal(t, []id.Address{alice, bob}, reg.Owners())
}
