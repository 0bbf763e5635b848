//go:build integration

package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultgate/pkg/testutil/containers"
)

const testKey = "vaultgate:execution:test"

func TestRedisLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	t.Run("acquire and release", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		locker := NewRedisLocker(rc.Client, 10*time.Second)

		release, err := locker.Acquire(ctx, testKey)
		require.NoError(t, err)

		// Second acquire fails while held.
		_, err = locker.Acquire(ctx, testKey)
		assert.ErrorIs(t, err, ErrHeld)

		require.NoError(t, release(ctx))

		// Released lock is acquirable again.
		release2, err := locker.Acquire(ctx, testKey)
		require.NoError(t, err)
		require.NoError(t, release2(ctx))
	})

	t.Run("expires after ttl", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		locker := NewRedisLocker(rc.Client, 500*time.Millisecond)

		_, err := locker.Acquire(ctx, testKey)
		require.NoError(t, err)

		time.Sleep(700 * time.Millisecond)

		release, err := locker.Acquire(ctx, testKey)
		require.NoError(t, err)
		require.NoError(t, release(ctx))
	})

	t.Run("stale release does not unlock new holder", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		locker := NewRedisLocker(rc.Client, 500*time.Millisecond)

		staleRelease, err := locker.Acquire(ctx, testKey)
		require.NoError(t, err)

		time.Sleep(700 * time.Millisecond)

		// A new holder took over after expiry.
		_, err = locker.Acquire(ctx, testKey)
		require.NoError(t, err)

		// The old holder's release is a no-op, not a theft.
		require.NoError(t, staleRelease(ctx))
		_, err = locker.Acquire(ctx, testKey)
		assert.ErrorIs(t, err, ErrHeld)
	})
}
