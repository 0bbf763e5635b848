//go:build integration

package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"vaultgate/internal/platform/logger"
	"vaultgate/pkg/testutil/containers"
)

const testTopic = "vaultgate.events.test"

func TestKafkaPublisher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rp := containers.NewRedpandaContainer(t)

	admin, err := kgo.NewClient(kgo.SeedBrokers(rp.Broker))
	require.NoError(t, err)
	defer admin.Close()
	_, err = kadm.NewClient(admin).CreateTopic(ctx, 1, 1, nil, testTopic)
	require.NoError(t, err)

	pub, err := NewKafkaPublisher([]string{rp.Broker}, testTopic, logger.New())
	require.NoError(t, err)
	defer pub.Close(ctx)

	proposed := TransactionProposed(0, owner, recipient, 10)
	executed := TransactionExecuted(0, owner)
	require.NoError(t, pub.Emit(ctx, proposed))
	require.NoError(t, pub.Emit(ctx, executed))
	require.NoError(t, pub.Flush(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(testTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var records []*kgo.Record
	for len(records) < 2 {
		fetches := consumer.PollFetches(fetchCtx)
		require.NoError(t, fetches.Err())
		records = append(records, fetches.Records()...)
	}
	require.Len(t, records, 2)

	// Same transaction, same key, so consumers see the pair in order.
	assert.Equal(t, "tx-0", string(records[0].Key))
	assert.Equal(t, "tx-0", string(records[1].Key))

	var first, second Event
	require.NoError(t, json.Unmarshal(records[0].Value, &first))
	require.NoError(t, json.Unmarshal(records[1].Value, &second))
	assert.Equal(t, TypeTransactionProposed, first.Type)
	assert.Equal(t, TypeTransactionExecuted, second.Type)
	assert.Equal(t, proposed.ID, first.ID)
	require.NotNil(t, second.TransactionID)
	assert.Equal(t, uint64(0), *second.TransactionID)
}
