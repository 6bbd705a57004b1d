//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestKafkaPublisher_ProducesKeyedRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcredpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.1.7",
		tcredpanda.WithAutoCreateTopics(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	const topic = "irdesk.kyc.audit.test"
	pub, err := NewKafkaPublisher([]string{broker}, topic)
	require.NoError(t, err)
	t.Cleanup(pub.Close)
	require.NoError(t, pub.Ping(ctx))

	require.NoError(t, pub.Emit(ctx, Event{
		Category:   CategoryCompliance,
		Action:     ActionStatusReconciled,
		InvestorID: "inv-42",
		CheckID:    "chk-1",
		Status:     "approved",
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	pollCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	fetches := consumer.PollRecords(pollCtx, 1)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, "inv-42", string(records[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, ActionStatusReconciled, got.Action)
	require.Equal(t, "system", got.ActorID)
}
