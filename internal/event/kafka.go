package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher emits events as JSON records on a single topic. Records for
// the same transaction share a key so consumers see them in order; registry
// and deposit events are keyed by the acting address.
//
// Emission is fail-open: produce errors are logged by the delivery callback
// and never surfaced to the triggering operation.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the given brokers. The returned publisher
// owns the client; call Close to flush and release it.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

func (p *KafkaPublisher) Emit(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(recordKey(ev)),
		Value: payload,
	}

	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Error("event delivery failed",
				"type", ev.Type,
				"event_id", ev.ID,
				"error", err,
			)
		}
	})
	return nil
}

// Flush blocks until buffered records are delivered or ctx expires.
func (p *KafkaPublisher) Flush(ctx context.Context) error {
	return p.client.Flush(ctx)
}

// Close flushes outstanding records and releases the client.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	defer p.client.Close()
	return p.client.Flush(ctx)
}

func recordKey(ev Event) string {
	if ev.TransactionID != nil {
		return "tx-" + strconv.FormatUint(*ev.TransactionID, 10)
	}
	switch ev.Type {
	case TypeOwnerAdded:
		return ev.Owner.String()
	case TypeDeposit:
		return ev.Sender.String()
	}
	return string(ev.Type)
}
