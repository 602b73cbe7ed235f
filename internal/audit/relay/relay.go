// Package relay publishes audit outbox rows to Kafka. It polls the outbox
// table and pushes pending entries in order, marking them published only
// after the broker acknowledges the batch.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	auditpg "vigil/internal/audit/store/postgres"
)

const (
	defaultTopic     = "vigil.audit.events"
	defaultBatchSize = 100
	defaultInterval  = 2 * time.Second
)

type Relay struct {
	store    *auditpg.Store
	client   *kgo.Client
	topic    string
	interval time.Duration
	logger   *slog.Logger
}

// New connects to the brokers and ensures the audit topic exists.
func New(brokers []string, topic string, store *auditpg.Store, logger *slog.Logger) (*Relay, error) {
	if topic == "" {
		topic = defaultTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// Already-exists is fine; anything else surfaces on first produce.
		logger.Debug("audit topic creation", "topic", topic, "error", err)
	}

	return &Relay{
		store:    store,
		client:   client,
		topic:    topic,
		interval: defaultInterval,
		logger:   logger,
	}, nil
}

// Run polls until ctx is canceled. One failed batch is retried on the next
// tick; rows stay pending until the broker acknowledges them.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.client.Close()
			return ctx.Err()
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				r.logger.ErrorContext(ctx, "audit relay batch failed", "error", err)
			}
		}
	}
}

func (r *Relay) relayBatch(ctx context.Context) error {
	batch, err := r.store.PendingBatch(ctx, defaultBatchSize)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	records := make([]*kgo.Record, 0, len(batch))
	ids := make([]uuid.UUID, 0, len(batch))
	for _, row := range batch {
		records = append(records, &kgo.Record{
			Topic: r.topic,
			Key:   []byte(row.ID.String()),
			Value: row.Payload,
		})
		ids = append(ids, row.ID)
	}

	if err := r.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce audit batch: %w", err)
	}

	if err := r.store.MarkPublished(ctx, ids, time.Now()); err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "audit batch relayed", "count", len(batch))
	return nil
}
