// Package events moves domain events from the outbox table to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/prometheus"
)

// OutboxWriter appends events inside the caller's transaction
type OutboxWriter interface {
	AddOutboxEvent(ctx context.Context, e *model.OutboxEvent) error
}

// OutboxReader is what the relay needs to drain the outbox
type OutboxReader interface {
	PendingOutboxEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, ids []string, at time.Time) error
	MarkOutboxFailed(ctx context.Context, id string) error
}

// Recorder writes events to the outbox. Topics are prefixed, so
// "sales.created" becomes "erp.sales.created".
type Recorder struct {
	store  OutboxWriter
	prefix string
}

// NewRecorder creates a recorder with the given topic prefix
func NewRecorder(store OutboxWriter, prefix string) *Recorder {
	return &Recorder{store: store, prefix: prefix}
}

// Topic returns the full topic name for topic
func (r *Recorder) Topic(topic string) string {
	if r.prefix == "" {
		return topic
	}
	return r.prefix + "." + topic
}

// Record stores payload as JSON. ctx must carry the transaction of the
// change the event describes.
func (r *Recorder) Record(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "encode %s event", topic)
	}
	return r.store.AddOutboxEvent(ctx, &model.OutboxEvent{
		Topic:   r.Topic(topic),
		Key:     key,
		Payload: string(data),
	})
}

// Relay publishes pending outbox events
type Relay struct {
	store     OutboxReader
	publisher Publisher
	batchSize int
	log       *zap.Logger
	now       func() time.Time
}

// NewRelay creates a relay that moves at most batchSize events per flush
func NewRelay(store OutboxReader, publisher Publisher, batchSize int, log *zap.Logger) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{store: store, publisher: publisher, batchSize: batchSize, log: log, now: time.Now}
}

// Flush publishes one batch and returns how many events were delivered.
// Failed events stay pending with their attempt count raised.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	pending, err := r.store.PendingOutboxEvents(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	sent := make([]string, 0, len(pending))
	for _, e := range pending {
		err := r.publisher.Publish(ctx, Message{Topic: e.Topic, Key: e.Key, Value: []byte(e.Payload), Time: e.CreatedAt})
		prometheus.RecordOutboxPublish(e.Topic, err)
		if err != nil {
			r.log.Warn("Failed to publish outbox event",
				zap.String("event_id", e.ID),
				zap.String("topic", e.Topic),
				zap.Int("attempts", e.Attempts+1),
				zap.Error(err))
			if markErr := r.store.MarkOutboxFailed(ctx, e.ID); markErr != nil {
				return 0, markErr
			}
			continue
		}
		sent = append(sent, e.ID)
	}

	if err := r.store.MarkOutboxSent(ctx, sent, r.now().UTC()); err != nil {
		return 0, err
	}
	return len(sent), nil
}
